package logging

import "log/slog"

// Common structured log field keys to keep logs searchable/consistent.
const (
	FieldService    = "service"
	FieldVersion    = "version"
	FieldRequestID  = "request_id"
	FieldMatchID    = "match_id"
	FieldPlayerID   = "player_id"
	FieldTeamID     = "team_id"
	FieldSide       = "side"
	FieldStatus     = "status"
	FieldOutcome    = "outcome"
	FieldOperation  = "operation"
	FieldErrorCode  = "error_code"
	FieldErrorKind  = "error_kind"
	FieldPath       = "path"
	FieldMethod     = "method"
	FieldStatusCode = "status_code"
	FieldDate       = "date"
	FieldCount      = "count"
	FieldDurationMS = "duration_ms"
	FieldDriver     = "driver"
)

// WithCommon appends service/version fields when provided.
func WithCommon(attrs []slog.Attr, service, version string) []slog.Attr {
	if service != "" {
		attrs = append(attrs, slog.String(FieldService, service))
	}
	if version != "" {
		attrs = append(attrs, slog.String(FieldVersion, version))
	}
	return attrs
}
