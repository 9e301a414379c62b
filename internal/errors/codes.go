package errors

import "net/http"

// Kind groups codes by how a caller should react to them.
type Kind string

const (
	KindValidation Kind = "validation"
	KindState      Kind = "state"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindInternal   Kind = "internal"
)

// Code is a machine-readable error code.
type Code string

const (
	// Validation errors
	CodeInvalidSide        Code = "INVALID_SIDE"
	CodeInvalidSelection   Code = "INVALID_SELECTION"
	CodeNotOnRoster        Code = "NOT_ON_ROSTER"
	CodeDuplicateSelection Code = "DUPLICATE_SELECTION"
	CodeRotationCap        Code = "ROTATION_CAP"
	CodePairRepeated       Code = "PAIR_REPEATED"
	CodeInvalidRules       Code = "INVALID_RULES"
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"

	// State errors
	CodeNotLive        Code = "NOT_LIVE"
	CodeNoHistory      Code = "NO_HISTORY"
	CodeAlreadyStarted Code = "ALREADY_STARTED"
	CodeInvalidStatus  Code = "INVALID_STATUS"
	CodeGameOver       Code = "GAME_OVER"
	CodeReferenced     Code = "REFERENCED"

	// Conflict errors
	CodeVersionConflict Code = "VERSION_CONFLICT"

	// Lookup errors
	CodeNotFound Code = "NOT_FOUND"
)

// Kind reports the taxonomy bucket for the code.
func (c Code) Kind() Kind {
	switch c {
	case CodeInvalidSide,
		CodeInvalidSelection,
		CodeNotOnRoster,
		CodeDuplicateSelection,
		CodeRotationCap,
		CodePairRepeated,
		CodeInvalidRules,
		CodeInvalidInput,
		CodeAlreadyExists:
		return KindValidation
	case CodeNotLive,
		CodeNoHistory,
		CodeAlreadyStarted,
		CodeInvalidStatus,
		CodeGameOver,
		CodeReferenced:
		return KindState
	case CodeVersionConflict:
		return KindConflict
	case CodeNotFound:
		return KindNotFound
	default:
		return KindInternal
	}
}

// HTTPStatus maps the code to a response status.
func (c Code) HTTPStatus() int {
	switch c.Kind() {
	case KindValidation:
		return http.StatusBadRequest
	case KindState, KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
