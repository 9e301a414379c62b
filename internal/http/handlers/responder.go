package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	apperrors "github.com/preston-bernstein/tabletennis-scoring-service/internal/errors"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/http/middleware"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/logging"
)

const maxBodyBytes = 1 << 20

const (
	codeInternal    = "INTERNAL"
	codeUnavailable = "UNAVAILABLE"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error     string            `json:"error"`
	Code      string            `json:"code"`
	RequestID string            `json:"requestId,omitempty"`
	Retryable bool              `json:"retryable"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error(logger, "failed to encode response", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger *slog.Logger) {
	writeJSON(w, status, errorBody{
		Error:     message,
		Code:      code,
		RequestID: requestID(r),
	}, logger)
}

// writeDomainError maps err onto the error taxonomy. Anything outside it is
// logged and reported as a bare 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	domainErr, ok := apperrors.As(err)
	if !ok || domainErr.Kind() == apperrors.KindInternal {
		logging.Error(logger, "request failed", err)
		writeError(w, r, http.StatusInternalServerError, codeInternal, "internal error", logger)
		return
	}
	writeJSON(w, domainErr.Code.HTTPStatus(), errorBody{
		Error:     domainErr.Message,
		Code:      string(domainErr.Code),
		RequestID: requestID(r),
		Retryable: domainErr.Retryable(),
		Metadata:  domainErr.Metadata,
	}, logger)
}

func requestID(r *http.Request) string {
	if r == nil {
		return ""
	}
	reqID := middleware.RequestIDFromContext(r.Context())
	if reqID == "" {
		reqID = r.Header.Get(middleware.HeaderRequestID)
	}
	return reqID
}

// decodeJSON reads a single JSON object from the request body into dest.
// Malformed or unknown fields are INVALID_INPUT. An empty body leaves dest untouched.
func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.Wrap(apperrors.CodeInvalidInput, "invalid request body", err)
	}
	return nil
}

func loggerFromContext(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if r == nil {
		return fallback
	}
	return logging.FromContext(r.Context(), fallback)
}
