package logging

import (
	"log/slog"

	apperrors "github.com/preston-bernstein/tabletennis-scoring-service/internal/errors"
)

// Info logs an info message when a logger is configured.
func Info(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

// Warn logs a warning when a logger is configured.
func Warn(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

// Error logs an error when a logger is configured.
func Error(logger *slog.Logger, msg string, err error, args ...any) {
	if logger == nil {
		return
	}
	if err != nil {
		args = append(args, "error", err)
	}
	logger.Error(msg, args...)
}

// ErrorFields returns error_code and error_kind args for err.
func ErrorFields(err error) []any {
	if err == nil {
		return nil
	}
	code := string(apperrors.CodeOf(err))
	if code == "" {
		code = "INTERNAL"
	}
	return []any{FieldErrorCode, code, FieldErrorKind, string(apperrors.KindOf(err))}
}
