package handlers

import (
	"log/slog"
	nethttp "net/http"
	"strings"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/rankings"
	apperrors "github.com/preston-bernstein/tabletennis-scoring-service/internal/errors"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/logging"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/timeutil"
)

// Rankings returns the cached rankings table, or the dated snapshot when
// ?date=YYYY-MM-DD is given. Dated requests never recompute.
func (h *Handler) Rankings(w nethttp.ResponseWriter, r *nethttp.Request) {
	logger := loggerFromContext(r, h.logger)
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		table, err := h.rankings.Current(r.Context())
		if err != nil {
			writeDomainError(w, r, err, logger)
			return
		}
		writeJSON(w, nethttp.StatusOK, table, logger)
		return
	}

	if _, err := timeutil.ParseDate(date); err != nil {
		writeError(w, r, nethttp.StatusBadRequest, string(apperrors.CodeInvalidInput), "invalid date format (expected YYYY-MM-DD)", logger)
		return
	}
	table, err := h.loadSnapshot(date)
	if err != nil {
		logging.Warn(logger, "rankings snapshot unavailable", slog.String(logging.FieldDate, date), "err", err)
		writeDomainError(w, r, apperrors.NotFound("rankings snapshot", date), logger)
		return
	}
	logging.Info(logger, "served rankings snapshot", slog.String(logging.FieldDate, date), slog.Int(logging.FieldCount, len(table.Entries)))
	writeJSON(w, nethttp.StatusOK, table, logger)
}

func (h *Handler) loadSnapshot(date string) (rankings.Table, error) {
	if h.snaps == nil {
		return rankings.Table{}, errSnapshotsDisabled
	}
	return h.snaps.LoadRankings(date)
}
