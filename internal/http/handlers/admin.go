package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/rankings"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/http/requestutil"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/logging"
)

var errSnapshotsDisabled = errors.New("snapshot store not configured")

// RankingsRefresher forces a rankings recompute and snapshot write.
type RankingsRefresher interface {
	RefreshNow(ctx context.Context) (rankings.Table, error)
}

// AdminHandler exposes operator endpoints. They are unauthenticated.
type AdminHandler struct {
	refresher RankingsRefresher
	logger    *slog.Logger
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(refresher RankingsRefresher, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		refresher: refresher,
		logger:    logger,
	}
}

// RefreshRankings recomputes rankings now, writes today's snapshot and returns the table.
func (h *AdminHandler) RefreshRankings(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	if h.refresher == nil {
		writeError(w, r, http.StatusServiceUnavailable, codeUnavailable, "rankings refresher not configured", logger)
		return
	}
	table, err := h.refresher.RefreshNow(r.Context())
	if err != nil {
		logging.Warn(logger, "admin rankings refresh failed",
			slog.String("client_ip", requestutil.ClientIP(r)),
			slog.Any("err", err),
		)
		writeDomainError(w, r, err, logger)
		return
	}
	logging.Info(logger, "admin rankings refreshed",
		slog.String(logging.FieldDate, table.Date),
		slog.Int(logging.FieldCount, len(table.Entries)),
	)
	writeJSON(w, http.StatusOK, table, logger)
}
