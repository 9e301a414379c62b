package handlers

import (
	"context"
	"log/slog"
	nethttp "net/http"

	appmatches "github.com/preston-bernstein/tabletennis-scoring-service/internal/app/matches"
	appplayers "github.com/preston-bernstein/tabletennis-scoring-service/internal/app/players"
	appteams "github.com/preston-bernstein/tabletennis-scoring-service/internal/app/teams"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/players"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/rankings"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/teams"
	apperrors "github.com/preston-bernstein/tabletennis-scoring-service/internal/errors"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/poller"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/scoring"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/snapshots"
)

// PlayerService is the player registration surface.
type PlayerService interface {
	Create(ctx context.Context, in appplayers.CreateInput) (players.Player, error)
	List(ctx context.Context) ([]players.Player, error)
	Get(ctx context.Context, id string) (players.Player, error)
	Delete(ctx context.Context, id string) error
}

// TeamService is the team registration surface.
type TeamService interface {
	Create(ctx context.Context, in appteams.CreateInput) (teams.Team, error)
	List(ctx context.Context) ([]teams.Team, error)
	Get(ctx context.Context, id string) (teams.Team, error)
	Delete(ctx context.Context, id string) error
}

// MatchService is the match lifecycle and scoring surface.
type MatchService interface {
	Create(ctx context.Context, in appmatches.CreateInput) (matches.Match, error)
	Get(ctx context.Context, id string) (matches.Match, error)
	List(ctx context.Context, filter matches.Filter) ([]matches.Match, error)
	Start(ctx context.Context, id string, initialServer matches.Side) (appmatches.Result, error)
	SetupEncounter(ctx context.Context, id string, setup scoring.Setup) (appmatches.Result, error)
	ScorePoint(ctx context.Context, id string, side matches.Side) (appmatches.Result, error)
	Undo(ctx context.Context, id string) (appmatches.Result, error)
	ChangeLength(ctx context.Context, id string, setsToWin int) (appmatches.Result, error)
	Cancel(ctx context.Context, id string) (appmatches.Result, error)
	Delete(ctx context.Context, id string) error
}

// RankingsService serves the cached rankings table.
type RankingsService interface {
	Current(ctx context.Context) (rankings.Table, error)
}

// Deps groups the collaborators of Handler. Snapshots and Status are optional.
type Deps struct {
	Players   PlayerService
	Teams     TeamService
	Matches   MatchService
	Rankings  RankingsService
	Snapshots snapshots.Store
	Status    func() poller.Status
	Logger    *slog.Logger
}

// Handler wires HTTP routes to the application services.
type Handler struct {
	players  PlayerService
	teams    TeamService
	matches  MatchService
	rankings RankingsService
	snaps    snapshots.Store
	statusFn func() poller.Status
	logger   *slog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		players:  deps.Players,
		teams:    deps.Teams,
		matches:  deps.Matches,
		rankings: deps.Rankings,
		snaps:    deps.Snapshots,
		statusFn: deps.Status,
		logger:   deps.Logger,
	}
}

// Health reports the service health.
func (h *Handler) Health(w nethttp.ResponseWriter, r *nethttp.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, nethttp.StatusServiceUnavailable, codeUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic (e.g., for Kubernetes probes). With the
// rankings refresher enabled, readiness follows its recent health.
func (h *Handler) Ready(w nethttp.ResponseWriter, r *nethttp.Request) {
	if h.statusFn == nil {
		writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	status := h.statusFn()
	if status.IsReady() {
		writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, nethttp.StatusServiceUnavailable, codeUnavailable, msg, h.logger)
}

// NotFound answers every unmatched route.
func (h *Handler) NotFound(w nethttp.ResponseWriter, r *nethttp.Request) {
	writeError(w, r, nethttp.StatusNotFound, string(apperrors.CodeNotFound), "not found", h.logger)
}
