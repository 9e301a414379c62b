package handlers

import (
	nethttp "net/http"
	"strconv"

	appmatches "github.com/preston-bernstein/tabletennis-scoring-service/internal/app/matches"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	apperrors "github.com/preston-bernstein/tabletennis-scoring-service/internal/errors"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/scoring"
)

// matchView is the wire shape of a match. Lists drop the raw history and keep
// only its length.
type matchView struct {
	matches.Match
	HistoryLength int    `json:"historyLength"`
	Outcome       string `json:"outcome,omitempty"`
}

func newMatchView(m matches.Match, withHistory bool) matchView {
	v := matchView{Match: m, HistoryLength: len(m.History)}
	if !withHistory {
		v.History = nil
	}
	return v
}

func resultView(res appmatches.Result) matchView {
	v := newMatchView(res.Match, true)
	v.Outcome = string(res.Outcome)
	return v
}

type startRequest struct {
	InitialServer matches.Side `json:"initialServer"`
}

type encounterRequest struct {
	Side1PlayerIDs []string     `json:"side1PlayerIds"`
	Side2PlayerIDs []string     `json:"side2PlayerIds"`
	InitialServer  matches.Side `json:"initialServer"`
}

type scoreRequest struct {
	ScoringSide matches.Side `json:"scoringSide"`
}

type lengthRequest struct {
	SetsToWin int `json:"setsToWin"`
}

// ListMatches returns matches newest first, optionally filtered by status and kind.
func (h *Handler) ListMatches(w nethttp.ResponseWriter, r *nethttp.Request) {
	logger := loggerFromContext(r, h.logger)
	filter, err := parseFilter(r)
	if err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	list, err := h.matches.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	views := make([]matchView, 0, len(list))
	for _, m := range list {
		views = append(views, newMatchView(m, false))
	}
	writeJSON(w, nethttp.StatusOK, views, logger)
}

func parseFilter(r *nethttp.Request) (matches.Filter, error) {
	q := r.URL.Query()
	filter := matches.Filter{
		Status: matches.Status(q.Get("status")),
		Kind:   matches.Kind(q.Get("kind")),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return matches.Filter{}, apperrors.Newf(apperrors.CodeInvalidInput, "unknown status %q", filter.Status)
	}
	switch filter.Kind {
	case "", matches.KindIndividual, matches.KindDual, matches.KindTeam:
	default:
		return matches.Filter{}, apperrors.Newf(apperrors.CodeInvalidInput, "unknown kind %q", filter.Kind)
	}
	return filter, nil
}

// CreateMatch creates an Upcoming match.
func (h *Handler) CreateMatch(w nethttp.ResponseWriter, r *nethttp.Request) {
	logger := loggerFromContext(r, h.logger)
	var in appmatches.CreateInput
	if err := decodeJSON(r, &in); err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	m, err := h.matches.Create(r.Context(), in)
	if err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	writeJSON(w, nethttp.StatusCreated, newMatchView(m, true), logger)
}

// GetMatch returns one match including its undo history.
func (h *Handler) GetMatch(w nethttp.ResponseWriter, r *nethttp.Request) {
	logger := loggerFromContext(r, h.logger)
	m, err := h.matches.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, newMatchView(m, true), logger)
}

// DeleteMatch removes an Upcoming match.
func (h *Handler) DeleteMatch(w nethttp.ResponseWriter, r *nethttp.Request) {
	logger := loggerFromContext(r, h.logger)
	if err := h.matches.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	w.WriteHeader(nethttp.StatusNoContent)
}

// StartMatch starts an Individual or Dual match.
func (h *Handler) StartMatch(w nethttp.ResponseWriter, r *nethttp.Request) {
	var req startRequest
	h.mutate(w, r, &req, func(id string) (appmatches.Result, error) {
		return h.matches.Start(r.Context(), id, req.InitialServer)
	})
}

// SetupEncounter starts the encounter at the path index with the submitted lineups.
func (h *Handler) SetupEncounter(w nethttp.ResponseWriter, r *nethttp.Request) {
	var req encounterRequest
	h.mutate(w, r, &req, func(id string) (appmatches.Result, error) {
		index, err := strconv.Atoi(r.PathValue("index"))
		if err != nil || index < 0 {
			return appmatches.Result{}, apperrors.Newf(apperrors.CodeInvalidInput, "invalid encounter index %q", r.PathValue("index"))
		}
		return h.matches.SetupEncounter(r.Context(), id, scoring.Setup{
			Index:          index,
			Side1PlayerIDs: req.Side1PlayerIDs,
			Side2PlayerIDs: req.Side2PlayerIDs,
			InitialServer:  req.InitialServer,
		})
	})
}

// ScorePoint awards one point to the submitted side.
func (h *Handler) ScorePoint(w nethttp.ResponseWriter, r *nethttp.Request) {
	var req scoreRequest
	h.mutate(w, r, &req, func(id string) (appmatches.Result, error) {
		return h.matches.ScorePoint(r.Context(), id, req.ScoringSide)
	})
}

// Undo reverts the last point.
func (h *Handler) Undo(w nethttp.ResponseWriter, r *nethttp.Request) {
	h.mutate(w, r, nil, func(id string) (appmatches.Result, error) {
		return h.matches.Undo(r.Context(), id)
	})
}

// ChangeLength changes setsToWin of an Individual or Dual match.
func (h *Handler) ChangeLength(w nethttp.ResponseWriter, r *nethttp.Request) {
	var req lengthRequest
	h.mutate(w, r, &req, func(id string) (appmatches.Result, error) {
		return h.matches.ChangeLength(r.Context(), id, req.SetsToWin)
	})
}

// CancelMatch cancels an Upcoming match.
func (h *Handler) CancelMatch(w nethttp.ResponseWriter, r *nethttp.Request) {
	h.mutate(w, r, nil, func(id string) (appmatches.Result, error) {
		return h.matches.Cancel(r.Context(), id)
	})
}

// mutate decodes the optional body into req, runs op and writes the resulting match.
func (h *Handler) mutate(w nethttp.ResponseWriter, r *nethttp.Request, req any, op func(id string) (appmatches.Result, error)) {
	logger := loggerFromContext(r, h.logger)
	if req != nil {
		if err := decodeJSON(r, req); err != nil {
			writeDomainError(w, r, err, logger)
			return
		}
	}
	res, err := op(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, resultView(res), logger)
}
