package handlers

import (
	nethttp "net/http"

	appteams "github.com/preston-bernstein/tabletennis-scoring-service/internal/app/teams"
)

// ListTeams returns every team sorted by name.
func (h *Handler) ListTeams(w nethttp.ResponseWriter, r *nethttp.Request) {
	logger := loggerFromContext(r, h.logger)
	list, err := h.teams.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, list, logger)
}

// CreateTeam registers a team roster.
func (h *Handler) CreateTeam(w nethttp.ResponseWriter, r *nethttp.Request) {
	logger := loggerFromContext(r, h.logger)
	var in appteams.CreateInput
	if err := decodeJSON(r, &in); err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	t, err := h.teams.Create(r.Context(), in)
	if err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	writeJSON(w, nethttp.StatusCreated, t, logger)
}

// GetTeam returns one team.
func (h *Handler) GetTeam(w nethttp.ResponseWriter, r *nethttp.Request) {
	logger := loggerFromContext(r, h.logger)
	t, err := h.teams.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, t, logger)
}

// DeleteTeam removes a team no match references.
func (h *Handler) DeleteTeam(w nethttp.ResponseWriter, r *nethttp.Request) {
	logger := loggerFromContext(r, h.logger)
	if err := h.teams.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	w.WriteHeader(nethttp.StatusNoContent)
}
