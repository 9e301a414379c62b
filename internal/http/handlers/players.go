package handlers

import (
	nethttp "net/http"

	appplayers "github.com/preston-bernstein/tabletennis-scoring-service/internal/app/players"
)

// ListPlayers returns every registered player sorted by name.
func (h *Handler) ListPlayers(w nethttp.ResponseWriter, r *nethttp.Request) {
	logger := loggerFromContext(r, h.logger)
	list, err := h.players.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, list, logger)
}

// CreatePlayer registers a player.
func (h *Handler) CreatePlayer(w nethttp.ResponseWriter, r *nethttp.Request) {
	logger := loggerFromContext(r, h.logger)
	var in appplayers.CreateInput
	if err := decodeJSON(r, &in); err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	p, err := h.players.Create(r.Context(), in)
	if err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	writeJSON(w, nethttp.StatusCreated, p, logger)
}

// GetPlayer returns one player.
func (h *Handler) GetPlayer(w nethttp.ResponseWriter, r *nethttp.Request) {
	logger := loggerFromContext(r, h.logger)
	p, err := h.players.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, p, logger)
}

// DeletePlayer removes a player no team or match references.
func (h *Handler) DeletePlayer(w nethttp.ResponseWriter, r *nethttp.Request) {
	logger := loggerFromContext(r, h.logger)
	if err := h.players.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	w.WriteHeader(nethttp.StatusNoContent)
}
