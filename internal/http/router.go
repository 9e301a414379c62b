package http

import (
	nethttp "net/http"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/http/handlers"
)

// NewRouter registers HTTP routes on a ServeMux. A nil admin handler leaves
// the admin routes unmounted. Unmatched paths and methods get a JSON 404.
func NewRouter(handler *handlers.Handler, admin *handlers.AdminHandler) *nethttp.ServeMux {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/", handler.NotFound)
	mux.HandleFunc("GET /health", handler.Health)
	mux.HandleFunc("GET /ready", handler.Ready)

	mux.HandleFunc("GET /players", handler.ListPlayers)
	mux.HandleFunc("POST /players", handler.CreatePlayer)
	mux.HandleFunc("GET /players/{id}", handler.GetPlayer)
	mux.HandleFunc("DELETE /players/{id}", handler.DeletePlayer)

	mux.HandleFunc("GET /teams", handler.ListTeams)
	mux.HandleFunc("POST /teams", handler.CreateTeam)
	mux.HandleFunc("GET /teams/{id}", handler.GetTeam)
	mux.HandleFunc("DELETE /teams/{id}", handler.DeleteTeam)

	mux.HandleFunc("GET /matches", handler.ListMatches)
	mux.HandleFunc("POST /matches", handler.CreateMatch)
	mux.HandleFunc("GET /matches/{id}", handler.GetMatch)
	mux.HandleFunc("DELETE /matches/{id}", handler.DeleteMatch)
	mux.HandleFunc("PUT /matches/{id}/start", handler.StartMatch)
	mux.HandleFunc("PUT /matches/{id}/encounters/{index}", handler.SetupEncounter)
	mux.HandleFunc("PUT /matches/{id}/score", handler.ScorePoint)
	mux.HandleFunc("PUT /matches/{id}/undo", handler.Undo)
	mux.HandleFunc("PUT /matches/{id}/length", handler.ChangeLength)
	mux.HandleFunc("PUT /matches/{id}/cancel", handler.CancelMatch)

	mux.HandleFunc("GET /rankings", handler.Rankings)

	if admin != nil {
		mux.HandleFunc("POST /admin/rankings/refresh", admin.RefreshRankings)
	}
	return mux
}
