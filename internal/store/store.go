// Package store defines the repository contracts for players, teams and
// matches, plus an in-memory implementation.
package store

import (
	"context"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/players"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/teams"
)

// PlayerRepository persists players. Names are unique.
type PlayerRepository interface {
	CreatePlayer(ctx context.Context, p players.Player) error
	GetPlayer(ctx context.Context, id string) (players.Player, error)
	ListPlayers(ctx context.Context) ([]players.Player, error)
	DeletePlayer(ctx context.Context, id string) error
}

// TeamRepository persists teams. Names are unique.
type TeamRepository interface {
	CreateTeam(ctx context.Context, t teams.Team) error
	GetTeam(ctx context.Context, id string) (teams.Team, error)
	ListTeams(ctx context.Context) ([]teams.Team, error)
	DeleteTeam(ctx context.Context, id string) error
}

// MatchRepository persists matches with optimistic versioning.
type MatchRepository interface {
	CreateMatch(ctx context.Context, m matches.Match) error
	GetMatch(ctx context.Context, id string) (matches.Match, error)
	// ListMatches returns matches newest first.
	ListMatches(ctx context.Context, filter matches.Filter) ([]matches.Match, error)
	// SaveMatch writes m when the stored version equals m.Version and returns
	// the saved match with its version incremented. A mismatch is VERSION_CONFLICT.
	SaveMatch(ctx context.Context, m matches.Match) (matches.Match, error)
	DeleteMatch(ctx context.Context, id string) error
}

// Store bundles every repository behind one backend.
type Store interface {
	PlayerRepository
	TeamRepository
	MatchRepository
	Close() error
}
