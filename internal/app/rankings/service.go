// Package rankings aggregates finished matches into the player rankings table.
package rankings

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/players"
	domain "github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/rankings"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/teams"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/timeutil"
)

// Source is the read-only view of the store the reducer needs.
type Source interface {
	ListMatches(ctx context.Context, filter matches.Filter) ([]matches.Match, error)
	ListPlayers(ctx context.Context) ([]players.Player, error)
	ListTeams(ctx context.Context) ([]teams.Team, error)
}

// Service computes rankings and caches the latest table.
type Service struct {
	source Source
	now    func() time.Time

	mu     sync.RWMutex
	latest *domain.Table
}

// NewService constructs a Service reading from source.
func NewService(source Source) *Service {
	return &Service{source: source, now: time.Now}
}

// Compute builds a fresh table without touching the cache.
func (s *Service) Compute(ctx context.Context) (domain.Table, error) {
	finished, err := s.source.ListMatches(ctx, matches.Filter{Status: matches.StatusFinished})
	if err != nil {
		return domain.Table{}, fmt.Errorf("list finished matches: %w", err)
	}
	playerList, err := s.source.ListPlayers(ctx)
	if err != nil {
		return domain.Table{}, fmt.Errorf("list players: %w", err)
	}
	teamList, err := s.source.ListTeams(ctx)
	if err != nil {
		return domain.Table{}, fmt.Errorf("list teams: %w", err)
	}

	playersByID := make(map[string]players.Player, len(playerList))
	for _, p := range playerList {
		playersByID[p.ID] = p
	}
	teamsByID := make(map[string]teams.Team, len(teamList))
	for _, t := range teamList {
		teamsByID[t.ID] = t
	}

	entries, counted := Reduce(finished, playersByID, teamsByID)
	now := s.now().UTC()
	return domain.Table{
		Date:        timeutil.UTCDate(now),
		GeneratedAt: now,
		Matches:     counted,
		Entries:     entries,
	}, nil
}

// Refresh computes a table and stores it as the latest.
func (s *Service) Refresh(ctx context.Context) (domain.Table, error) {
	table, err := s.Compute(ctx)
	if err != nil {
		return domain.Table{}, err
	}
	s.mu.Lock()
	s.latest = &table
	s.mu.Unlock()
	return table, nil
}

// Latest returns the cached table, if any refresh has succeeded.
func (s *Service) Latest() (domain.Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return domain.Table{}, false
	}
	return *s.latest, true
}

// Current returns the cached table, computing one when nothing is cached yet.
func (s *Service) Current(ctx context.Context) (domain.Table, error) {
	if table, ok := s.Latest(); ok {
		return table, nil
	}
	return s.Compute(ctx)
}
