package store

import (
	"context"
	"sort"
	"sync"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/players"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/teams"
	apperrors "github.com/preston-bernstein/tabletennis-scoring-service/internal/errors"
)

// MemoryStore keeps players, teams and matches in memory. Reads return copies.
type MemoryStore struct {
	mu      sync.RWMutex
	players map[string]players.Player
	teams   map[string]teams.Team
	matches map[string]matches.Match
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players: make(map[string]players.Player),
		teams:   make(map[string]teams.Team),
		matches: make(map[string]matches.Match),
	}
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// CreatePlayer stores a new player.
func (s *MemoryStore) CreatePlayer(ctx context.Context, p players.Player) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[p.ID]; ok {
		return AlreadyExists("player", p.ID)
	}
	for _, existing := range s.players {
		if existing.Name == p.Name {
			return AlreadyExists("player", p.Name)
		}
	}
	s.players[p.ID] = p
	return nil
}

// GetPlayer retrieves a player by ID.
func (s *MemoryStore) GetPlayer(ctx context.Context, id string) (players.Player, error) {
	if err := ctx.Err(); err != nil {
		return players.Player{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return players.Player{}, apperrors.NotFound("player", id)
	}
	return p, nil
}

// ListPlayers returns all players ordered by name.
func (s *MemoryStore) ListPlayers(ctx context.Context) ([]players.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]players.Player, 0, len(s.players))
	for _, p := range s.players {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// DeletePlayer removes a player.
func (s *MemoryStore) DeletePlayer(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[id]; !ok {
		return apperrors.NotFound("player", id)
	}
	delete(s.players, id)
	return nil
}

// CreateTeam stores a new team.
func (s *MemoryStore) CreateTeam(ctx context.Context, t teams.Team) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.teams[t.ID]; ok {
		return AlreadyExists("team", t.ID)
	}
	for _, existing := range s.teams {
		if existing.Name == t.Name {
			return AlreadyExists("team", t.Name)
		}
	}
	t.PlayerIDs = t.Roster()
	s.teams[t.ID] = t
	return nil
}

// GetTeam retrieves a team and its roster.
func (s *MemoryStore) GetTeam(ctx context.Context, id string) (teams.Team, error) {
	if err := ctx.Err(); err != nil {
		return teams.Team{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.teams[id]
	if !ok {
		return teams.Team{}, apperrors.NotFound("team", id)
	}
	t.PlayerIDs = t.Roster()
	return t, nil
}

// ListTeams returns all teams ordered by name.
func (s *MemoryStore) ListTeams(ctx context.Context) ([]teams.Team, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]teams.Team, 0, len(s.teams))
	for _, t := range s.teams {
		t.PlayerIDs = t.Roster()
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// DeleteTeam removes a team.
func (s *MemoryStore) DeleteTeam(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.teams[id]; !ok {
		return apperrors.NotFound("team", id)
	}
	delete(s.teams, id)
	return nil
}

// CreateMatch stores a new match as given.
func (s *MemoryStore) CreateMatch(ctx context.Context, m matches.Match) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.matches[m.ID]; ok {
		return AlreadyExists("match", m.ID)
	}
	s.matches[m.ID] = m.Clone()
	return nil
}

// GetMatch retrieves a match by ID.
func (s *MemoryStore) GetMatch(ctx context.Context, id string) (matches.Match, error) {
	if err := ctx.Err(); err != nil {
		return matches.Match{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[id]
	if !ok {
		return matches.Match{}, apperrors.NotFound("match", id)
	}
	return m.Clone(), nil
}

// ListMatches returns matches newest first.
func (s *MemoryStore) ListMatches(ctx context.Context, filter matches.Filter) ([]matches.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]matches.Match, 0, len(s.matches))
	for _, m := range s.matches {
		if filter.Matches(m) {
			result = append(result, m.Clone())
		}
	}
	SortNewestFirst(result)
	return result, nil
}

// SaveMatch replaces a match when its version is current.
func (s *MemoryStore) SaveMatch(ctx context.Context, m matches.Match) (matches.Match, error) {
	if err := ctx.Err(); err != nil {
		return matches.Match{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.matches[m.ID]
	if !ok {
		return matches.Match{}, apperrors.NotFound("match", m.ID)
	}
	if current.Version != m.Version {
		return matches.Match{}, VersionConflict(m.ID, m.Version, current.Version)
	}
	saved := m.Clone()
	saved.Version++
	s.matches[m.ID] = saved
	return saved.Clone(), nil
}

// DeleteMatch removes a match.
func (s *MemoryStore) DeleteMatch(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.matches[id]; !ok {
		return apperrors.NotFound("match", id)
	}
	delete(s.matches, id)
	return nil
}

var _ Store = (*MemoryStore)(nil)
