package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/players"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/teams"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/store"
)

// FixtureTime is the creation time stamped on fixtures.
var FixtureTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// SamplePlayer returns a Senior player fixture whose name derives from id.
func SamplePlayer(id string) players.Player {
	return players.Player{
		ID:        id,
		Name:      "Player " + id,
		Category:  players.CategorySenior,
		CreatedAt: FixtureTime,
		UpdatedAt: FixtureTime,
	}
}

// SampleTeam returns a team fixture with the given roster.
func SampleTeam(id string, playerIDs ...string) teams.Team {
	return teams.Team{
		ID:        id,
		Name:      "Team " + id,
		PlayerIDs: playerIDs,
		CreatedAt: FixtureTime,
		UpdatedAt: FixtureTime,
	}
}

// SeedMemoryStore returns a memory store holding players p1, p2, a1..a4 and
// b1..b4, team t1 (a1..a4) and team t2 (b1..b4).
func SeedMemoryStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemoryStore()
	for _, id := range []string{"p1", "p2", "a1", "a2", "a3", "a4", "b1", "b2", "b3", "b4"} {
		if err := s.CreatePlayer(ctx, SamplePlayer(id)); err != nil {
			t.Fatalf("seed player %s: %v", id, err)
		}
	}
	for _, team := range []teams.Team{
		SampleTeam("t1", "a1", "a2", "a3", "a4"),
		SampleTeam("t2", "b1", "b2", "b3", "b4"),
	} {
		if err := s.CreateTeam(ctx, team); err != nil {
			t.Fatalf("seed team %s: %v", team.ID, err)
		}
	}
	return s
}

// SequenceIDs hands out id-1, id-2, ... in order.
type SequenceIDs struct {
	mu   sync.Mutex
	next int
}

// NewID implements id.Generator.
func (s *SequenceIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("id-%d", s.next)
}
