package snapshots

import (
	"os"
	"testing"
	"time"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/rankings"
)

func simpleTable(date string) rankings.Table {
	return rankings.Table{
		Date:    date,
		Matches: 1,
		Entries: []rankings.Entry{{PlayerID: "p1", Name: "Ana", Points: 36, Wins: 1, Played: 1}},
	}
}

func writeSimpleSnapshot(t *testing.T, w *Writer, date string) {
	t.Helper()
	if w == nil {
		t.Fatalf("writer is nil for date %s", date)
	}
	if err := w.WriteRankingsSnapshot(date, simpleTable(date)); err != nil {
		t.Fatalf("failed to write snapshot %s: %v", date, err)
	}
}

func requireSnapshotExists(t *testing.T, w *Writer, date string) {
	t.Helper()
	if _, err := os.Stat(RankingsSnapshotPath(w.BasePath(), date)); err != nil {
		t.Fatalf("expected snapshot for %s to be written: %v", date, err)
	}
}

func finishedMatch(id string) matches.Match {
	end := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)
	return matches.Match{
		ID:           id,
		Kind:         matches.KindIndividual,
		Participants: matches.Participants{Side1: []string{"p1"}, Side2: []string{"p2"}},
		BestOf:       &matches.BestOfRules{SetsToWin: 1},
		Status:       matches.StatusFinished,
		Score:        matches.NewScore(matches.ShapeIndividual),
		Winner:       &matches.Winner{Side: matches.Side1, PlayerID: "p1"},
		EndTime:      &end,
		Version:      13,
	}
}

func assertDatesEqual(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("dates length mismatch: got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("dates mismatch at %d: got %v, want %v", i, got, want)
		}
	}
}
