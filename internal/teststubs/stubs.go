package teststubs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/rankings"
)

// StubRefresher is a test double for poller.Refresher.
type StubRefresher struct {
	Table  rankings.Table
	Err    error
	Calls  atomic.Int32
	Notify chan struct{}

	mu sync.Mutex
}

// Refresh returns the configured table and error while tracking calls.
func (s *StubRefresher) Refresh(ctx context.Context) (rankings.Table, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Notify != nil {
		select {
		case <-s.Notify:
		default:
			close(s.Notify)
		}
	}
	s.Calls.Add(1)
	return s.Table, s.Err
}

// SetErr swaps the returned error between calls.
func (s *StubRefresher) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
}

// StubSnapshotStore is a test double for snapshots.Store.
type StubSnapshotStore struct {
	Rankings map[string]rankings.Table // keyed by date
	Matches  map[string]matches.Match  // keyed by id
	LoadErr  error
}

var errSnapshotNotFound = errors.New("snapshot not found")

// LoadRankings returns the table for date if present.
func (s *StubSnapshotStore) LoadRankings(date string) (rankings.Table, error) {
	if s.LoadErr != nil {
		return rankings.Table{}, s.LoadErr
	}
	table, ok := s.Rankings[date]
	if !ok {
		return rankings.Table{}, errSnapshotNotFound
	}
	return table, nil
}

// LoadArchivedMatch returns the archived match if present.
func (s *StubSnapshotStore) LoadArchivedMatch(matchID string) (matches.Match, error) {
	if s.LoadErr != nil {
		return matches.Match{}, s.LoadErr
	}
	m, ok := s.Matches[matchID]
	if !ok {
		return matches.Match{}, errSnapshotNotFound
	}
	return m, nil
}

// StubSnapshotWriter is a test double for poller.SnapshotWriter.
type StubSnapshotWriter struct {
	Err error

	mu      sync.Mutex
	written map[string]rankings.Table // keyed by date
}

// WriteRankingsSnapshot records the table for verification in tests.
func (w *StubSnapshotWriter) WriteRankingsSnapshot(date string, table rankings.Table) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Err != nil {
		return w.Err
	}
	if w.written == nil {
		w.written = make(map[string]rankings.Table)
	}
	w.written[date] = table
	return nil
}

// Written returns the table recorded for date.
func (w *StubSnapshotWriter) Written(date string) (rankings.Table, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	table, ok := w.written[date]
	return table, ok
}

// Count reports how many distinct dates were written.
func (w *StubSnapshotWriter) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.written)
}
