package snapshots

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/rankings"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/timeutil"
)

// Store defines how snapshots are loaded.
type Store interface {
	LoadRankings(date string) (rankings.Table, error)
	LoadArchivedMatch(matchID string) (matches.Match, error)
}

// FSStore loads snapshots from the filesystem.
type FSStore struct {
	basePath string
}

// NewFSStore constructs an FS-backed snapshot store rooted at basePath.
func NewFSStore(basePath string) *FSStore {
	return &FSStore{basePath: basePath}
}

// LoadRankings reads the rankings snapshot for date (YYYY-MM-DD).
// Files are expected at {basePath}/rankings/{date}.json.
func (s *FSStore) LoadRankings(date string) (rankings.Table, error) {
	if date == "" {
		return rankings.Table{}, errors.New("snapshot date required")
	}
	if _, err := timeutil.ParseDate(date); err != nil {
		return rankings.Table{}, err
	}
	var payload rankings.Table
	if err := s.load(func(base string) string { return RankingsSnapshotPath(base, date) }, &payload); err != nil {
		return rankings.Table{}, err
	}
	if payload.Date == "" {
		payload.Date = date
	}
	return payload, nil
}

// LoadArchivedMatch reads an archived finished match.
func (s *FSStore) LoadArchivedMatch(matchID string) (matches.Match, error) {
	if matchID == "" {
		return matches.Match{}, errors.New("match id required")
	}
	var m matches.Match
	if err := s.load(func(base string) string { return MatchArchivePath(base, matchID) }, &m); err != nil {
		return matches.Match{}, err
	}
	return m, nil
}

func (s *FSStore) load(path func(base string) string, payload any) error {
	if s == nil {
		return errors.New("snapshot store not configured")
	}
	f, err := os.Open(path(s.basePath))
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(payload)
}
