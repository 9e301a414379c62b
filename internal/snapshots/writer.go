package snapshots

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/rankings"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/timeutil"
)

type snapshotKind string

const (
	kindRankings snapshotKind = "rankings"
	kindMatches  snapshotKind = "matches"
)

const defaultRetentionDays = 14

// Writer persists snapshots and manifest with pruning.
type Writer struct {
	basePath      string
	retentionDays int
	now           func() time.Time

	// mu guards the manifest read-modify-write.
	mu sync.Mutex
}

// NewWriter constructs a writer rooted at basePath with a rolling window retention.
func NewWriter(basePath string, retentionDays int) *Writer {
	if retentionDays <= 0 {
		retentionDays = defaultRetentionDays
	}
	return &Writer{
		basePath:      basePath,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

func (w *Writer) snapshotPath(kind snapshotKind, key string) string {
	switch kind {
	case kindRankings:
		return RankingsSnapshotPath(w.basePath, key)
	case kindMatches:
		return MatchArchivePath(w.basePath, key)
	default:
		return filepath.Join(w.basePath, string(kind), fmt.Sprintf("%s.json", key))
	}
}

// BasePath exposes the writer root path (primarily for testing).
func (w *Writer) BasePath() string {
	if w == nil {
		return ""
	}
	return w.basePath
}

// WriteRankingsSnapshot writes the rankings table for date (YYYY-MM-DD) and prunes old snapshots.
func (w *Writer) WriteRankingsSnapshot(date string, table rankings.Table) error {
	if table.Date == "" {
		table.Date = date
	}
	if _, err := timeutil.ParseDate(date); err != nil {
		return fmt.Errorf("invalid snapshot date %q: %w", date, err)
	}
	return w.writeSnapshot(kindRankings, date, table)
}

// ArchiveMatch writes a finished match to the archive, replacing any earlier copy.
func (w *Writer) ArchiveMatch(m matches.Match) error {
	if m.ID == "" || strings.ContainsAny(m.ID, `/\`) {
		return fmt.Errorf("invalid match id %q", m.ID)
	}
	if m.Status != matches.StatusFinished {
		return fmt.Errorf("match %s is %s, only finished matches are archived", m.ID, m.Status)
	}
	return w.writeSnapshot(kindMatches, m.ID, m)
}

// HasArchive reports whether matchID has been archived.
func (w *Writer) HasArchive(matchID string) bool {
	if w == nil || w.basePath == "" || matchID == "" {
		return false
	}
	_, err := os.Stat(w.snapshotPath(kindMatches, matchID))
	return err == nil
}

func (w *Writer) writeSnapshot(kind snapshotKind, key string, payload any) error {
	if w == nil {
		return fmt.Errorf("snapshot writer not configured")
	}
	if key == "" {
		return fmt.Errorf("snapshot key required")
	}

	target := w.snapshotPath(kind, key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, data) {
		return w.updateManifest(kind, key)
	}

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		return err
	}

	return w.updateManifest(kind, key)
}

func (w *Writer) updateManifest(kind snapshotKind, key string) error {
	manifestPath := filepath.Join(w.basePath, "manifest.json")
	m, _ := readManifest(manifestPath, w.retentionDays)
	now := w.now().UTC()

	keys, err := w.listKeys(kind)
	if err != nil {
		return err
	}

	switch kind {
	case kindRankings:
		if !containsKey(keys, key) {
			keys = append(keys, key)
		}
		pruned := w.pruneOldSnapshots(kind, keys)
		m.Rankings.Dates = pruned
		m.Rankings.LastRefreshed = now
		m.Retention.RankingsDays = w.retentionDays
	case kindMatches:
		m.Matches.Count = len(keys)
		m.Matches.LastArchived = now
	}

	return writeManifest(w.basePath, m)
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func (w *Writer) listKeys(kind snapshotKind) ([]string, error) {
	dir := filepath.Join(w.basePath, string(kind))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) != ".json" {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}

func (w *Writer) pruneOldSnapshots(kind snapshotKind, dates []string) []string {
	cutoff := timeutil.RetentionCutoff(w.now(), w.retentionDays)
	keep := make([]string, 0, len(dates))
	for _, d := range dates {
		parsed, err := timeutil.ParseDate(d)
		if err != nil {
			keep = append(keep, d)
			continue
		}
		if parsed.Before(cutoff) {
			_ = os.Remove(w.snapshotPath(kind, d))
			continue
		}
		keep = append(keep, d)
	}
	sort.Strings(keep)
	return keep
}
