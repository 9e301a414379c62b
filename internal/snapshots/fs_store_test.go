package snapshots

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFSStoreLoadRankings(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 10)
	date := time.Now().UTC().Format("2006-01-02")
	writeSimpleSnapshot(t, w, date)

	store := NewFSStore(dir)
	got, err := store.LoadRankings(date)
	if err != nil {
		t.Fatalf("failed to load rankings: %v", err)
	}
	if got.Date != date || len(got.Entries) != 1 || got.Entries[0].PlayerID != "p1" {
		t.Fatalf("unexpected rankings snapshot: %+v", got)
	}
}

func TestFSStoreLoadArchivedMatch(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 10)
	if err := w.ArchiveMatch(finishedMatch("m1")); err != nil {
		t.Fatalf("archive: %v", err)
	}
	got, err := NewFSStore(dir).LoadArchivedMatch("m1")
	if err != nil {
		t.Fatalf("load archive: %v", err)
	}
	if got.Version != 13 || got.Winner == nil || got.Winner.PlayerID != "p1" {
		t.Fatalf("unexpected archived match %+v", got)
	}
}

func TestFSStoreErrors(t *testing.T) {
	store := NewFSStore(t.TempDir())
	if _, err := store.LoadRankings("2024-01-01"); err == nil {
		t.Fatalf("expected error for missing snapshot")
	}
	if _, err := store.LoadRankings(""); err == nil {
		t.Fatalf("expected error for empty date")
	}
	if _, err := store.LoadRankings("../../etc"); err == nil {
		t.Fatalf("expected error for malformed date")
	}
	if _, err := store.LoadArchivedMatch(""); err == nil {
		t.Fatalf("expected error for empty match id")
	}
	var nilStore *FSStore
	if _, err := nilStore.LoadRankings("2024-01-01"); err == nil {
		t.Fatalf("expected error for nil store")
	}
}

func TestFSStoreDecodeError(t *testing.T) {
	dir := t.TempDir()
	path := RankingsSnapshotPath(dir, "2024-01-01")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{bad json"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if _, err := NewFSStore(dir).LoadRankings("2024-01-01"); err == nil {
		t.Fatalf("expected decode error")
	}
}
