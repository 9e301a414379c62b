package server

import (
	"log/slog"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/config"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/snapshots"
)

type snapshotComponents struct {
	store  snapshots.Store
	writer *snapshots.Writer
	syncer *snapshots.Syncer
}

// buildSnapshots returns empty components when snapshots are disabled, which
// leaves dated rankings and archives unavailable.
func buildSnapshots(cfg config.Config, lister snapshots.MatchLister, logger *slog.Logger) snapshotComponents {
	if !cfg.Snapshots.Enabled {
		return snapshotComponents{}
	}
	basePath := cfg.Snapshots.Folder
	writer := snapshots.NewWriter(basePath, cfg.Snapshots.RetentionDays)
	return snapshotComponents{
		store:  snapshots.NewFSStore(basePath),
		writer: writer,
		syncer: snapshots.NewSyncer(lister, writer, snapshots.SyncConfig{Enabled: true}, logger),
	}
}
