package snapshots

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/logging"
)

// MatchLister is the read side of the match store.
type MatchLister interface {
	ListMatches(ctx context.Context, filter matches.Filter) ([]matches.Match, error)
}

// Syncer backfills the match archive with finished matches that were never
// archived, for example because snapshots were disabled when they finished.
type Syncer struct {
	matches MatchLister
	writer  *Writer
	cfg     SyncConfig
	logger  *slog.Logger
}

// SyncConfig controls archive backfill.
type SyncConfig struct {
	Enabled bool
}

// NewSyncer constructs an archive syncer.
func NewSyncer(lister MatchLister, writer *Writer, cfg SyncConfig, logger *slog.Logger) *Syncer {
	return &Syncer{
		matches: lister,
		writer:  writer,
		cfg:     cfg,
		logger:  logger,
	}
}

// Run archives every finished match missing from the archive and returns how
// many were written.
func (s *Syncer) Run(ctx context.Context) int {
	if s == nil || !s.cfg.Enabled || s.writer == nil || s.matches == nil {
		return 0
	}
	start := time.Now()
	finished, err := s.matches.ListMatches(ctx, matches.Filter{Status: matches.StatusFinished})
	if err != nil {
		logging.Warn(s.logger, "archive backfill list failed", "err", err)
		return 0
	}
	written := 0
	for _, m := range finished {
		if ctx.Err() != nil {
			break
		}
		if s.writer.HasArchive(m.ID) {
			continue
		}
		if err := s.writer.ArchiveMatch(m); err != nil {
			logging.Warn(s.logger, "archive backfill write failed", logging.FieldMatchID, m.ID, "err", err)
			continue
		}
		written++
	}
	logging.Info(s.logger, "archive backfill complete",
		logging.FieldCount, written,
		logging.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return written
}
