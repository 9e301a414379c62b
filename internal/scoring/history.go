package scoring

import (
	"time"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	apperrors "github.com/preston-bernstein/tabletennis-scoring-service/internal/errors"
)

// RecordBefore returns history with a deep copy of score pushed on top.
func RecordBefore(history []matches.PointHistoryEntry, score matches.Score, side matches.Side, at time.Time) []matches.PointHistoryEntry {
	out := make([]matches.PointHistoryEntry, len(history), len(history)+1)
	copy(out, history)
	return append(out, matches.PointHistoryEntry{
		ScoringSide: side,
		Before:      score.Clone(),
		Timestamp:   at,
	})
}

// Undo reverts the most recent point. The snapshot was taken inside a live
// encounter, so the restored match is always Live.
func Undo(m matches.Match, at time.Time) (matches.Match, Outcome, error) {
	switch m.Status {
	case matches.StatusUpcoming, matches.StatusCancelled:
		return m, OutcomeNone, apperrors.Newf(apperrors.CodeInvalidStatus, "cannot undo a %s match", m.Status)
	}
	if len(m.History) == 0 {
		return m, OutcomeNone, apperrors.ErrNoHistory
	}

	next := m.Clone()
	last := next.History[len(next.History)-1]
	next.History = next.History[:len(next.History)-1]
	next.Score = last.Before
	if next.Status == matches.StatusFinished {
		next.Winner = nil
		next.EndTime = nil
	}
	next.Status = matches.StatusLive
	next.UpdatedAt = at
	return next, OutcomeUndone, nil
}
