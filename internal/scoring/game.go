// Package scoring implements the table-tennis match scoring engine. Every
// function here is pure: inputs are never mutated and callers persist results.
package scoring

import (
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	apperrors "github.com/preston-bernstein/tabletennis-scoring-service/internal/errors"
)

// Game rules.
const (
	GamePoint      = 11
	WinMargin      = 2
	DeuceThreshold = 10
	pointsPerServe = 2
)

// Game is a single game in progress.
type Game struct {
	Points matches.Points
	Server matches.Side
}

// GameWinner returns the side that has won the game, or SideNone.
func GameWinner(p matches.Points) matches.Side {
	for _, side := range matches.Sides {
		own, opp := p.Of(side), p.Of(side.Opponent())
		if own >= GamePoint && own-opp >= WinMargin {
			return side
		}
	}
	return matches.SideNone
}

// IsDeuce reports whether both sides have reached the deuce threshold.
func IsDeuce(p matches.Points) bool {
	return p.Side1 >= DeuceThreshold && p.Side2 >= DeuceThreshold
}

// NextServer returns who serves after a point that produced p.
func NextServer(p matches.Points, current matches.Side) matches.Side {
	if IsDeuce(p) {
		return current.Opponent()
	}
	total := p.Total()
	if total > 0 && total%pointsPerServe == 0 {
		return current.Opponent()
	}
	return current
}

// ApplyPoint adds one point for side. When the point wins the game the
// returned winner is set and the returned server is the loser, who serves next.
func ApplyPoint(g Game, side matches.Side) (Game, matches.Side, error) {
	if !side.Valid() {
		return g, matches.SideNone, invalidSide(side)
	}
	if GameWinner(g.Points) != matches.SideNone {
		return g, matches.SideNone, apperrors.New(apperrors.CodeGameOver, "game is already won")
	}
	next := Game{Points: g.Points.Add(side, 1)}
	if winner := GameWinner(next.Points); winner != matches.SideNone {
		next.Server = winner.Opponent()
		return next, winner, nil
	}
	next.Server = NextServer(next.Points, g.Server)
	return next, matches.SideNone, nil
}

func invalidSide(side matches.Side) error {
	return apperrors.Newf(apperrors.CodeInvalidSide, "scoring side must be 1 or 2, got %d", side)
}
