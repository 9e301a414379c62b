package scoring

import "github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"

// RelayResult is the outcome of one relay point.
type RelayResult struct {
	Cumulative matches.Points
	Server     matches.Side
	// LegWinner is set when the point reached the live leg's target.
	LegWinner matches.Side
	// MatchWinner is set when the point reached the final target.
	MatchWinner matches.Side
}

// ApplyRelayPoint adds one point to the running relay score for leg legIndex (0-based).
// Serve swaps every two points counted from legStart; relay has no deuce.
func ApplyRelayPoint(rules matches.TeamRelayRules, legIndex int, cumulative, legStart matches.Points, server, side matches.Side) (RelayResult, error) {
	if !side.Valid() {
		return RelayResult{}, invalidSide(side)
	}
	next := cumulative.Add(side, 1)
	res := RelayResult{Cumulative: next, Server: server}

	played := next.Total() - legStart.Total()
	if played > 0 && played%pointsPerServe == 0 {
		res.Server = server.Opponent()
	}

	if next.Of(side) >= rules.LegTarget(legIndex+1) {
		res.LegWinner = side
		if next.Of(side) >= rules.FinalTarget() {
			res.MatchWinner = side
		}
	}
	return res, nil
}
