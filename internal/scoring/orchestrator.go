package scoring

import (
	"fmt"
	"time"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	apperrors "github.com/preston-bernstein/tabletennis-scoring-service/internal/errors"
)

// Outcome tags the transition a successful operation produced.
type Outcome string

const (
	OutcomeNone               Outcome = ""
	OutcomePointScored        Outcome = "point_scored"
	OutcomeGameWon            Outcome = "game_won"
	OutcomeEncounterWon       Outcome = "encounter_won"
	OutcomeTiebreakerRequired Outcome = "tiebreaker_required"
	OutcomeMatchFinished      Outcome = "match_finished"
	OutcomeEncounterStarted   Outcome = "encounter_started"
	OutcomeUndone             Outcome = "undone"
	OutcomeLengthChanged      Outcome = "length_changed"
	OutcomeCancelled          Outcome = "cancelled"
)

// Setup describes the players and server for the next encounter.
type Setup struct {
	Index          int
	Side1PlayerIDs []string
	Side2PlayerIDs []string
	InitialServer  matches.Side
}

// ScorePoint applies one point for side and resolves any game, encounter or
// match completion it causes. The returned match carries the new history entry.
func ScorePoint(m matches.Match, side matches.Side, at time.Time) (matches.Match, Outcome, error) {
	if !side.Valid() {
		return m, OutcomeNone, invalidSide(side)
	}
	if m.Status != matches.StatusLive {
		return m, OutcomeNone, apperrors.Newf(apperrors.CodeNotLive, "match is %s, not Live", m.Status)
	}

	next := m.Clone()
	next.History = RecordBefore(next.History, next.Score, side, at)
	next.UpdatedAt = at

	var (
		outcome Outcome
		err     error
	)
	switch shape := next.Shape(); shape {
	case matches.ShapeIndividual, matches.ShapeDual:
		outcome, err = scoreBestOf(&next, side, at)
	case matches.ShapeTeamSet:
		outcome, err = scoreTeamSet(&next, side, at)
	case matches.ShapeTeamRelay:
		outcome, err = scoreRelay(&next, side, at)
	default:
		err = unsupportedShape(next)
	}
	if err != nil {
		return m, OutcomeNone, err
	}
	return next, outcome, nil
}

func scoreBestOf(m *matches.Match, side matches.Side, at time.Time) (Outcome, error) {
	games := m.Score.Games
	if games == nil || m.BestOf == nil {
		return OutcomeNone, corruptScore(*m)
	}
	game, winner, err := ApplyPoint(Game{Points: m.Score.CurrentGame, Server: m.Score.Server}, side)
	if err != nil {
		return OutcomeNone, err
	}
	m.Score.CurrentGame = game.Points
	m.Score.Server = game.Server
	if winner == matches.SideNone {
		return OutcomePointScored, nil
	}

	games.CompletedGames = append(games.CompletedGames, game.Points)
	games.SetsWon = games.SetsWon.Add(winner, 1)
	m.Score.CurrentGame = matches.Points{}
	if games.SetsWon.Of(winner) >= m.BestOf.SetsToWin {
		finish(m, winner, at)
		return OutcomeMatchFinished, nil
	}
	return OutcomeGameWon, nil
}

func scoreTeamSet(m *matches.Match, side matches.Side, at time.Time) (Outcome, error) {
	sets := m.Score.Sets
	live := m.Score.LiveEncounter()
	if sets == nil || m.TeamSet == nil || live < 0 {
		return OutcomeNone, corruptScore(*m)
	}
	game, winner, err := ApplyPoint(Game{Points: m.Score.CurrentGame, Server: m.Score.Server}, side)
	if err != nil {
		return OutcomeNone, err
	}
	m.Score.CurrentGame = game.Points
	m.Score.Server = game.Server
	if winner == matches.SideNone {
		return OutcomePointScored, nil
	}

	final := game.Points
	enc := &sets.Encounters[live]
	enc.Final = &final
	enc.Winner = winner
	enc.Status = matches.EncounterFinished
	sets.EncountersWon = sets.EncountersWon.Add(winner, 1)
	m.Score.CurrentGame = matches.Points{}

	n := m.TeamSet.NumberOfEncounters
	won := sets.EncountersWon
	switch {
	case won.Of(winner)*2 > n:
		finish(m, winner, at)
		return OutcomeMatchFinished, nil
	case m.Score.FinishedEncounters() >= n:
		if won.Side1 == won.Side2 && n%2 == 0 {
			m.Status = matches.StatusAwaitingTiebreakerSetup
			return OutcomeTiebreakerRequired, nil
		}
		finish(m, won.Leader(), at)
		return OutcomeMatchFinished, nil
	default:
		m.Status = matches.StatusAwaitingEncounterSetup
		return OutcomeEncounterWon, nil
	}
}

func scoreRelay(m *matches.Match, side matches.Side, at time.Time) (Outcome, error) {
	relay := m.Score.Relay
	live := m.Score.LiveEncounter()
	if relay == nil || m.TeamRelay == nil || live < 0 {
		return OutcomeNone, corruptScore(*m)
	}
	res, err := ApplyRelayPoint(*m.TeamRelay, live, relay.Cumulative, relay.LegStart, m.Score.Server, side)
	if err != nil {
		return OutcomeNone, err
	}
	relay.Cumulative = res.Cumulative
	m.Score.Server = res.Server
	if res.LegWinner == matches.SideNone {
		return OutcomePointScored, nil
	}

	final := res.Cumulative
	leg := &relay.Legs[live]
	leg.Final = &final
	leg.Winner = res.LegWinner
	leg.Status = matches.EncounterFinished
	if res.MatchWinner != matches.SideNone {
		finish(m, res.MatchWinner, at)
		return OutcomeMatchFinished, nil
	}
	m.Status = matches.StatusAwaitingEncounterSetup
	return OutcomeEncounterWon, nil
}

func finish(m *matches.Match, side matches.Side, at time.Time) {
	end := at
	m.Status = matches.StatusFinished
	m.EndTime = &end
	winner := &matches.Winner{Side: side}
	switch m.Shape() {
	case matches.ShapeIndividual:
		if ids := m.Participants.Players(side); len(ids) > 0 {
			winner.PlayerID = ids[0]
		}
	case matches.ShapeTeamSet, matches.ShapeTeamRelay:
		winner.TeamID = m.Participants.Team(side)
	}
	m.Winner = winner
}

// SetupEncounter starts the match (index 0) or the next team encounter.
// Rosters are only consulted for team matches.
func SetupEncounter(m matches.Match, setup Setup, rosters Rosters, at time.Time) (matches.Match, Outcome, error) {
	if !setup.InitialServer.Valid() {
		return m, OutcomeNone, apperrors.Newf(apperrors.CodeInvalidSide, "initial server must be 1 or 2, got %d", setup.InitialServer)
	}
	switch m.Status {
	case matches.StatusUpcoming:
		if setup.Index != 0 {
			return m, OutcomeNone, apperrors.Newf(apperrors.CodeInvalidInput, "first encounter must have index 0, got %d", setup.Index)
		}
	case matches.StatusAwaitingEncounterSetup, matches.StatusAwaitingTiebreakerSetup:
	case matches.StatusLive:
		return m, OutcomeNone, apperrors.New(apperrors.CodeAlreadyStarted, "an encounter is already live")
	default:
		return m, OutcomeNone, apperrors.Newf(apperrors.CodeInvalidStatus, "cannot set up an encounter on a %s match", m.Status)
	}

	var (
		next matches.Match
		err  error
	)
	switch shape := m.Shape(); shape {
	case matches.ShapeIndividual, matches.ShapeDual:
		next, err = startBestOf(m, setup)
	case matches.ShapeTeamSet, matches.ShapeTeamRelay:
		next, err = setupTeamEncounter(m, setup, rosters)
	default:
		err = unsupportedShape(m)
	}
	if err != nil {
		return m, OutcomeNone, err
	}

	next.Score.Server = setup.InitialServer
	next.History = nil
	next.Status = matches.StatusLive
	if next.StartTime == nil {
		start := at
		next.StartTime = &start
	}
	next.UpdatedAt = at
	return next, OutcomeEncounterStarted, nil
}

func startBestOf(m matches.Match, setup Setup) (matches.Match, error) {
	if m.Status != matches.StatusUpcoming {
		return m, apperrors.Newf(apperrors.CodeInvalidStatus, "%s match has a single encounter", m.Kind)
	}
	for _, side := range matches.Sides {
		selected := setupSelection(setup, side)
		if len(selected) > 0 && !sameMembers(selected, m.Participants.Players(side)) {
			return m, selectionError(apperrors.CodeInvalidSelection, side, selected[0],
				"side %d selection must match the registered participants", side)
		}
	}
	next := m.Clone()
	next.Score = matches.NewScore(m.Shape())
	return next, nil
}

func setupTeamEncounter(m matches.Match, setup Setup, rosters Rosters) (matches.Match, error) {
	finished := m.Score.FinishedEncounters()
	if setup.Index != finished {
		return m, apperrors.Newf(apperrors.CodeInvalidInput, "next encounter index is %d, got %d", finished, setup.Index)
	}
	limit := encounterLimit(m)
	switch m.Status {
	case matches.StatusAwaitingTiebreakerSetup:
		if m.Shape() != matches.ShapeTeamSet || setup.Index != limit {
			return m, apperrors.Newf(apperrors.CodeInvalidInput, "tiebreaker must be encounter %d", limit)
		}
	default:
		if setup.Index >= limit {
			return m, apperrors.Newf(apperrors.CodeInvalidInput, "encounter index %d exceeds the %d scheduled", setup.Index, limit)
		}
	}
	if err := ValidateSelection(m, setup.Side1PlayerIDs, setup.Side2PlayerIDs, rosters); err != nil {
		return m, err
	}

	next := m.Clone()
	if next.Score.Sets == nil && next.Score.Relay == nil {
		next.Score = matches.NewScore(next.Shape())
	}
	enc := matches.Encounter{
		Index:        setup.Index,
		Side1Players: append([]string(nil), setup.Side1PlayerIDs...),
		Side2Players: append([]string(nil), setup.Side2PlayerIDs...),
		Status:       matches.EncounterLive,
	}
	next.Score.CurrentGame = matches.Points{}
	switch next.Shape() {
	case matches.ShapeTeamSet:
		next.Score.Sets.Encounters = append(next.Score.Sets.Encounters[:setup.Index], enc)
	case matches.ShapeTeamRelay:
		next.Score.Relay.Legs = append(next.Score.Relay.Legs[:setup.Index], enc)
		next.Score.Relay.LegStart = next.Score.Relay.Cumulative
	}
	return next, nil
}

func encounterLimit(m matches.Match) int {
	switch m.Shape() {
	case matches.ShapeTeamSet:
		return m.TeamSet.NumberOfEncounters
	case matches.ShapeTeamRelay:
		return m.TeamRelay.NumberOfLegs
	default:
		return 1
	}
}

// ChangeLength updates setsToWin on an Individual or Dual match before it starts.
func ChangeLength(m matches.Match, setsToWin int, at time.Time) (matches.Match, Outcome, error) {
	if s := m.Shape(); s != matches.ShapeIndividual && s != matches.ShapeDual {
		return m, OutcomeNone, apperrors.New(apperrors.CodeInvalidRules, "only Individual and Dual matches have a length")
	}
	if m.Status != matches.StatusUpcoming {
		return m, OutcomeNone, apperrors.Newf(apperrors.CodeInvalidStatus, "cannot change length of a %s match", m.Status)
	}
	if !matches.ValidSetsToWin(setsToWin) {
		return m, OutcomeNone, apperrors.Newf(apperrors.CodeInvalidRules, "setsToWin must be between %d and %d", matches.MinSetsToWin, matches.MaxSetsToWin)
	}
	next := m.Clone()
	next.BestOf = &matches.BestOfRules{SetsToWin: setsToWin}
	next.UpdatedAt = at
	return next, OutcomeLengthChanged, nil
}

// Cancel withdraws a match that has not started.
func Cancel(m matches.Match, at time.Time) (matches.Match, Outcome, error) {
	if m.Status != matches.StatusUpcoming {
		return m, OutcomeNone, apperrors.Newf(apperrors.CodeInvalidStatus, "cannot cancel a %s match", m.Status)
	}
	next := m.Clone()
	next.Status = matches.StatusCancelled
	next.UpdatedAt = at
	return next, OutcomeCancelled, nil
}

// RequireSelection rejects a setup that leaves either side without players.
func RequireSelection(setup Setup) error {
	for _, side := range matches.Sides {
		if len(setupSelection(setup, side)) == 0 {
			return selectionError(apperrors.CodeInvalidSelection, side, "", "side %d selection is required", side)
		}
	}
	return nil
}

func setupSelection(s Setup, side matches.Side) []string {
	if side == matches.Side2 {
		return s.Side2PlayerIDs
	}
	return s.Side1PlayerIDs
}

func sameMembers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	return pairKey(a) == pairKey(b)
}

func unsupportedShape(m matches.Match) error {
	return apperrors.Newf(apperrors.CodeInvalidRules, "unsupported match kind %q subType %q", m.Kind, m.SubType)
}

func corruptScore(m matches.Match) error {
	return fmt.Errorf("match %s: score does not match %s shape", m.ID, m.Shape())
}
