package scoring

import (
	"testing"
	"time"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func tick(n int) time.Time {
	return t0.Add(time.Duration(n) * time.Second)
}

func individualMatch(setsToWin int) matches.Match {
	return matches.Match{
		ID:           "ind",
		Kind:         matches.KindIndividual,
		Participants: matches.Participants{Side1: []string{"p1"}, Side2: []string{"p2"}},
		BestOf:       &matches.BestOfRules{SetsToWin: setsToWin},
		Status:       matches.StatusUpcoming,
		Score:        matches.NewScore(matches.ShapeIndividual),
	}
}

func dualMatch(setsToWin int) matches.Match {
	return matches.Match{
		ID:           "dual",
		Kind:         matches.KindDual,
		Participants: matches.Participants{Side1: []string{"p1", "p2"}, Side2: []string{"p3", "p4"}},
		BestOf:       &matches.BestOfRules{SetsToWin: setsToWin},
		Status:       matches.StatusUpcoming,
		Score:        matches.NewScore(matches.ShapeDual),
	}
}

func teamSetMatch(format matches.EncounterFormat, encounters, maxPerPlayer int) matches.Match {
	return matches.Match{
		ID:           "set",
		Kind:         matches.KindTeam,
		SubType:      matches.SubTypeSet,
		Participants: matches.Participants{Team1: "t1", Team2: "t2"},
		TeamSet: &matches.TeamSetRules{
			EncounterFormat:        format,
			NumberOfEncounters:     encounters,
			MaxEncountersPerPlayer: maxPerPlayer,
			AllowPairRepeat:        true,
		},
		Status: matches.StatusUpcoming,
		Score:  matches.NewScore(matches.ShapeTeamSet),
	}
}

func relayMatch(format matches.EncounterFormat, legs, pointsPerLeg int) matches.Match {
	return matches.Match{
		ID:           "relay",
		Kind:         matches.KindTeam,
		SubType:      matches.SubTypeRelay,
		Participants: matches.Participants{Team1: "t1", Team2: "t2"},
		TeamRelay:    &matches.TeamRelayRules{EncounterFormat: format, NumberOfLegs: legs, PointsPerLeg: pointsPerLeg},
		Status:       matches.StatusUpcoming,
		Score:        matches.NewScore(matches.ShapeTeamRelay),
	}
}

var testRosters = Rosters{
	Side1: []string{"a1", "a2", "a3", "a4", "a5"},
	Side2: []string{"b1", "b2", "b3", "b4", "b5"},
}

func mustSetup(t *testing.T, m matches.Match, index int, side1, side2 []string) matches.Match {
	t.Helper()
	next, outcome, err := SetupEncounter(m, Setup{
		Index:          index,
		Side1PlayerIDs: side1,
		Side2PlayerIDs: side2,
		InitialServer:  matches.Side1,
	}, testRosters, tick(0))
	if err != nil {
		t.Fatalf("setup encounter %d: %v", index, err)
	}
	if outcome != OutcomeEncounterStarted {
		t.Fatalf("expected encounter_started, got %s", outcome)
	}
	return next
}

func mustScore(t *testing.T, m matches.Match, side matches.Side, n int) (matches.Match, Outcome) {
	t.Helper()
	var outcome Outcome
	for i := 0; i < n; i++ {
		var err error
		m, outcome, err = ScorePoint(m, side, tick(i+1))
		if err != nil {
			t.Fatalf("score point %d for side %d: %v", i+1, side, err)
		}
	}
	return m, outcome
}

// playGame scores a full game from 0-0 ending at winnerPts-loserPts, loser's points first.
func playGame(t *testing.T, m matches.Match, winner matches.Side, winnerPts, loserPts int) (matches.Match, Outcome) {
	t.Helper()
	m, _ = mustScore(t, m, winner.Opponent(), loserPts)
	return mustScore(t, m, winner, winnerPts)
}
