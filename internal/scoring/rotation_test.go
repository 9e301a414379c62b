package scoring

import (
	"testing"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	apperrors "github.com/preston-bernstein/tabletennis-scoring-service/internal/errors"
)

func finishedEncounter(index int, side1, side2 []string, winner matches.Side) matches.Encounter {
	return matches.Encounter{
		Index:        index,
		Side1Players: side1,
		Side2Players: side2,
		Final:        &matches.Points{Side1: 11, Side2: 5},
		Winner:       winner,
		Status:       matches.EncounterFinished,
	}
}

func TestValidateRotationBasics(t *testing.T) {
	m := teamSetMatch(matches.FormatPair, 3, 2)
	roster := testRosters.Side1

	cases := map[string]struct {
		selected []string
		code     apperrors.Code
	}{
		"arity":     {[]string{"a1"}, apperrors.CodeInvalidSelection},
		"duplicate": {[]string{"a1", "a1"}, apperrors.CodeDuplicateSelection},
		"roster":    {[]string{"a1", "b1"}, apperrors.CodeNotOnRoster},
	}
	for name, tc := range cases {
		err := ValidateRotation(m, matches.Side1, tc.selected, roster)
		if apperrors.CodeOf(err) != tc.code {
			t.Fatalf("%s: expected %s, got %v", name, tc.code, err)
		}
		if !apperrors.IsKind(err, apperrors.KindValidation) {
			t.Fatalf("%s: expected validation kind", name)
		}
	}
	if err := ValidateRotation(m, matches.Side1, []string{"a1", "a2"}, roster); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRotationNamesPlayer(t *testing.T) {
	m := teamSetMatch(matches.FormatSingle, 3, 1)
	m.Status = matches.StatusAwaitingEncounterSetup
	m.Score.Sets.Encounters = []matches.Encounter{finishedEncounter(0, []string{"a1"}, []string{"b1"}, matches.Side1)}
	err := ValidateRotation(m, matches.Side1, []string{"a1"}, testRosters.Side1)
	domainErr, ok := apperrors.As(err)
	if !ok || domainErr.Code != apperrors.CodeRotationCap {
		t.Fatalf("expected ROTATION_CAP, got %v", err)
	}
	if domainErr.Metadata["player_id"] != "a1" || domainErr.Metadata["side"] != "1" {
		t.Fatalf("unexpected metadata %+v", domainErr.Metadata)
	}
}

func TestTiebreakerCapToggle(t *testing.T) {
	m := teamSetMatch(matches.FormatSingle, 2, 1)
	m.Status = matches.StatusAwaitingTiebreakerSetup
	m.Score.Sets.Encounters = []matches.Encounter{
		finishedEncounter(0, []string{"a1"}, []string{"b1"}, matches.Side1),
		finishedEncounter(1, []string{"a2"}, []string{"b2"}, matches.Side2),
	}
	if err := ValidateRotation(m, matches.Side1, []string{"a1"}, testRosters.Side1); apperrors.CodeOf(err) != apperrors.CodeRotationCap {
		t.Fatalf("expected cap enforced in tiebreaker by default, got %v", err)
	}
	m.TeamSet.TiebreakerIgnoresCap = true
	if err := ValidateRotation(m, matches.Side1, []string{"a1"}, testRosters.Side1); err != nil {
		t.Fatalf("expected cap waived in tiebreaker, got %v", err)
	}
}

func TestPairRepeatToggle(t *testing.T) {
	m := teamSetMatch(matches.FormatPair, 3, 3)
	m.Status = matches.StatusAwaitingEncounterSetup
	m.Score.Sets.Encounters = []matches.Encounter{
		finishedEncounter(0, []string{"a1", "a2"}, []string{"b1", "b2"}, matches.Side1),
	}
	if err := ValidateRotation(m, matches.Side1, []string{"a2", "a1"}, testRosters.Side1); err != nil {
		t.Fatalf("expected repeat pair allowed, got %v", err)
	}
	m.TeamSet.AllowPairRepeat = false
	if err := ValidateRotation(m, matches.Side1, []string{"a2", "a1"}, testRosters.Side1); apperrors.CodeOf(err) != apperrors.CodePairRepeated {
		t.Fatalf("expected PAIR_REPEATED, got %v", err)
	}
	if err := ValidateRotation(m, matches.Side1, []string{"a1", "a3"}, testRosters.Side1); err != nil {
		t.Fatalf("expected new pair allowed, got %v", err)
	}
}

func TestValidateSelectionCrossSide(t *testing.T) {
	m := teamSetMatch(matches.FormatSingle, 3, 2)
	shared := Rosters{Side1: []string{"x", "y"}, Side2: []string{"x", "z"}}
	err := ValidateSelection(m, []string{"x"}, []string{"x"}, shared)
	if apperrors.CodeOf(err) != apperrors.CodeDuplicateSelection {
		t.Fatalf("expected DUPLICATE_SELECTION across sides, got %v", err)
	}
	if err := ValidateSelection(m, []string{"y"}, []string{"z"}, shared); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRotationRejectsBestOf(t *testing.T) {
	if err := ValidateRotation(individualMatch(1), matches.Side1, []string{"p1"}, []string{"p1"}); err == nil {
		t.Fatalf("expected individual match to be rejected")
	}
}
