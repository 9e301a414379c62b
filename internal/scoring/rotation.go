package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	apperrors "github.com/preston-bernstein/tabletennis-scoring-service/internal/errors"
)

// Rosters holds the player ids each team may field, resolved at setup time.
type Rosters struct {
	Side1 []string
	Side2 []string
}

// Of returns the roster for side.
func (r Rosters) Of(side matches.Side) []string {
	if side == matches.Side2 {
		return r.Side2
	}
	return r.Side1
}

// ValidateRotation checks one side's selection for the next team encounter.
// The match must be a team match; the tiebreaker is detected from its status.
func ValidateRotation(m matches.Match, side matches.Side, selected, roster []string) error {
	if !side.Valid() {
		return invalidSide(side)
	}
	format := m.EncounterFormat()
	if arity := format.Arity(); arity == 0 || len(selected) != arity {
		return apperrors.WithMetadata(apperrors.CodeInvalidSelection,
			fmt.Sprintf("side %d must select %d player(s) for a %s encounter", side, format.Arity(), format),
			map[string]string{"side": fmt.Sprint(int(side))})
	}

	seen := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		if _, dup := seen[id]; dup {
			return selectionError(apperrors.CodeDuplicateSelection, side, id, "player %s selected more than once", id)
		}
		seen[id] = struct{}{}
		if !contains(roster, id) {
			return selectionError(apperrors.CodeNotOnRoster, side, id, "player %s is not on the side %d roster", id, side)
		}
	}

	finished := finishedEncounters(m.Score)
	switch m.Shape() {
	case matches.ShapeTeamSet:
		rules := m.TeamSet
		skipCap := rules.TiebreakerIgnoresCap && m.Status == matches.StatusAwaitingTiebreakerSetup
		if !skipCap {
			for _, id := range selected {
				if n := appearances(finished, side, id); n >= rules.MaxEncountersPerPlayer {
					return selectionError(apperrors.CodeRotationCap, side, id,
						"player %s already played %d of %d allowed encounters", id, n, rules.MaxEncountersPerPlayer)
				}
			}
		}
		if format == matches.FormatPair && !rules.AllowPairRepeat {
			key := pairKey(selected)
			for _, e := range finished {
				if pairKey(e.Players(side)) == key {
					return selectionError(apperrors.CodePairRepeated, side, selected[0],
						"pair %s already played encounter %d", strings.Join(selected, "+"), e.Index)
				}
			}
		}
	case matches.ShapeTeamRelay:
		for _, id := range selected {
			if appearances(finished, side, id) > 0 {
				return selectionError(apperrors.CodeRotationCap, side, id, "player %s already played a relay leg", id)
			}
		}
	default:
		return apperrors.Newf(apperrors.CodeInvalidRules, "%s match has no encounter rotation", m.Kind)
	}
	return nil
}

// ValidateSelection validates both sides and rejects a player picked for both.
func ValidateSelection(m matches.Match, side1, side2 []string, rosters Rosters) error {
	if err := ValidateRotation(m, matches.Side1, side1, rosters.Side1); err != nil {
		return err
	}
	if err := ValidateRotation(m, matches.Side2, side2, rosters.Side2); err != nil {
		return err
	}
	for _, id := range side2 {
		if contains(side1, id) {
			return selectionError(apperrors.CodeDuplicateSelection, matches.Side2, id, "player %s selected for both sides", id)
		}
	}
	return nil
}

func finishedEncounters(s matches.Score) []matches.Encounter {
	var out []matches.Encounter
	for _, e := range s.Encounters() {
		if e.Status == matches.EncounterFinished {
			out = append(out, e)
		}
	}
	return out
}

func appearances(encounters []matches.Encounter, side matches.Side, id string) int {
	n := 0
	for _, e := range encounters {
		if contains(e.Players(side), id) {
			n++
		}
	}
	return n
}

func pairKey(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x00")
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func selectionError(code apperrors.Code, side matches.Side, playerID, format string, args ...any) error {
	return apperrors.WithMetadata(code, fmt.Sprintf(format, args...), map[string]string{
		"side":      fmt.Sprint(int(side)),
		"player_id": playerID,
	})
}
