package matches

import (
	apperrors "github.com/preston-bernstein/tabletennis-scoring-service/internal/errors"
)

// Allowed match lengths.
const (
	MinSetsToWin = 1
	MaxSetsToWin = 3
)

// ValidSetsToWin reports whether n is an accepted Individual/Dual match length.
func ValidSetsToWin(n int) bool {
	return n >= MinSetsToWin && n <= MaxSetsToWin
}

// SetsToWinFromBestOf converts a best-of count (1, 3 or 5) to sets needed to win.
func SetsToWinFromBestOf(bestOf int) (int, bool) {
	switch bestOf {
	case 1:
		return 1, true
	case 3:
		return 2, true
	case 5:
		return 3, true
	default:
		return 0, false
	}
}

// Validate checks that the participants and rules agree with the match shape.
func (m Match) Validate() error {
	shape := m.Shape()
	switch shape {
	case ShapeIndividual:
		return m.validateBestOf(1)
	case ShapeDual:
		return m.validateBestOf(2)
	case ShapeTeamSet:
		if err := m.validateTeams(); err != nil {
			return err
		}
		if m.TeamSet == nil || m.BestOf != nil || m.TeamRelay != nil {
			return apperrors.New(apperrors.CodeInvalidRules, "team set match requires teamSet rules only")
		}
		r := m.TeamSet
		if r.EncounterFormat.Arity() == 0 {
			return apperrors.Newf(apperrors.CodeInvalidRules, "unknown encounter format %q", r.EncounterFormat)
		}
		if r.NumberOfEncounters < 1 {
			return apperrors.New(apperrors.CodeInvalidRules, "numberOfEncounters must be at least 1")
		}
		if r.MaxEncountersPerPlayer < 1 {
			return apperrors.New(apperrors.CodeInvalidRules, "maxEncountersPerPlayer must be at least 1")
		}
		return nil
	case ShapeTeamRelay:
		if err := m.validateTeams(); err != nil {
			return err
		}
		if m.TeamRelay == nil || m.BestOf != nil || m.TeamSet != nil {
			return apperrors.New(apperrors.CodeInvalidRules, "team relay match requires teamRelay rules only")
		}
		r := m.TeamRelay
		if r.EncounterFormat.Arity() == 0 {
			return apperrors.Newf(apperrors.CodeInvalidRules, "unknown encounter format %q", r.EncounterFormat)
		}
		if r.NumberOfLegs < 1 {
			return apperrors.New(apperrors.CodeInvalidRules, "numberOfLegs must be at least 1")
		}
		if r.PointsPerLeg < 1 {
			return apperrors.New(apperrors.CodeInvalidRules, "pointsPerLeg must be at least 1")
		}
		return nil
	default:
		return apperrors.Newf(apperrors.CodeInvalidRules, "unsupported match kind %q subType %q", m.Kind, m.SubType)
	}
}

func (m Match) validateBestOf(perSide int) error {
	if m.BestOf == nil || m.TeamSet != nil || m.TeamRelay != nil {
		return apperrors.Newf(apperrors.CodeInvalidRules, "%s match requires bestOf rules only", m.Kind)
	}
	if !ValidSetsToWin(m.BestOf.SetsToWin) {
		return apperrors.Newf(apperrors.CodeInvalidRules, "setsToWin must be between %d and %d", MinSetsToWin, MaxSetsToWin)
	}
	if m.Category != "" && !m.Category.Valid() {
		return apperrors.Newf(apperrors.CodeInvalidInput, "unknown category %q", m.Category)
	}
	if m.Participants.Team1 != "" || m.Participants.Team2 != "" {
		return apperrors.Newf(apperrors.CodeInvalidInput, "%s match takes players, not teams", m.Kind)
	}
	if len(m.Participants.Side1) != perSide || len(m.Participants.Side2) != perSide {
		return apperrors.Newf(apperrors.CodeInvalidInput, "%s match needs %d player(s) per side", m.Kind, perSide)
	}
	seen := make(map[string]struct{}, 2*perSide)
	for _, id := range m.PlayerIDs() {
		if id == "" {
			return apperrors.New(apperrors.CodeInvalidInput, "player id is required")
		}
		if _, dup := seen[id]; dup {
			return apperrors.WithMetadata(apperrors.CodeDuplicateSelection, "player "+id+" appears more than once", map[string]string{"player_id": id})
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (m Match) validateTeams() error {
	p := m.Participants
	if len(p.Side1) > 0 || len(p.Side2) > 0 {
		return apperrors.New(apperrors.CodeInvalidInput, "team match takes teams, not players")
	}
	if p.Team1 == "" || p.Team2 == "" {
		return apperrors.New(apperrors.CodeInvalidInput, "team1 and team2 are required")
	}
	if p.Team1 == p.Team2 {
		return apperrors.New(apperrors.CodeInvalidInput, "a team cannot play itself")
	}
	return nil
}
