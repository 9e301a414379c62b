package matches

import (
	"context"
	"fmt"

	domain "github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/players"
	apperrors "github.com/preston-bernstein/tabletennis-scoring-service/internal/errors"
)

// CreateInput describes a new match. Individual/Dual matches take setsToWin
// or bestOf; team matches take the rules for their subType. Unset team
// options fall back to the service defaults.
type CreateInput struct {
	Kind     domain.Kind      `json:"kind"`
	SubType  domain.SubType   `json:"subType,omitempty"`
	Category players.Category `json:"category,omitempty"`

	Side1PlayerIDs []string `json:"side1PlayerIds,omitempty"`
	Side2PlayerIDs []string `json:"side2PlayerIds,omitempty"`
	Team1ID        string   `json:"team1Id,omitempty"`
	Team2ID        string   `json:"team2Id,omitempty"`

	SetsToWin int `json:"setsToWin,omitempty"`
	BestOf    int `json:"bestOf,omitempty"`

	EncounterFormat        domain.EncounterFormat `json:"encounterFormat,omitempty"`
	NumberOfEncounters     int                    `json:"numberOfEncounters,omitempty"`
	MaxEncountersPerPlayer int                    `json:"maxEncountersPerPlayer,omitempty"`
	AllowPairRepeat        *bool                  `json:"allowPairRepeat,omitempty"`
	TiebreakerIgnoresCap   *bool                  `json:"tiebreakerIgnoresCap,omitempty"`

	NumberOfLegs int `json:"numberOfLegs,omitempty"`
	PointsPerLeg int `json:"pointsPerLeg,omitempty"`
}

// Defaults are the configured fallbacks for team match options.
type Defaults struct {
	MaxEncountersPerPlayer int
	AllowPairRepeat        bool
	TiebreakerIgnoresCap   bool
}

func (in CreateInput) build(d Defaults) (domain.Match, error) {
	m := domain.Match{
		Kind:     in.Kind,
		SubType:  in.SubType,
		Category: in.Category,
		Participants: domain.Participants{
			Side1: in.Side1PlayerIDs,
			Side2: in.Side2PlayerIDs,
			Team1: in.Team1ID,
			Team2: in.Team2ID,
		},
		Status: domain.StatusUpcoming,
	}

	switch {
	case in.Kind == domain.KindIndividual || in.Kind == domain.KindDual:
		setsToWin, err := resolveSetsToWin(in.SetsToWin, in.BestOf)
		if err != nil {
			return domain.Match{}, err
		}
		m.BestOf = &domain.BestOfRules{SetsToWin: setsToWin}
	case in.Kind == domain.KindTeam && in.SubType == domain.SubTypeSet:
		maxPer := in.MaxEncountersPerPlayer
		if maxPer == 0 {
			maxPer = d.MaxEncountersPerPlayer
		}
		m.TeamSet = &domain.TeamSetRules{
			EncounterFormat:        in.EncounterFormat,
			NumberOfEncounters:     in.NumberOfEncounters,
			MaxEncountersPerPlayer: maxPer,
			AllowPairRepeat:        boolOr(in.AllowPairRepeat, d.AllowPairRepeat),
			TiebreakerIgnoresCap:   boolOr(in.TiebreakerIgnoresCap, d.TiebreakerIgnoresCap),
		}
	case in.Kind == domain.KindTeam && in.SubType == domain.SubTypeRelay:
		m.TeamRelay = &domain.TeamRelayRules{
			EncounterFormat: in.EncounterFormat,
			NumberOfLegs:    in.NumberOfLegs,
			PointsPerLeg:    in.PointsPerLeg,
		}
	}

	if err := m.Validate(); err != nil {
		return domain.Match{}, err
	}
	m.Score = domain.NewScore(m.Shape())
	return m, nil
}

func resolveSetsToWin(setsToWin, bestOf int) (int, error) {
	if bestOf != 0 {
		fromBestOf, ok := domain.SetsToWinFromBestOf(bestOf)
		if !ok {
			return 0, apperrors.Newf(apperrors.CodeInvalidRules, "bestOf must be 1, 3 or 5, got %d", bestOf)
		}
		if setsToWin != 0 && setsToWin != fromBestOf {
			return 0, apperrors.Newf(apperrors.CodeInvalidRules, "bestOf %d disagrees with setsToWin %d", bestOf, setsToWin)
		}
		return fromBestOf, nil
	}
	if !domain.ValidSetsToWin(setsToWin) {
		return 0, apperrors.Newf(apperrors.CodeInvalidRules,
			"setsToWin must be between %d and %d, got %d", domain.MinSetsToWin, domain.MaxSetsToWin, setsToWin)
	}
	return setsToWin, nil
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

// checkReferences confirms every player or team the match names exists.
func (s *Service) checkReferences(ctx context.Context, m domain.Match) error {
	for _, pid := range m.PlayerIDs() {
		if _, err := s.repo.GetPlayer(ctx, pid); err != nil {
			return missingReference(err, "player", pid)
		}
	}
	for _, tid := range m.TeamIDs() {
		if _, err := s.repo.GetTeam(ctx, tid); err != nil {
			return missingReference(err, "team", tid)
		}
	}
	return nil
}

func missingReference(err error, entity, id string) error {
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		return err
	}
	return apperrors.WithMetadata(apperrors.CodeInvalidInput,
		fmt.Sprintf("%s %s does not exist", entity, id),
		map[string]string{entity + "_id": id})
}
