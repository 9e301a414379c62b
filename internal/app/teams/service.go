// Package teams manages team rosters.
package teams

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/players"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/teams"
	apperrors "github.com/preston-bernstein/tabletennis-scoring-service/internal/errors"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/id"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/logging"
)

// Store defines the contract for persisting and retrieving teams.
type Store interface {
	CreateTeam(ctx context.Context, t teams.Team) error
	GetTeam(ctx context.Context, id string) (teams.Team, error)
	ListTeams(ctx context.Context) ([]teams.Team, error)
	DeleteTeam(ctx context.Context, id string) error
	GetPlayer(ctx context.Context, id string) (players.Player, error)
	ListMatches(ctx context.Context, filter matches.Filter) ([]matches.Match, error)
}

// CreateInput is the caller-supplied part of a new team.
type CreateInput struct {
	Name      string   `json:"name"`
	PlayerIDs []string `json:"playerIds"`
	LogoURL   string   `json:"logoUrl,omitempty"`
}

// Service coordinates team operations using a Store.
type Service struct {
	store  Store
	ids    id.Generator
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a Service with the provided Store.
func NewService(store Store, ids id.Generator, logger *slog.Logger) *Service {
	if ids == nil {
		ids = id.UUID{}
	}
	return &Service{store: store, ids: ids, logger: logger, now: time.Now}
}

// Create validates the roster and stores a new team.
func (s *Service) Create(ctx context.Context, in CreateInput) (teams.Team, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return teams.Team{}, apperrors.New(apperrors.CodeInvalidInput, "team name is required")
	}
	if n := len(in.PlayerIDs); n < teams.MinRosterSize || n > teams.MaxRosterSize {
		return teams.Team{}, apperrors.Newf(apperrors.CodeInvalidInput,
			"roster must have between %d and %d players, got %d", teams.MinRosterSize, teams.MaxRosterSize, n)
	}
	seen := make(map[string]struct{}, len(in.PlayerIDs))
	for _, pid := range in.PlayerIDs {
		if _, dup := seen[pid]; dup {
			return teams.Team{}, apperrors.WithMetadata(apperrors.CodeDuplicateSelection,
				fmt.Sprintf("player %s listed twice", pid), map[string]string{"player_id": pid})
		}
		seen[pid] = struct{}{}
		if err := s.requirePlayer(ctx, pid); err != nil {
			return teams.Team{}, err
		}
	}

	now := s.now().UTC()
	t := teams.Team{
		ID:        s.ids.NewID(),
		Name:      name,
		PlayerIDs: append([]string(nil), in.PlayerIDs...),
		LogoURL:   strings.TrimSpace(in.LogoURL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateTeam(ctx, t); err != nil {
		return teams.Team{}, err
	}
	logging.Info(s.logger, "team created", logging.FieldTeamID, t.ID, "roster_size", len(t.PlayerIDs))
	return t, nil
}

func (s *Service) requirePlayer(ctx context.Context, playerID string) error {
	_, err := s.store.GetPlayer(ctx, playerID)
	if apperrors.CodeOf(err) == apperrors.CodeNotFound {
		return apperrors.WithMetadata(apperrors.CodeInvalidInput,
			fmt.Sprintf("player %s does not exist", playerID), map[string]string{"player_id": playerID})
	}
	return err
}

// List returns every team ordered by name.
func (s *Service) List(ctx context.Context) ([]teams.Team, error) {
	return s.store.ListTeams(ctx)
}

// Get returns a single team.
func (s *Service) Get(ctx context.Context, id string) (teams.Team, error) {
	return s.store.GetTeam(ctx, id)
}

// Delete removes a team no match references.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.store.GetTeam(ctx, id); err != nil {
		return err
	}
	matchList, err := s.store.ListMatches(ctx, matches.Filter{Kind: matches.KindTeam})
	if err != nil {
		return err
	}
	for _, m := range matchList {
		if m.References(id) {
			return apperrors.WithMetadata(apperrors.CodeReferenced,
				fmt.Sprintf("team %s is referenced by match %s", id, m.ID),
				map[string]string{"team_id": id, "match_id": m.ID})
		}
	}
	if err := s.store.DeleteTeam(ctx, id); err != nil {
		return err
	}
	logging.Info(s.logger, "team deleted", logging.FieldTeamID, id)
	return nil
}
