// Package players registers competitors and guards their deletion.
package players

import (
	"context"
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

// Store defines the contract for persisting and retrieving players.
type Store interface {
	CreatePlayer(ctx context.Context, p players.Player) error
	GetPlayer(ctx context.Context, id string) (players.Player, error)
	ListPlayers(ctx context.Context) ([]players.Player, error)
	DeletePlayer(ctx context.Context, id string) error
	ListTeams(ctx context.Context) ([]teams.Team, error)
	ListMatches(ctx context.Context, filter matches.Filter) ([]matches.Match, error)
}

// CreateInput is the caller-supplied part of a new player.
type CreateInput struct {
	Name     string           `json:"name"`
	Category players.Category `json:"category"`
	PhotoURL string           `json:"photoUrl,omitempty"`
}

// Service coordinates player operations using a Store.
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

// Create validates and stores a new player.
func (s *Service) Create(ctx context.Context, in CreateInput) (players.Player, error) {
	name := players.NormalizedName(in.Name)
	if name == "" {
		return players.Player{}, apperrors.New(apperrors.CodeInvalidInput, "player name is required")
	}
	if !in.Category.Valid() {
		return players.Player{}, apperrors.Newf(apperrors.CodeInvalidInput, "unknown category %q", in.Category)
	}
	now := s.now().UTC()
	p := players.Player{
		ID:        s.ids.NewID(),
		Name:      name,
		Category:  in.Category,
		PhotoURL:  strings.TrimSpace(in.PhotoURL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreatePlayer(ctx, p); err != nil {
		return players.Player{}, err
	}
	logging.Info(s.logger, "player created", logging.FieldPlayerID, p.ID)
	return p, nil
}

// List returns every player ordered by name.
func (s *Service) List(ctx context.Context) ([]players.Player, error) {
	return s.store.ListPlayers(ctx)
}

// Get returns a single player.
func (s *Service) Get(ctx context.Context, id string) (players.Player, error) {
	return s.store.GetPlayer(ctx, id)
}

// Delete removes a player nobody references. Team rosters and matches both count.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.store.GetPlayer(ctx, id); err != nil {
		return err
	}
	teamList, err := s.store.ListTeams(ctx)
	if err != nil {
		return err
	}
	for _, t := range teamList {
		if t.HasPlayer(id) {
			return referenced(id, "team", t.ID)
		}
	}
	matchList, err := s.store.ListMatches(ctx, matches.Filter{})
	if err != nil {
		return err
	}
	for _, m := range matchList {
		if m.References(id) {
			return referenced(id, "match", m.ID)
		}
	}
	if err := s.store.DeletePlayer(ctx, id); err != nil {
		return err
	}
	logging.Info(s.logger, "player deleted", logging.FieldPlayerID, id)
	return nil
}

func referenced(playerID, by, byID string) error {
	return apperrors.WithMetadata(apperrors.CodeReferenced,
		"player "+playerID+" is referenced by "+by+" "+byID,
		map[string]string{"player_id": playerID, by + "_id": byID})
}
