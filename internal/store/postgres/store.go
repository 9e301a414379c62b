// Package postgres provides a PostgreSQL-backed store.Store on pgxpool.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/players"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/teams"
	apperrors "github.com/preston-bernstein/tabletennis-scoring-service/internal/errors"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/store"
)

const uniqueViolation = "23505"

// Store persists players, teams and matches in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// Open connects to databaseURL and ensures the schema exists.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database url is required")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse db dsn: %w", err)
	}
	cfg.ConnConfig.RuntimeParams["timezone"] = "UTC"
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 15 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// CreatePlayer inserts a player. A taken id or name is ALREADY_EXISTS.
func (s *Store) CreatePlayer(ctx context.Context, p players.Player) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO players (id, name, category, photo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Name, string(p.Category), p.PhotoURL, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if key, ok := uniqueKey(err, "players_name_key", p.Name, p.ID); ok {
			return store.AlreadyExists("player", key)
		}
		return fmt.Errorf("create player: %w", err)
	}
	return nil
}

// GetPlayer returns one player by id.
func (s *Store) GetPlayer(ctx context.Context, id string) (players.Player, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, category, photo_url, created_at, updated_at
		FROM players
		WHERE id = $1`, id)
	p, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return players.Player{}, apperrors.NotFound("player", id)
		}
		return players.Player{}, fmt.Errorf("get player: %w", err)
	}
	return p, nil
}

// ListPlayers returns every player ordered by name.
func (s *Store) ListPlayers(ctx context.Context) ([]players.Player, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, category, photo_url, created_at, updated_at
		FROM players
		ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	items := make([]players.Player, 0)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// DeletePlayer removes a player.
func (s *Store) DeletePlayer(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "players", "player", id)
}

// CreateTeam inserts a team with its ordered roster.
func (s *Store) CreateTeam(ctx context.Context, t teams.Team) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO teams (id, name, player_ids, logo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.Name, t.Roster(), t.LogoURL, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if key, ok := uniqueKey(err, "teams_name_key", t.Name, t.ID); ok {
			return store.AlreadyExists("team", key)
		}
		return fmt.Errorf("create team: %w", err)
	}
	return nil
}

// GetTeam returns one team by id.
func (s *Store) GetTeam(ctx context.Context, id string) (teams.Team, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, player_ids, logo_url, created_at, updated_at
		FROM teams
		WHERE id = $1`, id)
	t, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return teams.Team{}, apperrors.NotFound("team", id)
		}
		return teams.Team{}, fmt.Errorf("get team: %w", err)
	}
	return t, nil
}

// ListTeams returns every team ordered by name.
func (s *Store) ListTeams(ctx context.Context) ([]teams.Team, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, player_ids, logo_url, created_at, updated_at
		FROM teams
		ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	items := make([]teams.Team, 0)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// DeleteTeam removes a team.
func (s *Store) DeleteTeam(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "teams", "team", id)
}

// CreateMatch inserts a match document at its current version.
func (s *Store) CreateMatch(ctx context.Context, m matches.Match) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode match: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO matches (id, kind, status, version, created_at, document)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, string(m.Kind), string(m.Status), m.Version, m.CreatedAt, doc,
	)
	if err != nil {
		if _, ok := uniqueKey(err, "", "", m.ID); ok {
			return store.AlreadyExists("match", m.ID)
		}
		return fmt.Errorf("create match: %w", err)
	}
	return nil
}

// GetMatch returns one match by id.
func (s *Store) GetMatch(ctx context.Context, id string) (matches.Match, error) {
	row := s.pool.QueryRow(ctx, `SELECT version, document FROM matches WHERE id = $1`, id)
	m, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return matches.Match{}, apperrors.NotFound("match", id)
		}
		return matches.Match{}, fmt.Errorf("get match: %w", err)
	}
	return m, nil
}

// ListMatches returns matches passing filter, newest first.
func (s *Store) ListMatches(ctx context.Context, filter matches.Filter) ([]matches.Match, error) {
	query := `SELECT version, document FROM matches WHERE TRUE`
	var args []any
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		query += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	items := make([]matches.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	store.SortNewestFirst(items)
	return items, nil
}

// SaveMatch replaces the stored document when its version still equals m.Version.
func (s *Store) SaveMatch(ctx context.Context, m matches.Match) (matches.Match, error) {
	expected := m.Version
	saved := m.Clone()
	saved.Version = expected + 1
	doc, err := json.Marshal(saved)
	if err != nil {
		return matches.Match{}, fmt.Errorf("encode match: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE matches
		SET kind = $1, status = $2, version = $3, document = $4
		WHERE id = $5 AND version = $6`,
		string(saved.Kind), string(saved.Status), saved.Version, doc, m.ID, expected,
	)
	if err != nil {
		return matches.Match{}, fmt.Errorf("save match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var actual int64
		err := s.pool.QueryRow(ctx, `SELECT version FROM matches WHERE id = $1`, m.ID).Scan(&actual)
		if errors.Is(err, pgx.ErrNoRows) {
			return matches.Match{}, apperrors.NotFound("match", m.ID)
		}
		if err != nil {
			return matches.Match{}, fmt.Errorf("load match version: %w", err)
		}
		return matches.Match{}, store.VersionConflict(m.ID, expected, actual)
	}
	return saved, nil
}

// DeleteMatch removes a match.
func (s *Store) DeleteMatch(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "matches", "match", id)
}

func (s *Store) deleteByID(ctx context.Context, table, entity, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", entity, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound(entity, id)
	}
	return nil
}

func scanPlayer(row pgx.Row) (players.Player, error) {
	var (
		p        players.Player
		category string
	)
	if err := row.Scan(&p.ID, &p.Name, &category, &p.PhotoURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return players.Player{}, err
	}
	p.Category = players.Category(category)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func scanTeam(row pgx.Row) (teams.Team, error) {
	var t teams.Team
	if err := row.Scan(&t.ID, &t.Name, &t.PlayerIDs, &t.LogoURL, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return teams.Team{}, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func scanMatch(row pgx.Row) (matches.Match, error) {
	var (
		version int64
		doc     []byte
	)
	if err := row.Scan(&version, &doc); err != nil {
		return matches.Match{}, err
	}
	var m matches.Match
	if err := json.Unmarshal(doc, &m); err != nil {
		return matches.Match{}, fmt.Errorf("decode match: %w", err)
	}
	m.Version = version
	return m, nil
}

// uniqueKey reports whether err is a unique violation and which value collided.
func uniqueKey(err error, constraint, onConstraint, otherwise string) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return "", false
	}
	if constraint != "" && pgErr.ConstraintName == constraint {
		return onConstraint, true
	}
	return otherwise, true
}
