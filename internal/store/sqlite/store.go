// Package sqlite provides a SQLite-backed store.Store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/players"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/teams"
	apperrors "github.com/preston-bernstein/tabletennis-scoring-service/internal/errors"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/store"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/store/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists players, teams and matches in SQLite. Matches are kept as
// JSON documents next to the columns used for filtering and versioning.
type Store struct {
	sqlDB *sql.DB
}

var _ store.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreatePlayer inserts a player. A taken id or name is ALREADY_EXISTS.
func (s *Store) CreatePlayer(ctx context.Context, p players.Player) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO players (id, name, category, photo_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, string(p.Category), p.PhotoURL, toMillis(p.CreatedAt), toMillis(p.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.AlreadyExists("player", uniqueKey(err, "players.name", p.Name, p.ID))
		}
		return fmt.Errorf("create player: %w", err)
	}
	return nil
}

// GetPlayer returns one player by id.
func (s *Store) GetPlayer(ctx context.Context, id string) (players.Player, error) {
	if err := ctx.Err(); err != nil {
		return players.Player{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, name, category, photo_url, created_at, updated_at
		   FROM players
		  WHERE id = ?`, id)
	p, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return players.Player{}, apperrors.NotFound("player", id)
		}
		return players.Player{}, fmt.Errorf("get player: %w", err)
	}
	return p, nil
}

// ListPlayers returns every player ordered by name.
func (s *Store) ListPlayers(ctx context.Context) ([]players.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, name, category, photo_url, created_at, updated_at
		   FROM players
		  ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	result := make([]players.Player, 0)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}
	return result, nil
}

// DeletePlayer removes a player.
func (s *Store) DeletePlayer(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "players", "player", id)
}

// CreateTeam inserts a team with its ordered roster.
func (s *Store) CreateTeam(ctx context.Context, t teams.Team) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	roster, err := json.Marshal(t.Roster())
	if err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO teams (id, name, player_ids, logo_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, string(roster), t.LogoURL, toMillis(t.CreatedAt), toMillis(t.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.AlreadyExists("team", uniqueKey(err, "teams.name", t.Name, t.ID))
		}
		return fmt.Errorf("create team: %w", err)
	}
	return nil
}

// GetTeam returns one team by id.
func (s *Store) GetTeam(ctx context.Context, id string) (teams.Team, error) {
	if err := ctx.Err(); err != nil {
		return teams.Team{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, name, player_ids, logo_url, created_at, updated_at
		   FROM teams
		  WHERE id = ?`, id)
	t, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return teams.Team{}, apperrors.NotFound("team", id)
		}
		return teams.Team{}, fmt.Errorf("get team: %w", err)
	}
	return t, nil
}

// ListTeams returns every team ordered by name.
func (s *Store) ListTeams(ctx context.Context) ([]teams.Team, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, name, player_ids, logo_url, created_at, updated_at
		   FROM teams
		  ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	result := make([]teams.Team, 0)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate teams: %w", err)
	}
	return result, nil
}

// DeleteTeam removes a team.
func (s *Store) DeleteTeam(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "teams", "team", id)
}

// CreateMatch inserts a match document at its current version.
func (s *Store) CreateMatch(ctx context.Context, m matches.Match) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode match: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO matches (id, kind, status, version, created_at, document)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, string(m.Kind), string(m.Status), m.Version, toMillis(m.CreatedAt), string(doc),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.AlreadyExists("match", m.ID)
		}
		return fmt.Errorf("create match: %w", err)
	}
	return nil
}

// GetMatch returns one match by id.
func (s *Store) GetMatch(ctx context.Context, id string) (matches.Match, error) {
	if err := ctx.Err(); err != nil {
		return matches.Match{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT version, document FROM matches WHERE id = ?`, id)
	m, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return matches.Match{}, apperrors.NotFound("match", id)
		}
		return matches.Match{}, fmt.Errorf("get match: %w", err)
	}
	return m, nil
}

// ListMatches returns matches passing filter, newest first.
func (s *Store) ListMatches(ctx context.Context, filter matches.Filter) ([]matches.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := `SELECT version, document FROM matches WHERE 1 = 1`
	var args []any
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(filter.Kind))
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	result := make([]matches.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	store.SortNewestFirst(result)
	return result, nil
}

// SaveMatch replaces the stored document when its version still equals m.Version.
func (s *Store) SaveMatch(ctx context.Context, m matches.Match) (matches.Match, error) {
	if err := ctx.Err(); err != nil {
		return matches.Match{}, err
	}
	expected := m.Version
	saved := m.Clone()
	saved.Version = expected + 1
	doc, err := json.Marshal(saved)
	if err != nil {
		return matches.Match{}, fmt.Errorf("encode match: %w", err)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return matches.Match{}, fmt.Errorf("begin save match: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE matches
		    SET kind = ?, status = ?, version = ?, document = ?
		  WHERE id = ? AND version = ?`,
		string(saved.Kind), string(saved.Status), saved.Version, string(doc), m.ID, expected,
	)
	if err != nil {
		return matches.Match{}, fmt.Errorf("save match: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return matches.Match{}, fmt.Errorf("save match rows affected: %w", err)
	}
	if affected == 0 {
		var actual int64
		err := tx.QueryRowContext(ctx, `SELECT version FROM matches WHERE id = ?`, m.ID).Scan(&actual)
		if errors.Is(err, sql.ErrNoRows) {
			return matches.Match{}, apperrors.NotFound("match", m.ID)
		}
		if err != nil {
			return matches.Match{}, fmt.Errorf("load match version: %w", err)
		}
		return matches.Match{}, store.VersionConflict(m.ID, expected, actual)
	}
	if err := tx.Commit(); err != nil {
		return matches.Match{}, fmt.Errorf("commit save match: %w", err)
	}
	return saved, nil
}

// DeleteMatch removes a match.
func (s *Store) DeleteMatch(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "matches", "match", id)
}

func (s *Store) deleteByID(ctx context.Context, table, entity, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", entity, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s rows affected: %w", entity, err)
	}
	if affected == 0 {
		return apperrors.NotFound(entity, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (players.Player, error) {
	var (
		p                    players.Player
		category             string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&p.ID, &p.Name, &category, &p.PhotoURL, &createdAt, &updatedAt); err != nil {
		return players.Player{}, err
	}
	p.Category = players.Category(category)
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return p, nil
}

func scanTeam(row rowScanner) (teams.Team, error) {
	var (
		t                    teams.Team
		roster               string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&t.ID, &t.Name, &roster, &t.LogoURL, &createdAt, &updatedAt); err != nil {
		return teams.Team{}, err
	}
	if err := json.Unmarshal([]byte(roster), &t.PlayerIDs); err != nil {
		return teams.Team{}, fmt.Errorf("decode roster: %w", err)
	}
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return t, nil
}

func scanMatch(row rowScanner) (matches.Match, error) {
	var (
		version int64
		doc     string
	)
	if err := row.Scan(&version, &doc); err != nil {
		return matches.Match{}, err
	}
	var m matches.Match
	if err := json.Unmarshal([]byte(doc), &m); err != nil {
		return matches.Match{}, fmt.Errorf("decode match: %w", err)
	}
	m.Version = version
	return m, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// uniqueKey picks which value collided from the constraint message.
func uniqueKey(err error, column, onColumn, otherwise string) string {
	if strings.Contains(err.Error(), column) {
		return onColumn
	}
	return otherwise
}
