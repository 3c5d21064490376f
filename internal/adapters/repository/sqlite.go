package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/arminh/squadledger/internal/domain/model"
)

// SQLiteStore persists ledger state to a SQLite database. Records are stored
// as JSON document columns keyed by their opaque ids, matching the
// document-store contract of the persistence collaborator; league batches
// commit in one transaction.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database at path and runs
// migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so standings reads do not block transfer writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS pools (
			id  TEXT PRIMARY KEY,
			doc TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS leagues (
			id      TEXT PRIMARY KEY,
			pool_id TEXT NOT NULL,
			doc     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_leagues_pool ON leagues(pool_id)`,

		`CREATE TABLE IF NOT EXISTS squads (
			id        TEXT PRIMARY KEY,
			league_id TEXT NOT NULL,
			version   INTEGER NOT NULL,
			doc       TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_squads_league ON squads(league_id)`,

		`CREATE TABLE IF NOT EXISTS snapshots (
			seq       INTEGER PRIMARY KEY AUTOINCREMENT,
			id        TEXT NOT NULL UNIQUE,
			league_id TEXT NOT NULL,
			doc       TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_league ON snapshots(league_id)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// CreatePool stores a new pool, assigning an id when empty.
func (s *SQLiteStore) CreatePool(ctx context.Context, pool model.PlayerPool) (model.PlayerPool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pool.ID == "" {
		pool.ID = uuid.NewString()
	}
	doc, err := json.Marshal(pool)
	if err != nil {
		return model.PlayerPool{}, fmt.Errorf("marshal pool: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO pools (id, doc) VALUES (?, ?)`, pool.ID, string(doc)); err != nil {
		return model.PlayerPool{}, fmt.Errorf("insert pool: %w", err)
	}
	return pool, nil
}

// GetPool returns the pool or ErrNotFound.
func (s *SQLiteStore) GetPool(ctx context.Context, id string) (model.PlayerPool, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM pools WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PlayerPool{}, ErrNotFound
	}
	if err != nil {
		return model.PlayerPool{}, fmt.Errorf("query pool: %w", err)
	}
	var pool model.PlayerPool
	if err := json.Unmarshal([]byte(doc), &pool); err != nil {
		return model.PlayerPool{}, fmt.Errorf("unmarshal pool: %w", err)
	}
	return pool, nil
}

// PutPool overwrites an existing pool.
func (s *SQLiteStore) PutPool(ctx context.Context, pool model.PlayerPool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := json.Marshal(pool)
	if err != nil {
		return fmt.Errorf("marshal pool: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE pools SET doc = ? WHERE id = ?`, string(doc), pool.ID)
	if err != nil {
		return fmt.Errorf("update pool: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateLeague stores a new league, assigning an id when empty.
func (s *SQLiteStore) CreateLeague(ctx context.Context, league model.League) (model.League, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if league.ID == "" {
		league.ID = uuid.NewString()
	}
	doc, err := json.Marshal(league)
	if err != nil {
		return model.League{}, fmt.Errorf("marshal league: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO leagues (id, pool_id, doc) VALUES (?, ?, ?)`,
		league.ID, league.PoolID, string(doc)); err != nil {
		return model.League{}, fmt.Errorf("insert league: %w", err)
	}
	return league, nil
}

// GetLeague returns the league or ErrNotFound.
func (s *SQLiteStore) GetLeague(ctx context.Context, id string) (model.League, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM leagues WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.League{}, ErrNotFound
	}
	if err != nil {
		return model.League{}, fmt.Errorf("query league: %w", err)
	}
	var league model.League
	if err := json.Unmarshal([]byte(doc), &league); err != nil {
		return model.League{}, fmt.Errorf("unmarshal league: %w", err)
	}
	return league, nil
}

// ListLeaguesByPool returns every league referencing the pool.
func (s *SQLiteStore) ListLeaguesByPool(ctx context.Context, poolID string) ([]model.League, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM leagues WHERE pool_id = ?`, poolID)
	if err != nil {
		return nil, fmt.Errorf("query leagues: %w", err)
	}
	defer rows.Close()

	var out []model.League
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan league: %w", err)
		}
		var league model.League
		if err := json.Unmarshal([]byte(doc), &league); err != nil {
			return nil, fmt.Errorf("unmarshal league: %w", err)
		}
		out = append(out, league)
	}
	return out, rows.Err()
}

// CreateSquad stores a new squad, assigning an id when empty.
func (s *SQLiteStore) CreateSquad(ctx context.Context, squad model.Squad) (model.Squad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if squad.ID == "" {
		squad.ID = uuid.NewString()
	}
	if squad.Version == 0 {
		squad.Version = 1
	}
	doc, err := json.Marshal(squad)
	if err != nil {
		return model.Squad{}, fmt.Errorf("marshal squad: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO squads (id, league_id, version, doc) VALUES (?, ?, ?, ?)`,
		squad.ID, squad.LeagueID, squad.Version, string(doc)); err != nil {
		return model.Squad{}, fmt.Errorf("insert squad: %w", err)
	}
	return squad, nil
}

// GetSquad returns the squad or ErrNotFound.
func (s *SQLiteStore) GetSquad(ctx context.Context, id string) (model.Squad, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM squads WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Squad{}, ErrNotFound
	}
	if err != nil {
		return model.Squad{}, fmt.Errorf("query squad: %w", err)
	}
	var squad model.Squad
	if err := json.Unmarshal([]byte(doc), &squad); err != nil {
		return model.Squad{}, fmt.Errorf("unmarshal squad: %w", err)
	}
	return squad, nil
}

// PutSquad writes a squad guarded by the caller's expected version.
func (s *SQLiteStore) PutSquad(ctx context.Context, squad model.Squad, expectedVersion int64) (model.Squad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	squad.Version = expectedVersion + 1
	doc, err := json.Marshal(squad)
	if err != nil {
		return model.Squad{}, fmt.Errorf("marshal squad: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE squads SET version = ?, doc = ? WHERE id = ? AND version = ?`,
		squad.Version, string(doc), squad.ID, expectedVersion)
	if err != nil {
		return model.Squad{}, fmt.Errorf("update squad: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM squads WHERE id = ?`, squad.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return model.Squad{}, ErrNotFound
		}
		return model.Squad{}, ErrConflict
	}
	return squad, nil
}

// ListSquadsByLeague returns every squad belonging to the league.
func (s *SQLiteStore) ListSquadsByLeague(ctx context.Context, leagueID string) ([]model.Squad, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM squads WHERE league_id = ?`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("query squads: %w", err)
	}
	defer rows.Close()

	var out []model.Squad
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan squad: %w", err)
		}
		var squad model.Squad
		if err := json.Unmarshal([]byte(doc), &squad); err != nil {
			return nil, fmt.Errorf("unmarshal squad: %w", err)
		}
		out = append(out, squad)
	}
	return out, rows.Err()
}

// PutSquadBatch writes all squads of one league in a single transaction.
func (s *SQLiteStore) PutSquadBatch(ctx context.Context, leagueID string, squads []model.Squad) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for i := range squads {
		var version int64
		err := tx.QueryRowContext(ctx,
			`SELECT version FROM squads WHERE id = ? AND league_id = ?`,
			squads[i].ID, leagueID).Scan(&version)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("query squad version: %w", err)
		}
		squad := squads[i]
		squad.Version = version + 1
		doc, err := json.Marshal(squad)
		if err != nil {
			return fmt.Errorf("marshal squad: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE squads SET version = ?, doc = ? WHERE id = ?`,
			squad.Version, string(doc), squad.ID); err != nil {
			return fmt.Errorf("update squad: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// AppendSnapshot appends an immutable snapshot to the league's series.
func (s *SQLiteStore) AppendSnapshot(ctx context.Context, snap model.Snapshot) (model.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	doc, err := json.Marshal(snap)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("marshal snapshot: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, league_id, doc) VALUES (?, ?, ?)`,
		snap.ID, snap.LeagueID, string(doc)); err != nil {
		return model.Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}
	return snap, nil
}

// LatestSnapshot returns the most recent snapshot for the league.
func (s *SQLiteStore) LatestSnapshot(ctx context.Context, leagueID string) (model.Snapshot, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM snapshots WHERE league_id = ? ORDER BY seq DESC LIMIT 1`, leagueID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("query snapshot: %w", err)
	}
	var snap model.Snapshot
	if err := json.Unmarshal([]byte(doc), &snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}

// ListSnapshots returns the league's snapshot series, oldest first.
func (s *SQLiteStore) ListSnapshots(ctx context.Context, leagueID string) ([]model.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM snapshots WHERE league_id = ? ORDER BY seq ASC`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []model.Snapshot
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		var snap model.Snapshot
		if err := json.Unmarshal([]byte(doc), &snap); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
