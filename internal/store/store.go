// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists saved mind maps in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/mindgraph/pkg/types"
)

const dbFile = "mindgraph.db"

// ErrNotFound is returned when no mind map has the requested id.
var ErrNotFound = errors.New("mind map not found")

// Store manages the mind map SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens or creates the database at cfg.DataDir/mindgraph.db and
// creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS mind_maps (
			id TEXT PRIMARY KEY,
			user_input TEXT NOT NULL DEFAULT '',
			mind_map TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_mind_maps_created_at ON mind_maps(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (types.MindMapRecord, error) {
	var (
		rec                  types.MindMapRecord
		mmJSON               string
		createdAt, updatedAt string
	)
	if err := row.Scan(&rec.ID, &rec.UserInput, &mmJSON, &createdAt, &updatedAt); err != nil {
		return types.MindMapRecord{}, err
	}
	if err := json.Unmarshal([]byte(mmJSON), &rec.MindMap); err != nil {
		return types.MindMapRecord{}, fmt.Errorf("decoding mind map %s: %w", rec.ID, err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return rec, nil
}

// All returns every saved mind map, oldest first.
func (s *Store) All(ctx context.Context) ([]types.MindMapRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_input, mind_map, created_at, updated_at
		 FROM mind_maps ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying mind maps: %w", err)
	}
	defer rows.Close()

	records := []types.MindMapRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns the mind map with the given id or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (types.MindMapRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_input, mind_map, created_at, updated_at
		 FROM mind_maps WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.MindMapRecord{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.MindMapRecord{}, fmt.Errorf("reading mind map %s: %w", id, err)
	}
	return rec, nil
}

// Save stores a new mind map under a fresh id and returns the record.
func (s *Store) Save(ctx context.Context, mm types.MindMap, userInput string) (types.MindMapRecord, error) {
	if err := mm.Validate(); err != nil {
		return types.MindMapRecord{}, err
	}
	now := s.now()
	rec := types.MindMapRecord{
		ID:        uuid.NewString(),
		MindMap:   mm,
		UserInput: userInput,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.MindMapRecord{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsert(ctx, tx, rec); err != nil {
		return types.MindMapRecord{}, err
	}
	if err := tx.Commit(); err != nil {
		return types.MindMapRecord{}, fmt.Errorf("committing mind map: %w", err)
	}
	return rec, nil
}

// Update replaces the mind map stored under id and bumps its update time.
func (s *Store) Update(ctx context.Context, id string, mm types.MindMap) (types.MindMapRecord, error) {
	if err := mm.Validate(); err != nil {
		return types.MindMapRecord{}, err
	}
	mmJSON, err := json.Marshal(mm)
	if err != nil {
		return types.MindMapRecord{}, fmt.Errorf("encoding mind map: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE mind_maps SET mind_map = ?, updated_at = ? WHERE id = ?`,
		string(mmJSON), s.now().Format(time.RFC3339Nano), id)
	if err != nil {
		return types.MindMapRecord{}, fmt.Errorf("updating mind map %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.MindMapRecord{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return s.Get(ctx, id)
}

// Delete removes the mind map stored under id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM mind_maps WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting mind map %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, db execer, rec types.MindMapRecord) error {
	mmJSON, err := json.Marshal(rec.MindMap)
	if err != nil {
		return fmt.Errorf("encoding mind map: %w", err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO mind_maps (id, user_input, mind_map, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			user_input=excluded.user_input, mind_map=excluded.mind_map,
			created_at=excluded.created_at, updated_at=excluded.updated_at`,
		rec.ID, rec.UserInput, string(mmJSON),
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting mind map %s: %w", rec.ID, err)
	}
	return nil
}
