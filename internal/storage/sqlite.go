// Package storage persists reputation scores in SQLite.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lox/pokerescrow/internal/reputation"
)

//go:embed schema.sql
var embeddedSchema embed.FS

// Store is a reputation.Store backed by a SQLite database.
type Store struct {
	db *sql.DB
}

var _ reputation.Store = (*Store)(nil)

// New wraps an open database. Call InitSchema before use.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens (creating if needed) the database at path and initialises the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	s := New(db)
	if err := s.InitSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// InitSchema creates the tables if they do not exist.
func (s *Store) InitSchema() error {
	b, err := embeddedSchema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = s.db.Exec(strings.TrimSpace(string(b)))
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns actor's score; actors without a row score zero.
func (s *Store) Get(ctx context.Context, actor string) (int64, error) {
	var score int64
	err := s.db.QueryRowContext(ctx, `SELECT score FROM reputation WHERE actor = ?`, actor).Scan(&score)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return score, nil
}

// Apply adds every delta in one transaction.
func (s *Store) Apply(ctx context.Context, deltas []reputation.Delta) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reputation(actor, score) VALUES (?, ?)
		ON CONFLICT(actor) DO UPDATE SET
			score = score + excluded.score,
			updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range deltas {
		if d.Change == 0 {
			continue
		}
		if _, err = stmt.ExecContext(ctx, d.Actor, d.Change); err != nil {
			return fmt.Errorf("apply %s: %w", d.Actor, err)
		}
	}
	return tx.Commit()
}

// List returns every scored actor, highest first.
func (s *Store) List(ctx context.Context) ([]reputation.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT actor, score FROM reputation ORDER BY score DESC, actor`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []reputation.Entry
	for rows.Next() {
		var e reputation.Entry
		if err := rows.Scan(&e.Actor, &e.Score); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
