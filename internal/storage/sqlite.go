package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/portfolio/backend/internal/model"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS contact_log (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	document   TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// SQLiteLog stores the submission log document in a single row of an embedded
// SQLite database.
type SQLiteLog struct {
	db *sql.DB
}

// OpenSQLiteLog opens (or creates) the database at path and ensures the schema exists.
func OpenSQLiteLog(ctx context.Context, path string) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	// One writer at a time; SQLite serialises writes anyway.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: sqlite schema: %w", err)
	}
	return &SQLiteLog{db: db}, nil
}

var _ Log = (*SQLiteLog)(nil)

func (s *SQLiteLog) Load(ctx context.Context) ([]*model.Submission, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM contact_log WHERE id = 1`).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO contact_log (id, document) VALUES (1, ?) ON CONFLICT (id) DO NOTHING`,
			string(emptyDocument)); err != nil {
			return nil, fmt.Errorf("storage: sqlite init: %w", err)
		}
		return []*model.Submission{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: sqlite read: %w", err)
	}
	return DecodeDocument([]byte(doc))
}

func (s *SQLiteLog) Save(ctx context.Context, subs []*model.Submission) error {
	data, err := EncodeDocument(subs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO contact_log (id, document, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		string(data))
	if err != nil {
		return fmt.Errorf("storage: sqlite write: %w", err)
	}
	return nil
}

func (s *SQLiteLog) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle.
func (s *SQLiteLog) Close() error {
	return s.db.Close()
}
