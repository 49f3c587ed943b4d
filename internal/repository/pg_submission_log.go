package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/portfolio/backend/internal/model"
	"github.com/portfolio/backend/internal/storage"
)

// PgSubmissionLog is the PostgreSQL implementation of storage.Log. The whole
// document lives in the single contact_log row created by migration 001.
type PgSubmissionLog struct {
	pool *pgxpool.Pool
}

// NewPgSubmissionLog creates a PgSubmissionLog backed by the given pool.
func NewPgSubmissionLog(pool *pgxpool.Pool) *PgSubmissionLog {
	return &PgSubmissionLog{pool: pool}
}

// Ensure PgSubmissionLog implements storage.Log at compile time.
var _ storage.Log = (*PgSubmissionLog)(nil)

// Load reads the document row, inserting an empty one when the row is absent.
func (r *PgSubmissionLog) Load(ctx context.Context) ([]*model.Submission, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx, `SELECT document FROM contact_log WHERE id = 1`).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		empty, err := storage.EncodeDocument(nil)
		if err != nil {
			return nil, err
		}
		if _, err := r.pool.Exec(ctx,
			`INSERT INTO contact_log (id, document) VALUES (1, $1) ON CONFLICT (id) DO NOTHING`,
			empty); err != nil {
			return nil, fmt.Errorf("storage: postgres init: %w", err)
		}
		return []*model.Submission{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: postgres read: %w", err)
	}
	return storage.DecodeDocument(doc)
}

// Save upserts the document row.
func (r *PgSubmissionLog) Save(ctx context.Context, subs []*model.Submission) error {
	doc, err := storage.EncodeDocument(subs)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO contact_log (id, document, updated_at) VALUES (1, $1, NOW())
		 ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`,
		doc)
	if err != nil {
		return fmt.Errorf("storage: postgres write: %w", err)
	}
	return nil
}

func (r *PgSubmissionLog) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
