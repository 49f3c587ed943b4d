package storage

import (
	"context"

	"github.com/portfolio/backend/internal/model"
)

// Log abstracts whole-document persistence of the submission log.
// Implementations read and rewrite the entire sequence on every call;
// callers that need read-modify-write atomicity must serialise access themselves.
type Log interface {
	// Load returns every stored submission in insertion order. The first call
	// against absent storage creates an empty document and returns no entries.
	// Unreadable or malformed storage is an error.
	Load(ctx context.Context) ([]*model.Submission, error)

	// Save overwrites the stored document with subs.
	Save(ctx context.Context, subs []*model.Submission) error

	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error
}
