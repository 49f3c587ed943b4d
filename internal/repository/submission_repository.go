package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/portfolio/backend/internal/model"
	"github.com/portfolio/backend/internal/storage"
)

// SubmissionRepository defines the persistence interface for contact submissions.
// It is defined here (in repository) to avoid an import cycle with service.
type SubmissionRepository interface {
	// Append stores sub at the end of the log and returns its index.
	Append(ctx context.Context, sub *model.Submission) (int, error)
	// UpdateStatus sets the terminal status of the entry at index. It reports
	// false without error when index is out of range.
	UpdateStatus(ctx context.Context, index int, status model.SubmissionStatus, errText string) (bool, error)
	// List returns entries newest first, filtered and paginated by opts.
	List(ctx context.Context, opts model.SubmissionListOptions) ([]*model.SubmissionEntry, error)
	Ping(ctx context.Context) error
}

// LogSubmissionRepository implements SubmissionRepository on top of a
// whole-document storage.Log. Every read-modify-write runs under a mutex so
// concurrent requests in this process cannot lose each other's appends.
type LogSubmissionRepository struct {
	mu  sync.Mutex
	log storage.Log
}

// NewLogSubmissionRepository creates a LogSubmissionRepository over log.
func NewLogSubmissionRepository(log storage.Log) *LogSubmissionRepository {
	return &LogSubmissionRepository{log: log}
}

var _ SubmissionRepository = (*LogSubmissionRepository)(nil)

func (r *LogSubmissionRepository) Append(ctx context.Context, sub *model.Submission) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, err := r.log.Load(ctx)
	if err != nil {
		return -1, err
	}
	subs = append(subs, sub)
	if err := r.log.Save(ctx, subs); err != nil {
		return -1, err
	}
	return len(subs) - 1, nil
}

func (r *LogSubmissionRepository) UpdateStatus(ctx context.Context, index int, status model.SubmissionStatus, errText string) (bool, error) {
	if !status.Terminal() {
		return false, fmt.Errorf("update to %q: %w", status, ErrStatusFinal)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	subs, err := r.log.Load(ctx)
	if err != nil {
		return false, err
	}
	if index < 0 || index >= len(subs) {
		return false, nil
	}

	target := subs[index]
	if target.Status.Terminal() {
		return false, fmt.Errorf("entry %d is %s: %w", index, target.Status, ErrStatusFinal)
	}
	target.Status = status
	if status == model.StatusFailed && errText != "" {
		target.Error = errText
	}
	if err := r.log.Save(ctx, subs); err != nil {
		return false, err
	}
	return true, nil
}

func (r *LogSubmissionRepository) List(ctx context.Context, opts model.SubmissionListOptions) ([]*model.SubmissionEntry, error) {
	r.mu.Lock()
	subs, err := r.log.Load(ctx)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	status := strings.TrimSpace(opts.Status)
	entries := make([]*model.SubmissionEntry, 0, len(subs))
	// newest first
	for i := len(subs) - 1; i >= 0; i-- {
		if status != "" && status != "all" && string(subs[i].Status) != status {
			continue
		}
		entries = append(entries, &model.SubmissionEntry{Index: i, Submission: *subs[i]})
	}

	if opts.Offset >= len(entries) {
		return []*model.SubmissionEntry{}, nil
	}
	entries = entries[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(entries) {
		entries = entries[:opts.Limit]
	}
	return entries, nil
}

func (r *LogSubmissionRepository) Ping(ctx context.Context) error {
	return r.log.Ping(ctx)
}
