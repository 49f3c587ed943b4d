package storage

import (
	"context"
	"sync"

	"github.com/portfolio/backend/internal/model"
)

// MemoryLog keeps the submission log in process memory. Entries are copied on
// the way in and out so callers never share pointers with the stored document.
type MemoryLog struct {
	mu   sync.Mutex
	subs []model.Submission

	// LoadErr and SaveErr, when set, are returned by Load and Save.
	LoadErr error
	SaveErr error
}

// NewMemoryLog creates a MemoryLog seeded with subs.
func NewMemoryLog(subs ...model.Submission) *MemoryLog {
	return &MemoryLog{subs: append([]model.Submission(nil), subs...)}
}

var _ Log = (*MemoryLog)(nil)

func (m *MemoryLog) Load(ctx context.Context) ([]*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	out := make([]*model.Submission, len(m.subs))
	for i := range m.subs {
		sub := m.subs[i]
		out[i] = &sub
	}
	return out, nil
}

func (m *MemoryLog) Save(ctx context.Context, subs []*model.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.subs = m.subs[:0:0]
	for _, s := range subs {
		m.subs = append(m.subs, *s)
	}
	return nil
}

func (m *MemoryLog) Ping(ctx context.Context) error { return nil }

// Snapshot returns a copy of the stored submissions.
func (m *MemoryLog) Snapshot() []model.Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Submission(nil), m.subs...)
}
