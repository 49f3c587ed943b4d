package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/portfolio/backend/internal/model"
)

// FileLog stores the submission log as a single JSON file on the local filesystem.
type FileLog struct {
	path string // e.g. "./data/messages.json"
}

// NewFileLog creates a FileLog backed by the file at path.
func NewFileLog(path string) *FileLog {
	return &FileLog{path: path}
}

var _ Log = (*FileLog)(nil)

func (s *FileLog) Load(ctx context.Context) ([]*model.Submission, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.write(emptyDocument); err != nil {
			return nil, err
		}
		return []*model.Submission{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read: %w", err)
	}
	return DecodeDocument(data)
}

func (s *FileLog) Save(ctx context.Context, subs []*model.Submission) error {
	data, err := EncodeDocument(subs)
	if err != nil {
		return err
	}
	return s.write(data)
}

// Ping checks that the document's directory exists or can be created.
func (s *FileLog) Ping(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}
	return nil
}

// write replaces the document atomically via a temp file in the same directory.
func (s *FileLog) write(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	f, err := os.CreateTemp(dir, ".messages-*.json")
	if err != nil {
		return fmt.Errorf("storage: create: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("storage: write: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("storage: close: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	return nil
}
