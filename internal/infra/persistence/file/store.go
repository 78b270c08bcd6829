// Package file persists the dataset as one indented JSON document on disk.
// Writes go to a temporary sibling that is fsynced and renamed into place.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"residency/internal/infra/persistence/snapshot"
	"residency/pkg/domain"
)

// DefaultPath mirrors the historical data file location.
const DefaultPath = "data/db.json"

var _ domain.Adapter = (*Store)(nil)

// Store is a JSON file adapter.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore prepares the parent directory of path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	return &Store{path: path}, nil
}

// Path returns the document location.
func (s *Store) Path() string { return s.path }

// Load reads and decodes the document. A missing file means no dataset.
func (s *Store) Load(ctx context.Context) (domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return domain.Dataset{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.Dataset{}, domain.ErrNoDataset
	}
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	return snapshot.Unmarshal(data)
}

// Save writes the document atomically.
func (s *Store) Save(ctx context.Context, ds domain.Dataset) (retErr error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := snapshot.Marshal(ds)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// Close implements domain.Adapter.
func (s *Store) Close() error { return nil }
