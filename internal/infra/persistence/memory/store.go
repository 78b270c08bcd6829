// Package memory provides an in-process persistence adapter for tests and
// ephemeral environments. Saved datasets are deep-copied.
package memory

import (
	"context"
	"sync"

	"residency/pkg/domain"
)

var _ domain.Adapter = (*Store)(nil)

// Store keeps the last saved dataset in memory.
type Store struct {
	mu      sync.Mutex
	dataset *domain.Dataset
	saveErr error
	saves   int
}

// NewStore returns an empty adapter.
func NewStore() *Store {
	return &Store{}
}

// NewStoreWith returns an adapter preloaded with ds.
func NewStoreWith(ds domain.Dataset) *Store {
	cp := ds.Clone()
	return &Store{dataset: &cp}
}

// Load returns a copy of the last saved dataset.
func (s *Store) Load(ctx context.Context) (domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return domain.Dataset{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dataset == nil {
		return domain.Dataset{}, domain.ErrNoDataset
	}
	return s.dataset.Clone(), nil
}

// Save replaces the held dataset unless a failure has been injected.
func (s *Store) Save(ctx context.Context, ds domain.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	cp := ds.Clone()
	s.dataset = &cp
	s.saves++
	return nil
}

// FailSaves makes every subsequent Save return err. A nil err clears it.
func (s *Store) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// Saves reports how many saves succeeded.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Close implements domain.Adapter.
func (s *Store) Close() error { return nil }
