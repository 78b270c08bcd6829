package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"residency/pkg/domain"
)

// Store is the authoritative in-memory record store. Every mutation runs in a
// transaction against a cloned state; the clone is committed through the
// persistence adapter and only swapped in once the save succeeds.
type Store struct {
	mu      sync.RWMutex
	state   state
	engine  *domain.RulesEngine
	adapter domain.Adapter
	nowFn   func() time.Time
	idFn    func() string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the time source used for timestamps and derived ages.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		if fn != nil {
			s.idFn = fn
		}
	}
}

// WithRulesEngine replaces the default rules engine.
func WithRulesEngine(engine *domain.RulesEngine) StoreOption {
	return func(s *Store) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// NewStore constructs an empty store. A nil adapter keeps state in memory only.
func NewStore(adapter domain.Adapter, opts ...StoreOption) *Store {
	s := &Store{
		state:   newState(),
		engine:  NewDefaultRulesEngine(),
		adapter: adapter,
		nowFn:   func() time.Time { return time.Now().UTC() },
		idFn:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store clock reading.
func (s *Store) Now() time.Time {
	return s.nowFn()
}

// RulesEngine exposes the configured engine.
func (s *Store) RulesEngine() *domain.RulesEngine {
	return s.engine
}

// Load replaces the in-memory state with the adapter's dataset. It reports
// false when the adapter holds nothing yet.
func (s *Store) Load(ctx context.Context) (bool, error) {
	if s.adapter == nil {
		return false, nil
	}
	ds, err := s.adapter.Load(ctx)
	if errors.Is(err, domain.ErrNoDataset) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load dataset: %w", err)
	}
	s.ImportState(ds)
	return true, nil
}

// Restore normalizes ds, commits it and makes it the current state. A dataset
// repeating an id within a collection is rejected as a conflict.
func (s *Store) Restore(ctx context.Context, ds domain.Dataset) error {
	if err := duplicateID(ds); err != nil {
		return err
	}
	next := stateFromDataset(normalizeDataset(ds))

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.state = next
	return nil
}

// ExportState clones the current state as a snapshot document.
func (s *Store) ExportState() domain.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.dataset()
}

// ImportState replaces the state without committing. Duplicate ids keep their
// first record.
func (s *Store) ImportState(ds domain.Dataset) {
	next := stateFromDataset(normalizeDataset(ds))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = next
}

// RunInTransaction executes fn against a transactional copy of the state. The
// copy becomes current only when fn succeeds, no blocking rule fires and the
// adapter confirms the save.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx *Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return domain.Result{}, err
	}

	var result domain.Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, View{state: &tx.state, now: tx.now}, tx.changes)
		if err != nil {
			return domain.Result{}, fmt.Errorf("evaluate rules: %w", err)
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	if len(tx.changes) == 0 {
		return result, nil
	}
	if err := s.commit(ctx, tx.state); err != nil {
		return result, err
	}
	s.state = tx.state
	return result, nil
}

func (s *Store) commit(ctx context.Context, next state) error {
	if s.adapter == nil {
		return nil
	}
	if err := s.adapter.Save(ctx, next.dataset()); err != nil {
		return domain.Persistence(err)
	}
	return nil
}

// View executes fn against the current state under the read lock.
func (s *Store) View(_ context.Context, fn func(View) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(View{state: &s.state, now: s.nowFn()})
}
