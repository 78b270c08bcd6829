package core

import (
	"context"
	"encoding/json"
	"time"

	"residency/pkg/domain"
)

// Service exposes the record store's operations with tracing, metrics,
// logging and activity auditing around each call.
type Service struct {
	store   *Store
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRecorder sets the operation metrics sink.
func WithMetricsRecorder(m MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer sets the span factory.
func WithTracer(t Tracer) ServiceOption {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store *Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		logger:  noopLogger{},
		metrics: noopMetrics{},
		tracer:  noopTracer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service over a store without durable storage.
func NewInMemoryService(opts ...StoreOption) *Service {
	return NewService(NewStore(nil, opts...))
}

// Store returns the underlying store.
func (s *Service) Store() *Store {
	return s.store
}

type actorKey struct{}

// WithActor marks ctx with the acting user id. Mutations issued with an
// actor append an activity log entry in the same transaction.
func WithActor(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFrom returns the acting user id carried by ctx.
func ActorFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(actorKey{}).(string)
	return id, ok && id != ""
}

// auditRecord describes the activity entry a mutation leaves behind. An empty
// action skips auditing.
type auditRecord struct {
	action  string
	entity  domain.EntityType
	id      string
	details map[string]any
}

func (a auditRecord) entry(userID string) ActivityEntry {
	e := ActivityEntry{UserID: userID, Action: a.action, EntityID: domain.NonEmpty(a.id)}
	if a.entity != "" {
		e.EntityType = domain.Ptr(string(a.entity))
	}
	if len(a.details) > 0 {
		if raw, err := json.Marshal(a.details); err == nil {
			e.Details = domain.Ptr(string(raw))
		}
	}
	return e
}

func (s *Service) instrument(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, op)
	start := time.Now()
	err := fn(ctx)
	s.metrics.Observe(ctx, op, err == nil, time.Since(start))
	span.End(err)

	switch kind := domain.KindOf(err); kind {
	case "":
		s.logger.Debug("store operation", "operation", op, "duration", time.Since(start))
	case domain.KindPersistence, domain.KindInternal:
		s.logger.Error("store operation failed", "operation", op, "kind", kind, "error", err)
	default:
		s.logger.Warn("store operation rejected", "operation", op, "kind", kind, "error", err)
	}
	return err
}

func (s *Service) write(ctx context.Context, op string, fn func(tx *Transaction) (auditRecord, error)) (domain.Result, error) {
	var res domain.Result
	err := s.instrument(ctx, op, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx *Transaction) error {
			rec, err := fn(tx)
			if err != nil {
				return err
			}
			actor, ok := ActorFrom(ctx)
			if !ok || rec.action == "" {
				return nil
			}
			_, err = tx.AppendActivity(rec.entry(actor))
			return err
		})
		return err
	})
	return res, err
}

func (s *Service) read(ctx context.Context, op string, fn func(View) error) error {
	return s.instrument(ctx, op, func(ctx context.Context) error {
		return s.store.View(ctx, fn)
	})
}
