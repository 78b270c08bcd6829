// Package postgres persists the dataset to a Postgres JSONB table, one row per
// top-level key, rewritten in one transaction on every save.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"residency/internal/infra/persistence/snapshot"
	"residency/pkg/domain"
)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/residency?sslmode=disable"
)

var sqlOpen = sql.Open

var _ domain.Adapter = (*Store)(nil)

// Store is a Postgres adapter.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens a connection pool for dsn (falls back to a local default),
// pings it and ensures the state table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sqlOpen(defaultDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewStoreWithDB(ctx, db)
}

// NewStoreWithDB wraps an existing handle.
func NewStoreWithDB(ctx context.Context, db *sql.DB) (*Store, error) {
	if err := ensureStateTable(ctx, db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying handle for integration hooks.
func (s *Store) DB() *sql.DB { return s.db }

func ensureStateTable(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure state table: %w", err)
	}
	return nil
}

// Load reads every bucket.
func (s *Store) Load(ctx context.Context) (domain.Dataset, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var buckets []snapshot.Bucket
	for rows.Next() {
		var b snapshot.Bucket
		if err := rows.Scan(&b.Name, &b.Payload); err != nil {
			return domain.Dataset{}, fmt.Errorf("scan state: %w", err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return domain.Dataset{}, fmt.Errorf("iterate state: %w", err)
	}
	return snapshot.Join(buckets)
}

// Save upserts every bucket in one transaction.
func (s *Store) Save(ctx context.Context, ds domain.Dataset) (retErr error) {
	buckets, err := snapshot.Split(ds)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, b := range buckets {
		if _, err := tx.ExecContext(ctx, `INSERT INTO state (bucket, payload) VALUES ($1, $2)
			ON CONFLICT (bucket) DO UPDATE SET payload = EXCLUDED.payload`, b.Name, string(b.Payload)); err != nil {
			return fmt.Errorf("upsert %s: %w", b.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() error {
	return s.db.Close()
}
