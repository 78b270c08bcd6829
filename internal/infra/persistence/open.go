// Package persistence selects and opens the configured dataset adapter.
package persistence

import (
	"context"
	"fmt"
	"strings"

	"residency/internal/infra/persistence/file"
	"residency/internal/infra/persistence/memory"
	"residency/internal/infra/persistence/postgres"
	"residency/internal/infra/persistence/s3"
	"residency/internal/infra/persistence/sqlite"
	"residency/pkg/domain"
)

// Driver names a persistence backend.
type Driver string

// Supported drivers.
const (
	DriverMemory   Driver = "memory"
	DriverFile     Driver = "file"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverS3       Driver = "s3"
)

// Config carries the settings every driver may need.
type Config struct {
	Driver      Driver
	FilePath    string
	SQLitePath  string
	PostgresDSN string
	S3          s3.Config
}

// Open constructs the adapter named by cfg.Driver. An empty driver means file.
func Open(ctx context.Context, cfg Config) (domain.Adapter, error) {
	driver := Driver(strings.ToLower(strings.TrimSpace(string(cfg.Driver))))
	if driver == "" {
		driver = DriverFile
	}
	var (
		adapter domain.Adapter
		err     error
	)
	switch driver {
	case DriverMemory:
		adapter = memory.NewStore()
	case DriverFile:
		adapter, err = asAdapter(file.NewStore(cfg.FilePath))
	case DriverSQLite:
		adapter, err = asAdapter(sqlite.NewStore(ctx, cfg.SQLitePath))
	case DriverPostgres:
		adapter, err = asAdapter(postgres.NewStore(ctx, cfg.PostgresDSN))
	case DriverS3:
		adapter, err = asAdapter(s3.New(ctx, cfg.S3))
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", driver, err)
	}
	return adapter, nil
}

// asAdapter keeps a failed constructor's typed nil out of the interface.
func asAdapter[T domain.Adapter](a T, err error) (domain.Adapter, error) {
	if err != nil {
		return nil, err
	}
	return a, nil
}
