// Package config reads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"residency/internal/infra/persistence"
	"residency/internal/infra/persistence/s3"
)

const envPrefix = "RESIDENCY_"

// Defaults used when a variable is unset.
const (
	DefaultAddr       = ":3000"
	DefaultJWTSecret  = "khu_pho_25_long_truong_secret"
	DefaultJWTTTL     = 7 * 24 * time.Hour
	DefaultLoginRate  = 5
	DefaultLoginBurst = 10
)

// Server captures everything cmd/residentd needs to start.
type Server struct {
	Addr        string
	Driver      persistence.Driver
	FilePath    string
	SQLitePath  string
	PostgresDSN string
	S3          s3.Config

	JWTSecret string
	JWTTTL    time.Duration

	SeedOnEmpty bool

	LogLevel  slog.Level
	LogFormat string

	// LoginRate is the sustained login attempts per minute per client.
	LoginRate  int
	LoginBurst int
	// TrustProxy keys the login limiter on forwarding headers.
	TrustProxy bool
}

// Load reads .env when present and then the process environment.
func Load() (Server, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not load .env file", "error", err)
	}
	return FromEnv()
}

// FromEnv builds a Server config from RESIDENCY_* variables.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:        str("ADDR", DefaultAddr),
		Driver:      persistence.Driver(strings.ToLower(str("STORAGE_DRIVER", string(persistence.DriverFile)))),
		FilePath:    str("FILE_PATH", ""),
		SQLitePath:  str("SQLITE_PATH", ""),
		PostgresDSN: str("POSTGRES_DSN", ""),
		S3: s3.Config{
			Region:          str("S3_REGION", ""),
			Bucket:          str("S3_BUCKET", ""),
			Key:             str("S3_KEY", ""),
			Endpoint:        str("S3_ENDPOINT", ""),
			AccessKeyID:     str("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: str("S3_SECRET_ACCESS_KEY", ""),
		},
		JWTSecret: str("JWT_SECRET", DefaultJWTSecret),
		LogFormat: strings.ToLower(str("LOG_FORMAT", "text")),
	}

	var err error
	if cfg.S3.PathStyle, err = boolean("S3_PATH_STYLE", false); err != nil {
		return Server{}, err
	}
	if cfg.SeedOnEmpty, err = boolean("SEED_ON_EMPTY", true); err != nil {
		return Server{}, err
	}
	if cfg.TrustProxy, err = boolean("TRUST_PROXY", false); err != nil {
		return Server{}, err
	}
	if cfg.JWTTTL, err = duration("JWT_TTL", DefaultJWTTTL); err != nil {
		return Server{}, err
	}
	if cfg.LoginRate, err = integer("LOGIN_RATE", DefaultLoginRate); err != nil {
		return Server{}, err
	}
	if cfg.LoginBurst, err = integer("LOGIN_BURST", DefaultLoginBurst); err != nil {
		return Server{}, err
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(str("LOG_LEVEL", "info"))); err != nil {
		return Server{}, fmt.Errorf("%sLOG_LEVEL: %w", envPrefix, err)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return Server{}, fmt.Errorf("%sLOG_FORMAT: unknown format %q", envPrefix, cfg.LogFormat)
	}
	return cfg, nil
}

// Persistence returns the adapter settings.
func (s Server) Persistence() persistence.Config {
	return persistence.Config{
		Driver:      s.Driver,
		FilePath:    s.FilePath,
		SQLitePath:  s.SQLitePath,
		PostgresDSN: s.PostgresDSN,
		S3:          s.S3,
	}
}

// LoginLimit converts LoginRate into a limiter rate.
func (s Server) LoginLimit() rate.Limit {
	if s.LoginRate <= 0 {
		return rate.Inf
	}
	return rate.Every(time.Minute / time.Duration(s.LoginRate))
}

func str(key, fallback string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func boolean(key string, fallback bool) (bool, error) {
	raw := str(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return v, nil
}

func integer(key string, fallback int) (int, error) {
	raw := str(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return v, nil
}

// duration accepts Go durations plus a day suffix such as "7d".
func duration(key string, fallback time.Duration) (time.Duration, error) {
	raw := str(key, "")
	if raw == "" {
		return fallback, nil
	}
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("%s%s: invalid day count %q", envPrefix, key, raw)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s%s: must be positive", envPrefix, key)
	}
	return d, nil
}
