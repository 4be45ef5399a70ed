package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/url-shortener/internal/shortener"
)

// Kind identifies a storage backend.
type Kind string

const (
	KindPostgres Kind = "postgres"
	KindSQLite   Kind = "sqlite"
	KindMemory   Kind = "memory"
)

// ErrMissingDSN is returned when no database URL was configured.
var ErrMissingDSN = errors.New("database url is required")

// Backend is a mapping store together with its lifecycle hooks.
type Backend interface {
	shortener.Repository
	Ping(ctx context.Context) error
	Shutdown() error
}

// ParseDSN determines the backend kind from the DSN scheme and returns the
// connection string that backend expects.
func ParseDSN(dsn string) (Kind, string, error) {
	switch {
	case dsn == "":
		return "", "", ErrMissingDSN
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return KindPostgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("sqlite database url %q has no path", dsn)
		}

		return KindSQLite, path, nil
	case strings.HasPrefix(dsn, "memory://"):
		return KindMemory, "", nil
	default:
		return "", "", fmt.Errorf("unsupported database url scheme in %q", redact(dsn))
	}
}

// Open constructs the backend named by dsn. PostgreSQL pools connect lazily,
// so an unreachable server is not an error here.
func Open(ctx context.Context, dsn string) (Kind, Backend, error) {
	kind, conn, err := ParseDSN(dsn)
	if err != nil {
		return "", nil, err
	}

	switch kind {
	case KindPostgres:
		pool, err := pgxpool.New(ctx, conn)
		if err != nil {
			return "", nil, fmt.Errorf("create postgres pool: %w", err)
		}

		return kind, NewPostgresStore(pool), nil
	case KindSQLite:
		s, err := OpenSQLite(ctx, conn)
		if err != nil {
			return "", nil, err
		}

		return kind, s, nil
	default:
		return kind, NewMemoryStore(), nil
	}
}

// redact hides everything after the scheme so credentials never reach logs.
func redact(dsn string) string {
	if idx := strings.Index(dsn, "://"); idx != -1 {
		return dsn[:idx+3] + "..."
	}

	return "..."
}
