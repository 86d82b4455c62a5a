// Package store writes imported records and import history to a relational
// database. Two backends exist: Postgres through a pgx pool and SQLite
// through database/sql. Both run the embedded goose migrations on open.
package store

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/JonMunkholm/leaddesk/internal/core"
)

//go:embed migrations
var migrationsFS embed.FS

// Drivers accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Store is the record sink used by the importer.
//
// A failure to reach the database is wrapped with core.ErrStoreUnavailable.
// Any other error means the database rejected the write and nothing from
// that call was stored.
type Store interface {
	// Insert writes all rows or none.
	Insert(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
	// InsertIgnoreConflicts writes rows, silently skipping any whose key
	// column already exists, and returns how many were actually inserted.
	InsertIgnoreConflicts(ctx context.Context, table string, columns []string, key string, rows [][]any) (int64, error)

	RecordRun(ctx context.Context, run core.ImportRun) error
	// ListRuns returns the newest runs first. An empty table lists all tables.
	ListRuns(ctx context.Context, table string, limit int) ([]core.ImportRun, error)

	Ping(ctx context.Context) error
	Close()
}

// Config selects and tunes a backend.
type Config struct {
	Driver string
	URL    string

	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	ConnectTimeout    time.Duration
}

// Open connects to the configured backend and applies pending migrations.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverPostgres, "postgresql", "pgx":
		return OpenPostgres(ctx, cfg)
	case DriverSQLite, "sqlite3":
		return OpenSQLite(ctx, cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q (use postgres or sqlite)", cfg.Driver)
	}
}

// DriverFromURL guesses the backend from a connection string.
func DriverFromURL(url string) string {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

func migrations(dialect string) (fs.FS, error) {
	sub, err := fs.Sub(migrationsFS, "migrations/"+dialect)
	if err != nil {
		return nil, fmt.Errorf("migrations for %s: %w", dialect, err)
	}
	return sub, nil
}

// unavailable marks err as a connectivity failure.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, core.ErrStoreUnavailable, err)
}

// placeholders returns "(p1, p2, ...)" for n columns using the given marker.
func placeholders(n, offset int, marker func(int) string) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = marker(offset + i + 1)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
