package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/JonMunkholm/leaddesk/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Postgres is a Store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// OpenPostgres creates the pool, verifies connectivity and migrates.
func OpenPostgres(ctx context.Context, cfg Config) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.HealthCheckPeriod > 0 {
		poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod
	}
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, unavailable("ping", err)
	}

	p := &Postgres{pool: pool}
	if err := p.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	fsys, err := migrations(DriverPostgres)
	if err != nil {
		return err
	}

	db := stdlib.OpenDBFromPool(p.pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	return nil
}

// Insert bulk-loads rows with COPY. COPY is a single statement, so a
// rejected row rejects the whole call.
func (p *Postgres) Insert(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := p.pool.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, p.classify("copy into "+table, err)
	}
	return n, nil
}

// InsertIgnoreConflicts sends one multi-row INSERT ... ON CONFLICT DO NOTHING.
func (p *Postgres) InsertIgnoreConflicts(ctx context.Context, table string, columns []string, key string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}

	var (
		b    strings.Builder
		args = make([]any, 0, len(rows)*len(columns))
	)
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", pgx.Identifier{table}.Sanitize(), strings.Join(quoted, ", "))
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("insert into %s: row has %d values, want %d", table, len(row), len(columns))
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(placeholders(len(columns), len(args), func(n int) string { return fmt.Sprintf("$%d", n) }))
		args = append(args, row...)
	}
	fmt.Fprintf(&b, " ON CONFLICT (%s) DO NOTHING", pgx.Identifier{key}.Sanitize())

	tag, err := p.pool.Exec(ctx, b.String(), args...)
	if err != nil {
		return 0, p.classify("upsert into "+table, err)
	}
	return tag.RowsAffected(), nil
}

// RecordRun stores one import run.
func (p *Postgres) RecordRun(ctx context.Context, run core.ImportRun) error {
	id, err := uuid.Parse(run.ID)
	if err != nil {
		return fmt.Errorf("record run: invalid id %q: %w", run.ID, err)
	}
	errs, err := json.Marshal(nonNil(run.Errors))
	if err != nil {
		return fmt.Errorf("record run: marshal errors: %w", err)
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO import_runs (id, table_name, row_count, success, failed, errors, source, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		pgtype.UUID{Bytes: id, Valid: true}, run.Table, run.Rows, run.Success, run.Failed,
		string(errs), run.Source, run.DurationMs, run.CreatedAt,
	)
	if err != nil {
		return p.classify("record run", err)
	}
	return nil
}

// ListRuns returns recent import runs, newest first.
func (p *Postgres) ListRuns(ctx context.Context, table string, limit int) ([]core.ImportRun, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id::text, table_name, row_count, success, failed, errors::text, source, duration_ms, created_at
		FROM import_runs
		WHERE $1 = '' OR table_name = $1
		ORDER BY created_at DESC
		LIMIT $2`, table, limit)
	if err != nil {
		return nil, p.classify("list runs", err)
	}
	defer rows.Close()

	var runs []core.ImportRun
	for rows.Next() {
		var (
			run  core.ImportRun
			errs string
		)
		if err := rows.Scan(&run.ID, &run.Table, &run.Rows, &run.Success, &run.Failed, &errs, &run.Source, &run.DurationMs, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(errs), &run.Errors); err != nil {
			return nil, fmt.Errorf("decode run errors: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, p.classify("list runs", err)
	}
	return runs, nil
}

// Ping checks that a connection can be acquired and used.
func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Close releases every pooled connection.
func (p *Postgres) Close() { p.pool.Close() }

// classify separates server-side rejections from failures to talk to the
// server at all. Only the latter are wrapped with ErrStoreUnavailable. The
// driver error stays in the chain either way so callers can inspect the
// *pgconn.PgError.
func (p *Postgres) classify(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if isPgConnectivity(err) {
		return unavailable(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isPgConnectivity(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08 is connection exception; 57P01-57P03 are shutdown states.
		return strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57P")
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	return strings.Contains(err.Error(), "closed pool")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
