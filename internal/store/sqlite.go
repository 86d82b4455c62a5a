package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/JonMunkholm/leaddesk/internal/core"
	"github.com/pressly/goose/v3"
	// SQLite driver.
	_ "modernc.org/sqlite"
)

// SQLite is a Store backed by a single SQLite database file.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens the database at path and migrates it. A path of
// ":memory:" gives a private in-memory database, used by tests.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		path = "data/leaddesk.db"
	}
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; this also keeps an in-memory database on a
	// single connection so every query sees the same data.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, unavailable("ping", err)
	}

	fsys, err := migrations(DriverSQLite)
	if err != nil {
		db.Close()
		return nil, err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	return &SQLite{db: db}, nil
}

func sqliteDSN(path string) string {
	path = strings.TrimPrefix(path, "sqlite://")
	values := url.Values{}
	values.Add("_pragma", "foreign_keys(ON)")
	values.Add("_pragma", "busy_timeout(5000)")
	if path != ":memory:" {
		values.Add("_pragma", "journal_mode(WAL)")
		values.Add("_pragma", "synchronous(NORMAL)")
	}
	if strings.Contains(path, "?") {
		return path + "&" + values.Encode()
	}
	return "file:" + path + "?" + values.Encode()
}

// Insert writes rows inside one transaction; any failure rolls back all of them.
func (s *SQLite) Insert(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return s.insert(ctx, table, columns, "", rows)
}

// InsertIgnoreConflicts writes rows with ON CONFLICT DO NOTHING and counts
// only rows the database actually inserted.
func (s *SQLite) InsertIgnoreConflicts(ctx context.Context, table string, columns []string, key string, rows [][]any) (int64, error) {
	return s.insert(ctx, table, columns, key, rows)
}

func (s *SQLite) insert(ctx context.Context, table string, columns []string, key string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}
	stmtSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		quoteIdent(table),
		strings.Join(quoted, ", "),
		placeholders(len(columns), 0, func(int) string { return "?" }),
	)
	if key != "" {
		stmtSQL += fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", quoteIdent(key))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, s.classify("begin "+table, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		return 0, s.classify("prepare insert into "+table, err)
	}
	defer stmt.Close()

	var inserted int64
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("insert into %s: row %d has %d values, want %d", table, i+1, len(row), len(columns))
		}
		args, err := driverValues(row)
		if err != nil {
			return 0, fmt.Errorf("insert into %s: row %d: %w", table, i+1, err)
		}
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return 0, s.classify("insert into "+table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("insert into %s: rows affected: %w", table, err)
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, s.classify("commit "+table, err)
	}
	return inserted, nil
}

// RecordRun stores one import run.
func (s *SQLite) RecordRun(ctx context.Context, run core.ImportRun) error {
	errs, err := json.Marshal(nonNil(run.Errors))
	if err != nil {
		return fmt.Errorf("record run: marshal errors: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO import_runs (id, table_name, row_count, success, failed, errors, source, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Table, run.Rows, run.Success, run.Failed,
		string(errs), run.Source, run.DurationMs, run.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return s.classify("record run", err)
	}
	return nil
}

// ListRuns returns recent import runs, newest first.
func (s *SQLite) ListRuns(ctx context.Context, table string, limit int) ([]core.ImportRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, table_name, row_count, success, failed, errors, source, duration_ms, created_at
		FROM import_runs
		WHERE ?1 = '' OR table_name = ?1
		ORDER BY created_at DESC
		LIMIT ?2`, table, limit)
	if err != nil {
		return nil, s.classify("list runs", err)
	}
	defer rows.Close()

	var runs []core.ImportRun
	for rows.Next() {
		var (
			run       core.ImportRun
			errs      string
			createdAt int64
		)
		if err := rows.Scan(&run.ID, &run.Table, &run.Rows, &run.Success, &run.Failed, &errs, &run.Source, &run.DurationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(errs), &run.Errors); err != nil {
			return nil, fmt.Errorf("decode run errors: %w", err)
		}
		run.CreatedAt = time.UnixMilli(createdAt).UTC()
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, s.classify("list runs", err)
	}
	return runs, nil
}

// Ping checks that the database is still reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Close closes the database handle.
func (s *SQLite) Close() { s.db.Close() }

func (s *SQLite) classify(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) ||
		strings.Contains(err.Error(), "database is closed") {
		return unavailable(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// driverValues resolves pgtype values to plain driver values so the SQLite
// driver binds them the way it binds native Go types.
func driverValues(row []any) ([]any, error) {
	out := make([]any, len(row))
	for i, v := range row {
		valuer, ok := v.(driver.Valuer)
		if !ok {
			out[i] = v
			continue
		}
		dv, err := valuer.Value()
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		out[i] = dv
	}
	return out, nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
