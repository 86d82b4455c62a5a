package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/leaddesk/internal/core"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPostgresClassify(t *testing.T) {
	var p *Postgres

	tests := []struct {
		name            string
		err             error
		wantUnavailable bool
		wantCode        string
	}{
		{name: "unique violation", err: &pgconn.PgError{Code: "23505", Message: "duplicate key value"}, wantCode: "23505"},
		{name: "wrapped not null", err: fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23502"}), wantCode: "23502"},
		{name: "connection exception", err: &pgconn.PgError{Code: "08006"}, wantUnavailable: true, wantCode: "08006"},
		{name: "admin shutdown", err: &pgconn.PgError{Code: "57P01"}, wantUnavailable: true, wantCode: "57P01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.classify("copy into leads", tt.err)

			if errors.Is(got, core.ErrStoreUnavailable) != tt.wantUnavailable {
				t.Errorf("classify(%v) unavailable = %v, want %v", tt.err, !tt.wantUnavailable, tt.wantUnavailable)
			}
			var pgErr *pgconn.PgError
			if !errors.As(got, &pgErr) {
				t.Fatalf("classify(%v) = %v, lost *pgconn.PgError", tt.err, got)
			}
			if pgErr.Code != tt.wantCode {
				t.Errorf("SQLSTATE = %q, want %q", pgErr.Code, tt.wantCode)
			}
		})
	}
}

func TestPostgresClassify_Context(t *testing.T) {
	var p *Postgres
	got := p.classify("list runs", context.Canceled)
	if !errors.Is(got, context.Canceled) {
		t.Errorf("classify(Canceled) = %v, want context.Canceled in chain", got)
	}
	if errors.Is(got, core.ErrStoreUnavailable) {
		t.Errorf("classify(Canceled) reported the store unavailable")
	}
}

func TestPostgresClassify_UserMessage(t *testing.T) {
	var p *Postgres
	err := p.classify("copy into leads", &pgconn.PgError{Code: "23503", Message: "insert violates constraint"})
	if got := core.MapError(err).Code; got != "DB003" {
		t.Errorf("MapError(classify(23503)).Code = %q, want DB003", got)
	}
}
