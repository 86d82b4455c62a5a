package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "nil", err: nil, wantCode: ""},
		{name: "missing table", err: ErrMissingTable, wantCode: "REQ001"},
		{name: "missing payload", err: ErrMissingPayload, wantCode: "REQ002"},
		{name: "wrapped unknown table", err: fmt.Errorf("import: %w: bogus", ErrUnknownTable), wantCode: "REQ003"},
		{name: "invalid body", err: fmt.Errorf("decode: %w", ErrInvalidBody), wantCode: "REQ004"},
		{name: "wrapped store unavailable", err: fmt.Errorf("insert leads: %w: dial tcp", ErrStoreUnavailable), wantCode: "DB004"},
		{name: "busy", err: ErrTooManyImports, wantCode: "IMP001"},
		{name: "rate limited", err: fmt.Errorf("post import: %w", ErrRateLimited), wantCode: "RATE001"},
		{name: "duplicate key", err: errors.New("ERROR: duplicate key value violates unique constraint"), wantCode: "DB001"},
		{name: "foreign key", err: errors.New("insert or update violates foreign key constraint"), wantCode: "DB003"},
		{name: "sqlite not null", err: errors.New("NOT NULL constraint failed: leads.name"), wantCode: "DB006"},
		{name: "postgres not null", err: errors.New(`null value in column "name" violates not-null constraint`), wantCode: "DB006"},
		{name: "pg unique by sqlstate", err: fmt.Errorf("copy into leads: %w", &pgconn.PgError{Code: "23505", Message: "x"}), wantCode: "DB001"},
		{name: "pg foreign key by sqlstate", err: fmt.Errorf("copy into leads: %w", &pgconn.PgError{Code: "23503"}), wantCode: "DB003"},
		{name: "pg not null by sqlstate", err: fmt.Errorf("copy into leads: %w", &pgconn.PgError{Code: "23502"}), wantCode: "DB006"},
		{name: "required field", err: errors.New("required field name is empty"), wantCode: "ROW001"},
		{name: "cancelled", err: context.Canceled, wantCode: "IMP002"},
		{name: "deadline", err: context.DeadlineExceeded, wantCode: "IMP003"},
		{name: "unmatched", err: errors.New("something odd"), wantCode: "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrMissingTable)
	want := "No table was selected (Code: REQ001). Choose the table to import into"
	if got != want {
		t.Errorf("FormatUserError = %q, want %q", got, want)
	}
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("IsUserFacing(nil) = true, want false")
	}
	if !IsUserFacing(ErrUnknownTable) {
		t.Error("IsUserFacing(ErrUnknownTable) = false, want true")
	}
	if IsUserFacing(errors.New("boom")) {
		t.Error("IsUserFacing(boom) = true, want false")
	}
}

func TestIsRequestError(t *testing.T) {
	if !IsRequestError(fmt.Errorf("x: %w", ErrMissingPayload)) {
		t.Error("IsRequestError(wrapped ErrMissingPayload) = false, want true")
	}
	if IsRequestError(ErrStoreUnavailable) {
		t.Error("IsRequestError(ErrStoreUnavailable) = true, want false")
	}
}
