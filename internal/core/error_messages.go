package core

// error_messages.go maps technical errors to user-facing messages with a
// support code. Codes are grouped by prefix:
//
//	REQ001-REQ099   malformed import requests
//	DB001-DB099     store constraint and connectivity failures
//	ROW001-ROW099   row mapping problems
//	IMP001-IMP099   import capacity and cancellation
//	RATE001         request throttling
//	ERR000          fallback, check the server log for the technical error
//
// Sentinel errors are matched first with errors.Is, then Postgres errors by
// SQLSTATE. Anything else is matched case-insensitively by substring, first
// match wins, so specific patterns come before general ones.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{ErrMissingTable, UserMessage{
		Message: "No table was selected",
		Action:  "Choose the table to import into",
		Code:    "REQ001",
	}},
	{ErrMissingPayload, UserMessage{
		Message: "No CSV content was provided",
		Action:  "Select a CSV file with a header row and data rows",
		Code:    "REQ002",
	}},
	{ErrUnknownTable, UserMessage{
		Message: "Unknown table",
		Action:  "Pick one of the tables listed by /api/tables",
		Code:    "REQ003",
	}},
	{ErrInvalidBody, UserMessage{
		Message: "The import request could not be read",
		Action:  "Send JSON with table and csvContent, or a text/csv body with ?table=",
		Code:    "REQ004",
	}},
	{ErrStoreUnavailable, UserMessage{
		Message: "Unable to reach the database",
		Action:  "Please try again in a few moments",
		Code:    "DB004",
	}},
	{ErrTooManyImports, UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP001",
	}},
	{ErrRateLimited, UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this ID already exists",
			Action:  "Remove rows that were already imported",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check for duplicate entries in your CSV",
			Code:    "DB002",
		},
	},
	{
		pattern: "foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Import vendors and team members before the rows that reference them",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "not null constraint",
		msg: UserMessage{
			Message: "A required column was empty",
			Action:  "Fill in the required columns shown in the template",
			Code:    "DB006",
		},
	},
	{
		pattern: "violates not-null",
		msg: UserMessage{
			Message: "A required column was empty",
			Action:  "Fill in the required columns shown in the template",
			Code:    "DB006",
		},
	},
	{
		pattern: "required field",
		msg: UserMessage{
			Message: "Required field is empty",
			Action:  "Ensure all required columns have values",
			Code:    "ROW001",
		},
	},
	{
		pattern: "invalid integer",
		msg: UserMessage{
			Message: "A numeric ID column holds a non-numeric value",
			Action:  "Use whole numbers for id and vendor_id",
			Code:    "ROW002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Import was cancelled",
			Action:  "Start a new import when ready",
			Code:    "IMP002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Import timed out",
			Action:  "Use a smaller chunk size or try again later",
			Code:    "IMP003",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "Payload exceeds the maximum size",
			Action:  "Split the file into smaller chunks",
			Code:    "IMP004",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// sqlStatePatterns routes integrity violations to their errorPatterns entry.
var sqlStatePatterns = map[string]string{
	"23505": "duplicate key",
	"23503": "foreign key",
	"23502": "violates not-null",
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If nothing matches, the ERR000 fallback is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pattern, ok := sqlStatePatterns[pgErr.Code]; ok {
			for _, ep := range errorPatterns {
				if ep.pattern == pattern {
					return ep.msg
				}
			}
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
