package core

// convert.go turns raw cell strings into the pgtype values written to the store.
//
// Cells exported from the legacy admin carry a few null spellings ("NULL",
// "undefined", empty) and dates in day-first order. None of these functions
// fail: a value that cannot be read becomes a NULL (Valid=false) and the
// caller decides whether that is acceptable for the column.

import (
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// nullTokens are the cell spellings treated as SQL NULL.
var nullTokens = map[string]bool{
	"":          true,
	"null":      true,
	"undefined": true,
}

// IsNull reports whether a cell holds one of the null spellings.
func IsNull(s string) bool {
	return nullTokens[strings.ToLower(strings.TrimSpace(s))]
}

// ToPgText converts a nullable string cell.
func ToPgText(s string) pgtype.Text {
	if IsNull(s) {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgString passes the value through as is, empty included.
func ToPgString(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

// ToBool reads "1", "yes" and "true" (any case) as true and everything else as false.
func ToBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "yes", "true":
		return true
	default:
		return false
	}
}

// ToPgBool wraps ToBool. The result is always valid.
func ToPgBool(s string) pgtype.Bool {
	return pgtype.Bool{Bool: ToBool(s), Valid: true}
}

// ToPgFloat8 parses a decimal number; null or non-numeric input is NULL.
func ToPgFloat8(s string) pgtype.Float8 {
	if IsNull(s) {
		return pgtype.Float8{Valid: false}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return pgtype.Float8{Valid: false}
	}
	return pgtype.Float8{Float64: f, Valid: true}
}

// ToPgInt8 parses a base-10 integer; null or non-numeric input is NULL.
func ToPgInt8(s string) pgtype.Int8 {
	if IsNull(s) {
		return pgtype.Int8{Valid: false}
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return pgtype.Int8{Valid: false}
	}
	return pgtype.Int8{Int64: n, Valid: true}
}

// Canonical layouts for normalized date cells.
const (
	isoDate     = "2006-01-02"
	isoDateTime = "2006-01-02T15:04:05"
)

// Cell shapes accepted by NormalizeDate; 9 stands for any digit.
const (
	dayFirstDateTimeShape = "99-99-9999 99:99"
	dayFirstDateShape     = "99-99-9999"
	isoDateShape          = "9999-99-99"
)

// NormalizeDate rewrites a date cell into ISO form.
//
//	"15-01-2024 14:30" -> "2024-01-15T14:30:00"
//	"15-01-2024"       -> "2024-01-15"
//	"2024-01-15"       -> "2024-01-15"
//
// Only the digit layout is checked, not the calendar: "31-02-2024" becomes
// "2024-02-31" and the store decides. Anything else, including the null
// spellings, reports ok=false.
func NormalizeDate(s string) (string, bool) {
	if IsNull(s) {
		return "", false
	}
	s = strings.TrimSpace(s)

	switch {
	case hasShape(s, dayFirstDateTimeShape):
		return s[6:10] + "-" + s[3:5] + "-" + s[0:2] + "T" + s[11:16] + ":00", true
	case hasShape(s, dayFirstDateShape):
		return s[6:10] + "-" + s[3:5] + "-" + s[0:2], true
	case hasShape(s, isoDateShape):
		return s, true
	}
	return "", false
}

// hasShape reports whether s matches shape byte for byte, with '9' in shape
// matching any ASCII digit.
func hasShape(s, shape string) bool {
	if len(s) != len(shape) {
		return false
	}
	for i := range len(shape) {
		if shape[i] == '9' {
			if s[i] < '0' || s[i] > '9' {
				return false
			}
			continue
		}
		if s[i] != shape[i] {
			return false
		}
	}
	return true
}

// ToPgDate normalizes a date cell and keeps only the calendar date. A cell
// that normalizes but names no real day, such as "31-02-2024", is NULL.
func ToPgDate(s string) pgtype.Date {
	t, ok := parseNormalized(s)
	if !ok {
		return pgtype.Date{Valid: false}
	}
	return pgtype.Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), Valid: true}
}

// ToPgTimestamp normalizes a date cell into a timestamp without zone.
// Date-only input lands on midnight.
func ToPgTimestamp(s string) pgtype.Timestamp {
	t, ok := parseNormalized(s)
	if !ok {
		return pgtype.Timestamp{Valid: false}
	}
	return pgtype.Timestamp{Time: t, Valid: true}
}

func parseNormalized(s string) (time.Time, bool) {
	norm, ok := NormalizeDate(s)
	if !ok {
		return time.Time{}, false
	}
	layout := isoDate
	if len(norm) > len(isoDate) {
		layout = isoDateTime
	}
	t, err := time.Parse(layout, norm)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Lead and purchase statuses accepted from imports.
const (
	StatusNotPurchased = "not-purchased"
	StatusPurchased    = "purchased"
	StatusActive       = "active"
	StatusConverted    = "converted"
	StatusLost         = "lost"
	StatusFollowUp     = "follow-up"
	StatusContacted    = "contacted"
	StatusNew          = "new"
)

// Statuses lists the accepted status values.
var Statuses = []string{
	StatusNotPurchased,
	StatusPurchased,
	StatusActive,
	StatusConverted,
	StatusLost,
	StatusFollowUp,
	StatusContacted,
	StatusNew,
}

// NormalizeStatus returns the canonical status for s, or def when s is empty
// or not one of Statuses.
func NormalizeStatus(s, def string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, st := range Statuses {
		if s == st {
			return st
		}
	}
	return def
}
