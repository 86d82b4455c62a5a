package core

// validation.go describes destination fields and reports row-level problems.
//
// Optional fields never fail: the coercions in convert.go turn bad input into
// NULL. Only required fields produce a ValidationError, which the importer
// counts as a failed row.

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// FieldType is the coercion applied to a source cell.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNullableText
	FieldInt
	FieldFloat
	FieldBool
	FieldDate
	FieldTimestamp
	FieldStatus
)

// String returns the name shown in templates and /api/tables.
func (ft FieldType) String() string {
	switch ft {
	case FieldText:
		return "text"
	case FieldNullableText:
		return "text?"
	case FieldInt:
		return "integer"
	case FieldFloat:
		return "number"
	case FieldBool:
		return "boolean"
	case FieldDate:
		return "date"
	case FieldTimestamp:
		return "datetime"
	case FieldStatus:
		return "status"
	default:
		return "value"
	}
}

// FieldSpec documents one source header and the destination column it feeds.
type FieldSpec struct {
	Header   string    `json:"header"`
	Column   string    `json:"column"`
	Type     FieldType `json:"-"`
	TypeName string    `json:"type"`
	Required bool      `json:"required"`
	// Default is the status used when the cell is empty or unknown.
	Default string `json:"default,omitempty"`
	Example string `json:"example,omitempty"`
}

// ValidationError is a row-level mapping failure on a single field.
type ValidationError struct {
	Field   string // source header
	Value   string // offending value, empty when missing
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s for %s: %q", e.Message, e.Field, e.Value)
	}
	return fmt.Sprintf("%s %s is empty", e.Message, e.Field)
}

// RequireText returns the cell under name, failing when it is a null spelling.
func RequireText(r Row, name string) (pgtype.Text, error) {
	v := r.Get(name)
	if IsNull(v) {
		return pgtype.Text{}, &ValidationError{Field: name, Message: "required field"}
	}
	return pgtype.Text{String: v, Valid: true}, nil
}

// RequireInt returns the cell under name as an integer, failing when it is
// missing or not a base-10 integer.
func RequireInt(r Row, name string) (pgtype.Int8, error) {
	v := r.Get(name)
	if IsNull(v) {
		return pgtype.Int8{}, &ValidationError{Field: name, Message: "required field"}
	}
	n := ToPgInt8(v)
	if !n.Valid {
		return pgtype.Int8{}, &ValidationError{Field: name, Value: v, Message: "invalid integer"}
	}
	return n, nil
}

// MissingColumns lists required headers absent from header.
func MissingColumns(header []string, specs []FieldSpec) []string {
	idx := MakeHeaderIndex(header)
	var missing []string
	for _, spec := range specs {
		if !spec.Required {
			continue
		}
		if _, ok := idx[strings.ToLower(spec.Header)]; !ok {
			missing = append(missing, spec.Header)
		}
	}
	return missing
}
