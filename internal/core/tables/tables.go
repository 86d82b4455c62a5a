// Package tables holds the static field mapping for every importable table.
//
// Each table has its own file with a typed row struct, a mapping function
// from a parsed row to that struct, and a values method that lists the
// struct's fields in destination column order. [Definition] selects the
// mapping for a table with a single switch over the closed set in core.
package tables

import (
	"github.com/JonMunkholm/leaddesk/internal/core"
)

// Def describes how one table is imported.
type Def struct {
	Table core.Table
	// Label is the human name used in templates and the CLI.
	Label  string
	Fields []core.FieldSpec
	// ConflictKey, when set, makes the write an upsert that silently skips
	// rows whose key already exists.
	ConflictKey string
	// Map turns one data row into column values ordered as Columns().
	Map func(core.Row) ([]any, error)
}

// Columns returns the destination column names in write order.
func (d Def) Columns() []string {
	cols := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		cols[i] = f.Column
	}
	return cols
}

// Required returns the headers that must be present and non-null.
func (d Def) Required() []string {
	var out []string
	for _, f := range d.Fields {
		if f.Required {
			out = append(out, f.Header)
		}
	}
	return out
}

func (d Def) conflictHeader() string {
	for _, f := range d.Fields {
		if f.Column == d.ConflictKey {
			return f.Header
		}
	}
	return d.ConflictKey
}

// Upsert reports whether writes skip rows with an existing ConflictKey.
func (d Def) Upsert() bool { return d.ConflictKey != "" }

// Definition returns the import definition for t.
// ok is false for a table outside the closed set.
func Definition(t core.Table) (Def, bool) {
	switch t {
	case core.TableTeam:
		return teamMembers, true
	case core.TableVendors:
		return vendors, true
	case core.TableLeads:
		return leads, true
	case core.TableCustomBuyLeads:
		return customBuyLeads, true
	case core.TableChatLeads:
		return chatFormLeads, true
	case core.TableLeadPurchases:
		return leadPurchases, true
	case core.TableClientSubs:
		return clientSubscriptions, true
	case core.TableVendorSubs:
		return vendorSubscriptions, true
	case core.TableAppDownloads:
		return appDownloadLinks, true
	}
	return Def{}, false
}

// All returns the definitions of every table in core.Tables order.
func All() []Def {
	out := make([]Def, 0, len(core.Tables()))
	for _, t := range core.Tables() {
		if def, ok := Definition(t); ok {
			out = append(out, def)
		}
	}
	return out
}

// MapRow maps one row for table t. It returns nil values and a nil error
// when t has no definition; the row is then skipped rather than failed.
func MapRow(t core.Table, r core.Row) ([]any, error) {
	def, ok := Definition(t)
	if !ok {
		return nil, nil
	}
	return def.Map(r)
}

// field builds a FieldSpec whose header matches its column.
func field(name string, ft core.FieldType, example string) core.FieldSpec {
	return core.FieldSpec{Header: name, Column: name, Type: ft, TypeName: ft.String(), Example: example}
}

func required(spec core.FieldSpec) core.FieldSpec {
	spec.Required = true
	return spec
}

func renamed(spec core.FieldSpec, column string) core.FieldSpec {
	spec.Column = column
	return spec
}

func status(name, def, example string) core.FieldSpec {
	spec := field(name, core.FieldStatus, example)
	spec.Default = def
	return spec
}

type record interface {
	values() []any
}

// mapper adapts a typed mapping function to Def.Map.
func mapper[T record](fn func(core.Row) (T, error)) func(core.Row) ([]any, error) {
	return func(r core.Row) ([]any, error) {
		rec, err := fn(r)
		if err != nil {
			return nil, err
		}
		return rec.values(), nil
	}
}
