package tables

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/leaddesk/internal/core"
)

// dateFormats is the reference line written for date and datetime columns.
const dateFormats = "DD-MM-YYYY, DD-MM-YYYY HH:mm or YYYY-MM-DD"

// Template renders a CSV template for def: the header and one example row.
// It imports unchanged.
func Template(def Def) string {
	headers := make([]string, len(def.Fields))
	examples := make([]string, len(def.Fields))
	for i, f := range def.Fields {
		headers[i] = f.Header
		examples[i] = quoteCell(f.Example)
	}
	return strings.Join(headers, ",") + "\n" + strings.Join(examples, ",") + "\n"
}

// TemplateNotes describes def's required columns and accepted values, one
// note per line. The notes travel beside the template, never inside it.
func TemplateNotes(def Def) []string {
	notes := []string{def.Label + " import template"}
	if req := def.Required(); len(req) > 0 {
		notes = append(notes, "required: "+strings.Join(req, ", "))
	}
	for _, f := range def.Fields {
		switch f.Type {
		case core.FieldStatus:
			notes = append(notes, fmt.Sprintf("%s: %s (default %s)", f.Header, strings.Join(core.Statuses, " | "), f.Default))
		case core.FieldBool:
			notes = append(notes, f.Header+": 1, yes or true; anything else is false")
		case core.FieldDate, core.FieldTimestamp:
			notes = append(notes, f.Header+": "+dateFormats)
		}
	}
	if def.Upsert() {
		notes = append(notes, fmt.Sprintf("rows whose %s already exists are skipped", def.conflictHeader()))
	}
	return append(notes, "NULL, undefined or an empty cell leaves an optional column empty")
}
// quoteCell quotes a value that contains a comma or a quote.
func quoteCell(s string) string {
	if !strings.ContainsAny(s, `,"`) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
