package core

// delimited.go parses comma-separated payloads into a header and data rows.
//
// The format is line oriented: the payload is split on newlines first and
// each line is then split into fields. Quoted fields may contain commas and
// doubled quotes, but never newlines. The chunking driver relies on the same
// rule when it slices a payload into row chunks, so the two must stay in step.

import "strings"

// Parsed is a delimited payload split into its header and data rows.
type Parsed struct {
	Header []string
	Rows   [][]string
	// Lines holds the 1-based source line of each entry in Rows.
	Lines []int
}

// Empty reports whether the payload produced no data rows.
func (p Parsed) Empty() bool { return len(p.Rows) == 0 }

// ParseDelimited splits raw text into a header and data rows.
// Blank lines are dropped; every other line is data, whatever it starts
// with. A payload with fewer than two remaining lines yields an empty Parsed.
func ParseDelimited(text string) Parsed {
	text = CleanPayload(text)

	var (
		lines   []string
		lineNos []int
	)
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if BlankLine(line) {
			continue
		}
		lines = append(lines, line)
		lineNos = append(lineNos, i+1)
	}

	if len(lines) < 2 {
		return Parsed{}
	}

	p := Parsed{
		Header: SplitLine(lines[0]),
		Rows:   make([][]string, 0, len(lines)-1),
		Lines:  lineNos[1:],
	}
	for _, line := range lines[1:] {
		p.Rows = append(p.Rows, SplitLine(line))
	}
	return p
}

// BlankLine reports whether a line holds nothing but whitespace.
func BlankLine(line string) bool {
	return strings.TrimSpace(line) == ""
}

// SplitLine splits one line into trimmed field values.
// Commas inside a double-quoted span are literal; inside such a span a
// doubled quote stands for one quote character.
func SplitLine(line string) []string {
	var (
		fields   []string
		field    strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && inQuotes && i+1 < len(line) && line[i+1] == '"':
			field.WriteByte('"')
			i++
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(field.String()))
			field.Reset()
		default:
			field.WriteByte(c)
		}
	}
	return append(fields, strings.TrimSpace(field.String()))
}

// HeaderIndex maps lowercased header names to their column position.
type HeaderIndex map[string]int

// MakeHeaderIndex builds a HeaderIndex from a header row.
// When a name repeats, the first occurrence wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return idx
}

// Row is one data row bound to its header.
type Row struct {
	Line   int
	values []string
	index  HeaderIndex
}

// NewRow binds values to a header index.
func NewRow(index HeaderIndex, values []string, line int) Row {
	return Row{Line: line, values: values, index: index}
}

// Get returns the value under the named header, or "" when the header is
// absent or the row is short.
func (r Row) Get(name string) string {
	pos, ok := r.index[strings.ToLower(name)]
	if !ok || pos >= len(r.values) {
		return ""
	}
	return r.values[pos]
}
