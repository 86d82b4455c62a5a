package core

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseDelimited(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantHeader []string
		wantRows   [][]string
	}{
		{
			name:       "simple",
			input:      "name,phone\nAsha,98100\nRavi,98200\n",
			wantHeader: []string{"name", "phone"},
			wantRows:   [][]string{{"Asha", "98100"}, {"Ravi", "98200"}},
		},
		{
			name:       "crlf and blank lines",
			input:      "name,phone\r\n\r\nAsha,98100\r\n   \r\nRavi,98200",
			wantHeader: []string{"name", "phone"},
			wantRows:   [][]string{{"Asha", "98100"}, {"Ravi", "98200"}},
		},
		{
			name:       "quoted comma",
			input:      "name,city\n\"Kapoor, Asha\",Delhi",
			wantHeader: []string{"name", "city"},
			wantRows:   [][]string{{"Kapoor, Asha", "Delhi"}},
		},
		{
			name:       "doubled quote",
			input:      "name,note\nAsha,\"said \"\"hi\"\", left\"",
			wantHeader: []string{"name", "note"},
			wantRows:   [][]string{{"Asha", `said "hi", left`}},
		},
		{
			name:       "values trimmed",
			input:      " name , phone \n  Asha ,  98100 ",
			wantHeader: []string{"name", "phone"},
			wantRows:   [][]string{{"Asha", "98100"}},
		},
		{
			name:       "bom stripped",
			input:      "\ufeffname\nAsha",
			wantHeader: []string{"name"},
			wantRows:   [][]string{{"Asha"}},
		},
		{
			name:       "empty trailing field kept",
			input:      "a,b,c\n1,,",
			wantHeader: []string{"a", "b", "c"},
			wantRows:   [][]string{{"1", "", ""}},
		},
		{
			name:  "header only",
			input: "name,phone\n",
		},
		{
			name:  "empty",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDelimited(tt.input)
			if !reflect.DeepEqual(got.Header, tt.wantHeader) {
				t.Errorf("Header = %q, want %q", got.Header, tt.wantHeader)
			}
			if len(tt.wantRows) == 0 {
				if !got.Empty() {
					t.Errorf("Rows = %q, want none", got.Rows)
				}
				return
			}
			if !reflect.DeepEqual(got.Rows, tt.wantRows) {
				t.Errorf("Rows = %q, want %q", got.Rows, tt.wantRows)
			}
		})
	}
}

func TestParseDelimited_LineNumbers(t *testing.T) {
	got := ParseDelimited("name\n\nAsha\n\n\nRavi\n")
	want := []int{3, 6}
	if !reflect.DeepEqual(got.Lines, want) {
		t.Errorf("Lines = %v, want %v", got.Lines, want)
	}
}

// Rows with plain values survive a join/parse cycle unchanged.
func TestParseDelimited_RoundTrip(t *testing.T) {
	header := []string{"id", "name", "phone", "status"}
	rows := [][]string{
		{"1", "Asha", "9810000001", "new"},
		{"2", "Ravi", "9810000002", "purchased"},
		{"3", "Meera", "9810000003", "lost"},
	}

	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(strings.Join(r, ","))
	}

	got := ParseDelimited(b.String())
	if !reflect.DeepEqual(got.Header, header) {
		t.Errorf("Header = %q, want %q", got.Header, header)
	}
	if !reflect.DeepEqual(got.Rows, rows) {
		t.Errorf("Rows = %q, want %q", got.Rows, rows)
	}
}

// A quoted value containing commas and doubled quotes comes back as one field.
func TestSplitLine_QuotedRoundTrip(t *testing.T) {
	values := []string{`a,b`, `say "x"`, `,,`, `""`, `plain`}
	for _, v := range values {
		line := `"` + strings.ReplaceAll(v, `"`, `""`) + `",tail`
		got := SplitLine(line)
		if len(got) != 2 {
			t.Fatalf("SplitLine(%q) produced %d fields, want 2", line, len(got))
		}
		if got[0] != v {
			t.Errorf("SplitLine(%q)[0] = %q, want %q", line, got[0], v)
		}
		if got[1] != "tail" {
			t.Errorf("SplitLine(%q)[1] = %q, want %q", line, got[1], "tail")
		}
	}
}

func TestRow_Get(t *testing.T) {
	idx := MakeHeaderIndex([]string{"Name", "PHONE", "city", "name"})
	row := NewRow(idx, []string{"Asha", "98100"}, 2)

	tests := []struct {
		key  string
		want string
	}{
		{"name", "Asha"},
		{"NAME", "Asha"},
		{"phone", "98100"},
		{"city", ""},  // row is short
		{"email", ""}, // not in header
	}

	for _, tt := range tests {
		if got := row.Get(tt.key); got != tt.want {
			t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

// A leading # is ordinary data.
func TestParseDelimited_KeepsHashRows(t *testing.T) {
	got := ParseDelimited("name,phone\n#1 Fan Club,9810000001\n\n  \nAsha,98100\n")
	if len(got.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(got.Rows))
	}
	if got.Rows[0][0] != "#1 Fan Club" {
		t.Errorf("Rows[0][0] = %q, want %q", got.Rows[0][0], "#1 Fan Club")
	}
	if got.Lines[0] != 2 || got.Lines[1] != 5 {
		t.Errorf("Lines = %v, want [2 5]", got.Lines)
	}
}
