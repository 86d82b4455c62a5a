package driver

import (
	"fmt"
	"strings"
	"testing"

	"github.com/JonMunkholm/leaddesk/internal/core"
)

func payloadWithRows(n int) string {
	var b strings.Builder
	b.WriteString("name,phone")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "\nLead %d,98%08d", i, i)
	}
	return b.String()
}

func TestSplitChunks_TwelveThousand(t *testing.T) {
	chunks := SplitChunks(payloadWithRows(12000), 5000)

	want := []int{5000, 5000, 2000}
	if len(chunks) != len(want) {
		t.Fatalf("len(chunks) = %d, want %d", len(chunks), len(want))
	}
	for i, c := range chunks {
		if c.Index != i+1 {
			t.Errorf("chunk %d Index = %d, want %d", i, c.Index, i+1)
		}
		if c.Rows != want[i] {
			t.Errorf("chunk %d Rows = %d, want %d", i, c.Rows, want[i])
		}
		if !strings.HasPrefix(c.Text, "name,phone\n") {
			t.Errorf("chunk %d does not start with the header line", i)
		}
		if lines := strings.Count(c.Text, "\n"); lines != want[i] {
			t.Errorf("chunk %d has %d data lines, want %d", i, lines, want[i])
		}
	}
	if !strings.HasSuffix(chunks[2].Text, "Lead 12000,9800012000") {
		t.Errorf("last chunk ends with %q", chunks[2].Text[len(chunks[2].Text)-30:])
	}
}

func TestSplitChunks(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		size    int
		want    []int
	}{
		{"empty", "", 10, nil},
		{"header only", "name,phone\n", 10, nil},
		{"single chunk", payloadWithRows(3), 10, []int{3}},
		{"exact multiple", payloadWithRows(4), 2, []int{2, 2}},
		{"default size", payloadWithRows(7), 0, []int{7}},
		{"blank lines not counted", "name\r\n\r\nAsha\r\n\nRavi\n\n", 1, []int{1, 1}},
		{"hash rows are data", "name\n#1 Fan Club\nAsha", 5, []int{2}},
		{"blank lines before header", "\n  \nname\nAsha", 5, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitChunks(tt.payload, tt.size)
			if len(chunks) != len(tt.want) {
				t.Fatalf("len(chunks) = %d, want %d", len(chunks), len(tt.want))
			}
			for i, c := range chunks {
				if c.Rows != tt.want[i] {
					t.Errorf("chunk %d Rows = %d, want %d", i, c.Rows, tt.want[i])
				}
				if strings.Contains(c.Text, "\r") {
					t.Errorf("chunk %d text %q carries a carriage return", i, c.Text)
				}
				if !strings.HasPrefix(c.Text, "name") {
					t.Errorf("chunk %d text %q does not start with the header", i, c.Text)
				}
			}
		})
	}
}

func TestSplitChunks_FirstLine(t *testing.T) {
	payload := "\nname,phone\nA,1\nB,2\n\nC,3\nD,4\n\n\nE,5\n"
	chunks := SplitChunks(payload, 2)

	wantFirst := []int{3, 6, 10}
	wantText := []string{"name,phone\nA,1\nB,2", "name,phone\nC,3\nD,4", "name,phone\nE,5"}
	if len(chunks) != len(wantFirst) {
		t.Fatalf("len(chunks) = %d, want %d", len(chunks), len(wantFirst))
	}
	for i, c := range chunks {
		if c.FirstLine != wantFirst[i] {
			t.Errorf("chunk %d FirstLine = %d, want %d", i, c.FirstLine, wantFirst[i])
		}
		if c.Text != wantText[i] {
			t.Errorf("chunk %d Text = %q, want %q", i, c.Text, wantText[i])
		}
	}

	// Interior blanks survive, so a parsed line plus the offset is the
	// payload line.
	c := SplitChunks("name\nA\n\nB", 5)[0]
	if c.Text != "name\nA\n\nB" {
		t.Fatalf("Text = %q, want interior blank kept", c.Text)
	}
	parsed := core.ParseDelimited(c.Text)
	if got := parsed.Lines[1] + c.LineOffset(); got != 4 {
		t.Errorf("payload line of B = %d, want 4", got)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		done, total int
		want        int
	}{
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 99},
		{1, 2, 50},
		{199, 200, 99},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := percent(tt.done, tt.total); got != tt.want {
			t.Errorf("percent(%d, %d) = %d, want %d", tt.done, tt.total, got, tt.want)
		}
	}
}
