package driver

import (
	"strings"

	"github.com/JonMunkholm/leaddesk/internal/core"
)

// DefaultChunkSize is the number of data rows sent per importer call.
const DefaultChunkSize = 5000

// Chunk is one slice of a payload sent as a single importer call.
type Chunk struct {
	// Index is 1-based.
	Index int
	// Rows is the number of data rows in Text.
	Rows int
	// FirstLine is the payload line number of the chunk's first data row.
	FirstLine int
	// Text starts with the payload's header line.
	Text string
}

// LineOffset converts line numbers inside Text, where the first data row is
// line 2, into payload line numbers.
func (c Chunk) LineOffset() int { return c.FirstLine - 2 }

// SplitChunks splits payload into chunks of at most size data rows, each
// prefixed with the header line. Blank lines are not counted as rows, the
// same as in the parser; those between two rows of a chunk stay in its text
// so that line numbers inside a chunk keep their spacing. A payload without
// data rows yields no chunks.
func SplitChunks(payload string, size int) []Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}

	lines := strings.Split(core.CleanPayload(payload), "\n")
	var (
		header string
		data   []int // indexes into lines
	)
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		lines[i] = line
		if core.BlankLine(line) {
			continue
		}
		if header == "" {
			header = line
			continue
		}
		data = append(data, i)
	}
	if len(data) == 0 {
		return nil
	}

	chunks := make([]Chunk, 0, (len(data)+size-1)/size)
	for first := 0; first < len(data); first += size {
		last := min(first+size, len(data))

		var b strings.Builder
		b.WriteString(header)
		for _, line := range lines[data[first] : data[last-1]+1] {
			b.WriteByte('\n')
			b.WriteString(line)
		}
		chunks = append(chunks, Chunk{
			Index:     len(chunks) + 1,
			Rows:      last - first,
			FirstLine: data[first] + 1,
			Text:      b.String(),
		})
	}
	return chunks
}
