package core

// encoding.go normalizes raw payload bytes before parsing.
//
// Spreadsheet exports commonly carry a UTF-8 (or UTF-16) byte order mark and
// the odd invalid byte sequence. Both are handled with x/text transformers:
//
//   - BOMOverride strips a leading BOM and decodes UTF-16 input when marked
//   - ReplaceIllFormed swaps invalid sequences for U+FFFD
//
// Use NewPayloadReader for files and CleanPayload for in-memory payloads.

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

func payloadTransformer() transform.Transformer {
	return transform.Chain(
		unicode.BOMOverride(transform.Nop),
		runes.ReplaceIllFormed(),
	)
}

// NewPayloadReader wraps r so that reads yield BOM-free, valid UTF-8.
func NewPayloadReader(r io.Reader) io.Reader {
	return transform.NewReader(r, payloadTransformer())
}

// CleanPayload returns s without a leading BOM and with invalid UTF-8 replaced.
func CleanPayload(s string) string {
	out, _, err := transform.String(payloadTransformer(), s)
	if err != nil {
		return s
	}
	return out
}
