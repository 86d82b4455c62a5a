// Package core holds the types shared by the importer, the chunking driver
// and the HTTP layer: the closed set of destination tables, the delimited
// payload parser, cell coercions and the error taxonomy.
//
// # Payloads
//
// A payload is comma-separated text whose first line is the header. It is
// read line by line, so quoted values may hold commas and doubled quotes but
// not newlines. Values are looked up by header name through [Row.Get].
//
// # Coercion
//
// Cells are converted to pgtype values that both store backends accept. The
// null spellings "NULL", "undefined" and the empty string become NULL for
// optional fields; a required field holding one is a [ValidationError].
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]. Each
// category has a code prefix for support reference:
//
//   - REQ: malformed import requests
//   - DB: store constraints and connectivity
//   - ROW: row mapping problems
//   - IMP: capacity, cancellation and timeouts
package core
