// Package driver feeds a large local payload to an importer in fixed-size
// chunks, one call at a time, and keeps a per-table status board while it
// does so.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/leaddesk/internal/core"
	"github.com/JonMunkholm/leaddesk/internal/logging"
	"golang.org/x/time/rate"
)

// ErrNoRows is returned when a payload has a header but no data rows.
var ErrNoRows = errors.New("payload has no data rows")

// Importer runs one importer call. *importer.Service and *Client satisfy it.
type Importer interface {
	Import(ctx context.Context, req core.ImportRequest) (core.ImportResult, error)
}

// Options tunes a Driver.
type Options struct {
	// ChunkSize is the data row count per call. Default DefaultChunkSize.
	ChunkSize int
	// BatchSize is forwarded to the importer; zero leaves it to the server.
	BatchSize int
	// ErrorsPerChunk caps the row errors carried from each chunk into the
	// run's error list. Default 3.
	ErrorsPerChunk int
	// MinInterval, when positive, spaces chunk calls at least this far apart.
	MinInterval time.Duration
}

// Summary is the aggregate outcome of one run.
type Summary struct {
	Table   core.Table `json:"table"`
	State   State      `json:"state"`
	Chunks  int        `json:"chunks"`
	Success int        `json:"success"`
	Failed  int        `json:"failed"`
	Errors  []string   `json:"errors"`
}

// Driver runs chunked imports. Runs on different tables may share a Driver
// and its Board; a single run never issues concurrent calls.
type Driver struct {
	importer Importer
	board    *Board
	opts     Options
	pace     *rate.Limiter
}

// New builds a Driver. A nil board gets a fresh one.
func New(imp Importer, board *Board, opts Options) *Driver {
	if board == nil {
		board = NewBoard()
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.ErrorsPerChunk <= 0 {
		opts.ErrorsPerChunk = 3
	}
	d := &Driver{importer: imp, board: board, opts: opts}
	if opts.MinInterval > 0 {
		d.pace = rate.NewLimiter(rate.Every(opts.MinInterval), 1)
	}
	return d
}

// Board returns the status board the driver reports to.
func (d *Driver) Board() *Board { return d.board }

// Run imports payload into table chunk by chunk.
//
// A failed chunk call is recorded and the run moves on to the next chunk.
// ctx is checked between chunks only; a call already in flight is left to
// finish. On cancellation the board shows error with the partial counts and
// Run returns ctx.Err() alongside the summary.
func (d *Driver) Run(ctx context.Context, table core.Table, payload string) (Summary, error) {
	logger := logging.WithFields(ctx, "table", table.String())
	sum := Summary{Table: table, Errors: []string{}}

	chunks := SplitChunks(payload, d.opts.ChunkSize)
	if len(chunks) == 0 {
		sum.Errors = append(sum.Errors, ErrNoRows.Error())
		sum.State = d.board.Fail(table, 0, 0, sum.Errors).State
		return sum, ErrNoRows
	}
	sum.Chunks = len(chunks)
	chunkErrors := 0

	for _, chunk := range chunks {
		if err := d.wait(ctx); err != nil {
			sum.Errors = append(sum.Errors, fmt.Sprintf("Import cancelled before chunk %d of %d", chunk.Index, len(chunks)))
			sum.State = d.board.Fail(table, sum.Success, sum.Failed, sum.Errors).State
			logger.Warn("chunked import cancelled", "chunk", chunk.Index, "chunks", len(chunks))
			return sum, err
		}

		d.board.Progress(table, chunk.Index, len(chunks), sum.Success, sum.Failed)

		res, err := d.importer.Import(ctx, core.ImportRequest{
			Table:      table.String(),
			CSVContent: chunk.Text,
			BatchSize:  d.opts.BatchSize,
			LineOffset: chunk.LineOffset(),
		})
		if err != nil {
			chunkErrors++
			sum.Failed += chunk.Rows
			sum.Errors = append(sum.Errors, fmt.Sprintf("Chunk %d: %s", chunk.Index, core.FormatUserError(err)))
			logger.Warn("chunk call failed",
				"chunk", chunk.Index,
				"chunks", len(chunks),
				"rows", chunk.Rows,
				"error", err,
			)
			continue
		}

		sum.Success += res.Success
		sum.Failed += res.Failed
		for i, msg := range res.Errors {
			if i == d.opts.ErrorsPerChunk {
				break
			}
			sum.Errors = append(sum.Errors, fmt.Sprintf("Chunk %d: %s", chunk.Index, msg))
		}
	}

	sum.State = d.board.Finish(table, len(chunks), sum.Success, sum.Failed, chunkErrors, sum.Errors).State
	logger.Info("chunked import finished",
		"chunks", len(chunks),
		"success", sum.Success,
		"failed", sum.Failed,
		"chunk_errors", chunkErrors,
		"state", sum.State,
	)
	return sum, nil
}

// wait checks for cancellation and applies pacing before a chunk call.
func (d *Driver) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.pace == nil {
		return nil
	}
	return d.pace.Wait(ctx)
}
