// Package importer runs one bulk import call: parse the payload, map every
// row for the target table and write the mapped rows in bounded batches.
//
// Row problems are counted and described but never stop the call. A batch
// the store rejects is counted as failed as a whole. Only a request that
// cannot be processed at all, or a store that cannot be reached, returns an
// error.
package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/leaddesk/internal/core"
	"github.com/JonMunkholm/leaddesk/internal/core/tables"
	"github.com/JonMunkholm/leaddesk/internal/logging"
	"github.com/JonMunkholm/leaddesk/internal/metrics"
	"github.com/JonMunkholm/leaddesk/internal/store"
	"github.com/google/uuid"
)

// Batch size defaults, overridable through Options.
const (
	DefaultBatchSize    = 100
	DefaultMaxBatchSize = 500
)

// Options tunes a Service.
type Options struct {
	// BatchSize applies when a request does not name one.
	BatchSize int
	// MaxBatchSize caps any requested batch size.
	MaxBatchSize int
}

// Service is the server-side importer.
type Service struct {
	store   store.Store
	metrics *metrics.Metrics
	opts    Options
	now     func() time.Time
}

// New builds a Service. m may be nil.
func New(st store.Store, opts Options, m *metrics.Metrics) *Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = DefaultMaxBatchSize
	}
	if opts.BatchSize > opts.MaxBatchSize {
		opts.BatchSize = opts.MaxBatchSize
	}
	return &Service{store: st, metrics: m, opts: opts, now: time.Now}
}

// batchSize resolves the effective batch size for a request.
func (s *Service) batchSize(requested int) int {
	switch {
	case requested <= 0:
		return s.opts.BatchSize
	case requested > s.opts.MaxBatchSize:
		return s.opts.MaxBatchSize
	default:
		return requested
	}
}

// Import processes one payload for one table.
func (s *Service) Import(ctx context.Context, req core.ImportRequest) (result core.ImportResult, err error) {
	if req.Table == "" {
		return core.ImportResult{}, core.ErrMissingTable
	}
	if req.CSVContent == "" {
		return core.ImportResult{}, core.ErrMissingPayload
	}
	table, ok := core.ParseTable(req.Table)
	if !ok {
		return core.ImportResult{}, fmt.Errorf("%w: %q", core.ErrUnknownTable, req.Table)
	}
	def, ok := tables.Definition(table)
	if !ok {
		return core.ImportResult{}, fmt.Errorf("%w: %q", core.ErrUnknownTable, req.Table)
	}

	done := s.metrics.Begin(table.String())
	defer func() { done(err) }()

	logger := logging.WithFields(ctx, "table", table.String())
	start := s.now()

	parsed := core.ParseDelimited(req.CSVContent)
	result = core.ImportResult{Table: table.String(), Errors: []string{}}
	if parsed.Empty() {
		logger.Info("import payload has no data rows")
		return result, nil
	}

	if off := max(0, req.LineOffset); off > 0 {
		for i := range parsed.Lines {
			parsed.Lines[i] += off
		}
	}

	if missing := core.MissingColumns(parsed.Header, def.Fields); len(missing) > 0 {
		logger.Warn("import header lacks required columns", "missing", missing)
	}

	size := s.batchSize(req.BatchSize)
	idx := core.MakeHeaderIndex(parsed.Header)

	for first := 0; first < len(parsed.Rows); first += size {
		last := min(first+size, len(parsed.Rows))
		batchNo := first/size + 1

		if err := s.importBatch(ctx, def, idx, parsed, first, last, batchNo, &result); err != nil {
			logger.Error("import aborted", "batch", batchNo, "error", err)
			return result, err
		}
	}

	s.record(ctx, core.ImportRun{
		ID:         uuid.NewString(),
		Table:      result.Table,
		Rows:       len(parsed.Rows),
		Success:    result.Success,
		Failed:     result.Failed,
		Errors:     result.Errors,
		Source:     core.SourceFromContext(ctx),
		DurationMs: s.now().Sub(start).Milliseconds(),
		CreatedAt:  start.UTC(),
	})

	logger.Info("import finished",
		"rows", len(parsed.Rows),
		"success", result.Success,
		"failed", result.Failed,
		"batch_size", size,
		"duration_ms", s.now().Sub(start).Milliseconds(),
	)
	return result, nil
}

// importBatch maps rows [first, last) and writes them. It returns an error
// only when the import must stop.
func (s *Service) importBatch(ctx context.Context, def tables.Def, idx core.HeaderIndex, parsed core.Parsed, first, last, batchNo int, result *core.ImportResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	table := def.Table.String()
	records := make([][]any, 0, last-first)
	failed := 0

	for i := first; i < last; i++ {
		row := core.NewRow(idx, parsed.Rows[i], parsed.Lines[i])
		values, err := def.Map(row)
		if err != nil {
			failed++
			result.AddError(fmt.Sprintf("Row %d: %s", row.Line, err))
			continue
		}
		if values == nil {
			continue
		}
		records = append(records, values)
	}
	result.Failed += failed
	s.metrics.Rows(table, metrics.OutcomeFailed, failed)

	if len(records) == 0 {
		return nil
	}

	var (
		n   int64
		err error
	)
	if def.Upsert() {
		n, err = s.store.InsertIgnoreConflicts(ctx, table, def.Columns(), def.ConflictKey, records)
	} else {
		n, err = s.store.Insert(ctx, table, def.Columns(), records)
	}

	if err != nil {
		if isHardStoreError(err) {
			return err
		}
		result.Failed += len(records)
		result.AddError(fmt.Sprintf("Batch %d (rows %d-%d): %s", batchNo, parsed.Lines[first], parsed.Lines[last-1], err))
		s.metrics.Batch(table, metrics.OutcomeRejected)
		s.metrics.Rows(table, metrics.OutcomeFailed, len(records))
		logging.FromContext(ctx).Warn("batch rejected",
			"table", table,
			"batch", batchNo,
			"rows", len(records),
			"error", err,
		)
		return nil
	}

	result.Success += int(n)
	s.metrics.Batch(table, metrics.OutcomeSuccess)
	s.metrics.Rows(table, metrics.OutcomeSuccess, int(n))
	s.metrics.Rows(table, metrics.OutcomeSkipped, len(records)-int(n))
	return nil
}

// isHardStoreError reports errors that end the whole import rather than
// failing one batch.
func isHardStoreError(err error) bool {
	return errors.Is(err, core.ErrStoreUnavailable) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// record saves the run to history. Failures are logged and otherwise ignored.
func (s *Service) record(ctx context.Context, run core.ImportRun) {
	if err := s.store.RecordRun(ctx, run); err != nil {
		logging.FromContext(ctx).Warn("failed to record import run",
			"table", run.Table,
			"run_id", run.ID,
			"error", err,
		)
	}
}

// History lists recent import runs, newest first. An empty table lists all.
func (s *Service) History(ctx context.Context, table string, limit int) ([]core.ImportRun, error) {
	if table != "" {
		t, ok := core.ParseTable(table)
		if !ok {
			return nil, fmt.Errorf("%w: %q", core.ErrUnknownTable, table)
		}
		table = t.String()
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	runs, err := s.store.ListRuns(ctx, table, limit)
	if err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}
	return runs, nil
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
