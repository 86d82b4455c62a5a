package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/leaddesk/internal/core"
	"github.com/JonMunkholm/leaddesk/internal/core/tables"
	"github.com/JonMunkholm/leaddesk/internal/logging"
	"github.com/go-chi/chi/v5"
)

// tableInfo is one entry of GET /api/tables.
type tableInfo struct {
	Name        string           `json:"name"`
	Label       string           `json:"label"`
	Fields      []core.FieldSpec `json:"fields"`
	Required    []string         `json:"required"`
	ConflictKey string           `json:"conflictKey,omitempty"`
	Notes       []string         `json:"notes"`
}

// handleImport runs one importer call.
//
// The body is either JSON {table, csvContent, batchSize, lineOffset} or,
// with Content-Type text/csv, the raw payload with the other fields in the
// query string.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxPayloadBytes)

	req, err := decodeImportRequest(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	ctx, cancel := context.WithTimeout(importContext(r), s.cfg.Import.Timeout)
	defer cancel()

	if err := s.limiter.Acquire(ctx); err != nil {
		w.Header().Set("Retry-After", strconv.Itoa(max(1, int(s.cfg.Import.MaxWaitTime/time.Second))))
		respondError(w, r, err, http.StatusTooManyRequests)
		return
	}
	defer s.limiter.Release()

	result, err := s.importer.Import(ctx, req)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, result)
}

func decodeImportRequest(r *http.Request) (core.ImportRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "text/csv" || mediaType == "text/plain" {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return core.ImportRequest{}, readError(err)
		}
		req := core.ImportRequest{
			Table:      r.URL.Query().Get("table"),
			CSVContent: string(body),
		}
		for name, dst := range map[string]*int{"batchSize": &req.BatchSize, "lineOffset": &req.LineOffset} {
			v := r.URL.Query().Get(name)
			if v == "" {
				continue
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return core.ImportRequest{}, fmt.Errorf("%w: %s %q", core.ErrInvalidBody, name, v)
			}
			*dst = n
		}
		return req, nil
	}

	var req core.ImportRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		return core.ImportRequest{}, readError(err)
	}
	return req, nil
}

// readError keeps MaxBytesError visible and marks everything else as a bad body.
func readError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("request body too large: %w", err)
	}
	return fmt.Errorf("%w: %v", core.ErrInvalidBody, err)
}

// handleListTables lists every importable table with its fields.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	defs := tables.All()
	out := make([]tableInfo, 0, len(defs))
	for _, def := range defs {
		out = append(out, tableInfo{
			Name:        def.Table.String(),
			Label:       def.Label,
			Fields:      def.Fields,
			Required:    def.Required(),
			ConflictKey: def.ConflictKey,
			Notes:       tables.TemplateNotes(def),
		})
	}
	writeJSON(w, r, out)
}

// handleTemplate downloads the CSV template for one table.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table")
	t, ok := core.ParseTable(name)
	if !ok {
		respondError(w, r, fmt.Errorf("%w: %q", core.ErrUnknownTable, name), http.StatusNotFound)
		return
	}
	def, ok := tables.Definition(t)
	if !ok {
		respondError(w, r, fmt.Errorf("%w: %q", core.ErrUnknownTable, name), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_template.csv"`, t))
	if _, err := io.WriteString(w, tables.Template(def)); err != nil {
		logging.FromContext(r.Context()).Warn("template write failed", "table", t.String(), "error", err)
	}
}

// handleImportHistory lists recent import runs, optionally for one table.
func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, r, fmt.Errorf("%w: limit %q", core.ErrInvalidBody, v), http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := s.importer.History(r.Context(), r.URL.Query().Get("table"), limit)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if runs == nil {
		runs = []core.ImportRun{}
	}
	writeJSON(w, r, runs)
}

// handleHealth reports store reachability and import slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := struct {
		Status  string                   `json:"status"`
		Store   string                   `json:"store"`
		Imports core.ImportLimiterStatus `json:"imports"`
	}{Status: "ok", Store: "ok", Imports: s.limiter.Status()}

	code := http.StatusOK
	if err := s.importer.Ping(ctx); err != nil {
		logging.FromContext(r.Context()).Warn("health check: store unreachable", "error", err)
		status.Status, status.Store = "degraded", "unavailable"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(status)
}
