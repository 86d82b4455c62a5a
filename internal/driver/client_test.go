package driver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JonMunkholm/leaddesk/internal/config"
	"github.com/JonMunkholm/leaddesk/internal/core"
	"github.com/JonMunkholm/leaddesk/internal/importer"
	"github.com/JonMunkholm/leaddesk/internal/metrics"
	"github.com/JonMunkholm/leaddesk/internal/store"
	"github.com/JonMunkholm/leaddesk/internal/web"
)

// recordWaits replaces the client's sleep with one that records the delay
// and pauses for pause instead.
func recordWaits(c *Client, pause time.Duration) *[]time.Duration {
	var (
		mu    sync.Mutex
		waits []time.Duration
	)
	c.wait = func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		waits = append(waits, d)
		mu.Unlock()
		return sleep(ctx, pause)
	}
	return &waits
}

func TestClient_Import(t *testing.T) {
	var got core.ImportRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/import" {
			t.Errorf("request = %s %s, want POST /api/import", r.Method, r.URL.Path)
		}
		if key := r.Header.Get(APIKeyHeader); key != "secret" {
			t.Errorf("%s = %q, want secret", APIKeyHeader, key)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(core.ImportResult{Table: "leads", Success: 2, Failed: 1, Errors: []string{"Row 3: required field phone is empty"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret", 0)
	res, err := c.Import(context.Background(), core.ImportRequest{Table: "leads", CSVContent: "name,phone\na,1", BatchSize: 50})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Success != 2 || res.Failed != 1 || len(res.Errors) != 1 {
		t.Errorf("result = %+v, want 2 ok 1 failed 1 error", res)
	}
	if got.Table != "leads" || got.BatchSize != 50 || got.CSVContent != "name,phone\na,1" {
		t.Errorf("server saw %+v", got)
	}
}

func TestClient_ErrorResponses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unknown table", http.StatusBadRequest, `{"error":"unknown table","message":"Unknown table","code":"REQ003"}`, core.ErrUnknownTable},
		{"store down", http.StatusServiceUnavailable, `{"error":"store unavailable","code":"DB004"}`, core.ErrStoreUnavailable},
		{"busy", http.StatusTooManyRequests, `{"error":"busy","code":"IMP001"}`, core.ErrTooManyImports},
		{"rate limited", http.StatusTooManyRequests, `{"error":"rate limit exceeded","code":"RATE001"}`, core.ErrRateLimited},
		{"plain text", http.StatusBadGateway, "upstream down", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "", 0)
			c.SetRetries(0)
			_, err := c.Import(context.Background(), core.ImportRequest{Table: "leads", CSVContent: "a\nb"})
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Import error = %v, want *APIError", err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", apiErr.Status, tt.status)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.want)
			}
			if tt.want == nil && apiErr.Err != tt.body {
				t.Errorf("Err = %q, want raw body %q", apiErr.Err, tt.body)
			}
		})
	}
}

// The driver runs unchanged against a remote importer.
func TestClient_WithDriver(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var req core.ImportRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(core.ImportResult{Table: req.Table, Success: SplitChunks(req.CSVContent, 1000)[0].Rows})
	}))
	defer srv.Close()

	d := New(NewClient(srv.URL, "", 0), nil, Options{ChunkSize: 2})
	sum, err := d.Run(context.Background(), core.TableVendors, payloadWithRows(6))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != 3 || sum.Success != 6 || sum.State != StateSuccess {
		t.Errorf("calls = %d summary = %+v, want 3 calls 6 ok success", calls, sum)
	}
}

func TestClient_RetriesThrottledChunks(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		// After a burst of ten, every other call is over the limit.
		if n > 10 && n%2 == 1 {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded","message":"Too many requests","code":"RATE001"}`))
			return
		}
		var req core.ImportRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(core.ImportResult{Table: req.Table, Success: SplitChunks(req.CSVContent, 1000)[0].Rows})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 0)
	waits := recordWaits(c, 0)

	sum, err := New(c, nil, Options{ChunkSize: 1}).Run(context.Background(), core.TableLeads, payloadWithRows(15))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.State != StateSuccess || sum.Success != 15 || sum.Failed != 0 {
		t.Errorf("summary = %+v, want success 15 ok", sum)
	}
	if got := calls.Load(); got != 20 {
		t.Errorf("server calls = %d, want 20", got)
	}
	if len(*waits) != 5 {
		t.Fatalf("waits = %v, want 5", *waits)
	}
	for _, d := range *waits {
		if d != 7*time.Second {
			t.Errorf("wait = %v, want Retry-After 7s", d)
		}
	}
}

func TestClient_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limit exceeded","message":"Too many requests","code":"RATE001"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 0)
	c.SetRetries(2)
	waits := recordWaits(c, 0)

	sum, err := New(c, nil, Options{ChunkSize: 5}).Run(context.Background(), core.TableLeads, payloadWithRows(5))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server calls = %d, want 3", got)
	}
	if len(*waits) != 2 || (*waits)[0] != time.Second {
		t.Errorf("waits = %v, want two of 1s", *waits)
	}
	if sum.State != StateError || sum.Failed != 5 || len(sum.Errors) != 1 {
		t.Fatalf("summary = %+v, want 5 failed with one chunk error", sum)
	}
	if msg := sum.Errors[0]; !strings.Contains(msg, "Too many requests (Code: RATE001)") {
		t.Errorf("chunk error = %q, want the rate limit message", msg)
	}
}

func TestClient_RetryWaitCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"busy","code":"IMP001"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewClient(srv.URL, "", 0)
	var waited time.Duration
	c.wait = func(ctx context.Context, d time.Duration) error {
		waited = d
		cancel()
		return sleep(ctx, d)
	}

	_, err := c.Import(ctx, core.ImportRequest{Table: "leads", CSVContent: "name\nA"})
	if !errors.Is(err, core.ErrTooManyImports) || !errors.Is(err, context.Canceled) {
		t.Errorf("Import error = %v, want busy and cancelled", err)
	}
	if waited != 30*time.Second {
		t.Errorf("wait = %v, want 30s", waited)
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"3", 3 * time.Second},
		{" 12 ", 12 * time.Second},
		{"-4", 0},
		{"Mon, 15 Jan 2024 10:00:30 GMT", 30 * time.Second},
		{"Mon, 15 Jan 2024 09:00:00 GMT", 0},
		{"soon", 0},
	}
	for _, tt := range tests {
		if got := parseRetryAfter(tt.in, now); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// A run longer than the server's import burst completes once the client
// honors Retry-After.
func TestClient_AgainstRateLimitedServer(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
		Import: config.ImportConfig{
			BatchSize: 100, MaxBatchSize: 500, MaxPayloadBytes: 1 << 20,
			MaxConcurrent: 1, MaxWaitTime: time.Second, Timeout: 10 * time.Second,
		},
		Rate: config.RateLimitConfig{Enabled: true, RequestsPerMinute: 60000, ImportLimit: 600, Burst: 1},
	}

	st, err := store.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer st.Close()
	m, err := metrics.New()
	if err != nil {
		t.Fatalf("metrics.New: %v", err)
	}
	svc := importer.New(st, importer.Options{}, m)
	srv := httptest.NewServer(web.NewServer(cfg, svc, nil, m).Router())
	defer srv.Close()

	c := NewClient(srv.URL, "", 0)
	// 600 per minute refills a token every 100ms.
	waits := recordWaits(c, 110*time.Millisecond)

	sum, err := New(c, nil, Options{ChunkSize: 1}).Run(context.Background(), core.TableVendors, payloadWithRows(6))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.State != StateSuccess || sum.Success != 6 || sum.Failed != 0 {
		t.Errorf("summary = %+v, want success 6 ok", sum)
	}
	if len(*waits) == 0 {
		t.Fatal("no call was throttled; the burst did not bind")
	}
	for _, d := range *waits {
		if d != time.Second {
			t.Errorf("wait = %v, want the server's Retry-After of 1s", d)
		}
	}
}
