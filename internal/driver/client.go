package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/leaddesk/internal/core"
)

// APIKeyHeader carries the shared key the server's /api routes check.
const APIKeyHeader = "X-API-Key"

// maxErrorBody bounds how much of a failed response is read.
const maxErrorBody = 64 << 10

// Throttled calls are resent after the server's Retry-After, within these bounds.
const (
	DefaultRetries   = 5
	defaultRetryWait = time.Second
	maxRetryWait     = time.Minute
)

// Client calls a remote importer over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	retries int
	wait    func(ctx context.Context, d time.Duration) error
}

// NewClient returns a Client for the server at baseURL. timeout bounds each
// chunk call; zero means two minutes.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		retries: DefaultRetries,
		wait:    sleep,
	}
}

// SetRetries sets how many times a 429 answer is retried before the chunk
// call fails. Negative values count as zero.
func (c *Client) SetRetries(n int) {
	c.retries = max(0, n)
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Err     string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`

	// RetryAfter is the server's Retry-After hint, zero when absent.
	RetryAfter time.Duration `json:"-"`
}

func (e *APIError) Error() string {
	msg := e.Err
	if msg == "" {
		msg = e.Message
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("server returned %d: %s (code %s)", e.Status, msg, e.Code)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, msg)
}

// Unwrap maps the server's error code back to the matching sentinel so
// errors.Is works across the wire.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "REQ001":
		return core.ErrMissingTable
	case "REQ002":
		return core.ErrMissingPayload
	case "REQ003":
		return core.ErrUnknownTable
	case "REQ004":
		return core.ErrInvalidBody
	case "DB004":
		return core.ErrStoreUnavailable
	case "IMP001":
		return core.ErrTooManyImports
	case "RATE001":
		return core.ErrRateLimited
	}
	return nil
}

// Import posts one chunk to POST /api/import. A 429 answer, whether from the
// per-client rate limit or the import slots, is retried after the server's
// Retry-After until the retries run out.
func (c *Client) Import(ctx context.Context, req core.ImportRequest) (core.ImportResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return core.ImportResult{}, fmt.Errorf("encode import request: %w", err)
	}

	for attempt := 0; ; attempt++ {
		res, err := c.post(ctx, body)

		var apiErr *APIError
		if err == nil || !errors.As(err, &apiErr) || apiErr.Status != http.StatusTooManyRequests || attempt >= c.retries {
			return res, err
		}

		d := apiErr.RetryAfter
		if d <= 0 {
			d = defaultRetryWait
		}
		if werr := c.wait(ctx, min(d, maxRetryWait)); werr != nil {
			return core.ImportResult{}, fmt.Errorf("%w (gave up waiting: %w)", err, werr)
		}
	}
}

func (c *Client) post(ctx context.Context, body []byte) (core.ImportResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/import", bytes.NewReader(body))
	if err != nil {
		return core.ImportResult{}, fmt.Errorf("build import request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set(APIKeyHeader, c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return core.ImportResult{}, fmt.Errorf("post import: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return core.ImportResult{}, decodeAPIError(resp)
	}

	var res core.ImportResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return core.ImportResult{}, fmt.Errorf("decode import result: %w", err)
	}
	return res, nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{
		Status:     resp.StatusCode,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err := json.Unmarshal(raw, apiErr); err != nil {
		apiErr.Err = strings.TrimSpace(string(raw))
	}
	return apiErr
}

// parseRetryAfter reads a Retry-After value given as delay-seconds or as an
// HTTP date. Anything unreadable is zero.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(max(0, secs)) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		return max(0, at.Sub(now))
	}
	return 0
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
