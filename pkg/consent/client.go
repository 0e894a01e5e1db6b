// Package consent provides a client for the assent consent-management
// platform.
//
// The client translates four semantic operations into authenticated HTTP
// calls and normalizes responses into typed results:
//
//   - ConsentStatus: the aggregate consent view for one user
//   - HasConsent: a boolean convenience check for one user/purpose pair
//   - Purposes: the full purpose catalog, pagination followed transparently
//   - CheckBatch: concurrent fan-out of status lookups that never aborts
//     on an individual failure
//
// Every operation performs fresh network I/O. Nothing is cached and nothing
// is retried; retry policy belongs to the caller. Failures surface as
// *Error values classified by Kind, so callers can distinguish "no consent"
// from "service unavailable".
package consent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"assent/internal/platform/privacy"
	"assent/pkg/consent/tracer"
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Operation labels for metrics.
const (
	opStatus   = "status"
	opCheck    = "check"
	opPurposes = "purposes"
	opBatch    = "batch"
)

// Client issues authenticated requests against a consent platform and
// normalizes responses into typed results.
//
// Configuration is captured at construction and never mutated afterwards,
// so a single Client is safe for concurrent use across goroutines.
type Client struct {
	baseURL          string
	apiKey           string
	userAgent        string
	timeout          time.Duration
	debug            bool
	httpClient       HTTPDoer
	logger           *slog.Logger
	metrics          *Metrics
	tracer           tracer.Tracer
	batchConcurrency int
}

// New creates a consent client for the given platform base URL and API key.
// Both arguments are required; a trailing slash on the base URL is
// normalized away.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, newError(KindInvalidInput, "New", "base URL is required", nil)
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, newError(KindInvalidInput, "New", "base URL must be absolute (http:// or https://)", err)
	}
	if apiKey == "" {
		return nil, newError(KindInvalidInput, "New", "API key is required", nil)
	}

	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{},
		tracer:     tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("consent client configured",
			slog.String("base_url", c.baseURL),
			slog.String("api_key", privacy.RedactSecret(c.apiKey)),
			slog.Duration("timeout", c.timeout),
			slog.Int("batch_concurrency", c.batchConcurrency),
		)
	}
	return c, nil
}

// ConsentStatus fetches the aggregate consent view for the given email.
//
// The returned status reports whether the user holds at least one active
// consent and lists the individual records in the order the platform
// returned them. An email unknown to the platform is not an error: the
// platform reports it as a status without consents.
func (c *Client) ConsentStatus(ctx context.Context, email string) (*Status, error) {
	const op = "ConsentStatus"

	email = strings.TrimSpace(email)
	if email == "" {
		return nil, newError(KindInvalidInput, op, "email is required", nil)
	}

	ctx, span := c.tracer.Start(ctx, tracer.SpanStatus,
		tracer.String(tracer.AttrEmailHash, tracer.HashEmail(email)),
	)
	start := time.Now()

	status, err := c.fetchStatus(ctx, op, email)
	c.observe(opStatus, start, err)
	if err != nil {
		span.End(err)
		return nil, err
	}

	span.SetAttributes(
		tracer.Bool(tracer.AttrHasConsent, status.HasConsent),
		tracer.Int64(tracer.AttrConsentCount, int64(len(status.Consents))),
	)
	span.End(nil)
	return status, nil
}

// HasConsent reports whether the user currently holds an active consent
// for the given purpose.
//
// The answer is derived from ConsentStatus so it always agrees with the
// aggregate view: true iff some returned record matches purposeUUID and
// has not expired at call time. A record expiring exactly at call time no
// longer counts. "No consent" is (false, nil), never an error; errors are
// the same classes ConsentStatus raises.
func (c *Client) HasConsent(ctx context.Context, email, purposeUUID string) (bool, error) {
	const op = "HasConsent"

	email = strings.TrimSpace(email)
	if email == "" {
		return false, newError(KindInvalidInput, op, "email is required", nil)
	}
	purposeUUID = strings.TrimSpace(purposeUUID)
	if purposeUUID == "" {
		return false, newError(KindInvalidInput, op, "purpose UUID is required", nil)
	}

	ctx, span := c.tracer.Start(ctx, tracer.SpanCheck,
		tracer.String(tracer.AttrEmailHash, tracer.HashEmail(email)),
		tracer.String(tracer.AttrPurposeUUID, purposeUUID),
	)
	start := time.Now()

	status, err := c.fetchStatus(ctx, op, email)
	c.observe(opCheck, start, err)
	if err != nil {
		span.End(err)
		return false, err
	}

	granted := status.Grants(purposeUUID, time.Now())
	span.SetAttributes(tracer.Bool(tracer.AttrHasConsent, granted))
	span.End(nil)
	return granted, nil
}

// fetchStatus performs the GET /consent/status round-trip shared by
// ConsentStatus and HasConsent.
func (c *Client) fetchStatus(ctx context.Context, op, email string) (*Status, error) {
	query := url.Values{}
	query.Set("email", email)
	requestURL := fmt.Sprintf("%s/consent/status?%s", c.baseURL, query.Encode())

	code, body, _, err := c.get(ctx, op, "/consent/status", requestURL)
	if err != nil {
		return nil, err
	}
	if respErr := classifyResponse(op, code, body); respErr != nil {
		return nil, respErr
	}

	var wire statusResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &Error{
			Kind:    KindContract,
			Op:      op,
			Message: "failed to parse response",
			Status:  code,
			Body:    string(body),
			Err:     err,
		}
	}
	return wire.toStatus(), nil
}

// get executes one authenticated GET request and returns the status code,
// body and headers. Only transport-level failures are classified here;
// callers map status codes through classifyResponse.
func (c *Client) get(ctx context.Context, op, route, requestURL string) (int, []byte, http.Header, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return 0, nil, nil, newError(KindInvalidInput, op, "failed to create request", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return 0, nil, nil, newError(KindNetwork, op, "request timeout", err)
		}
		return 0, nil, nil, newError(KindNetwork, op, "failed to execute request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, newError(KindNetwork, op, "failed to read response body", err)
	}

	c.debugLog(ctx, "consent platform response",
		slog.String("op", op),
		slog.String("route", route),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return resp.StatusCode, body, resp.Header, nil
}

// classifyResponse maps a non-success status code onto the error taxonomy.
// Returns nil for 2xx. The platform error envelope supplies the message
// when the body carries one.
func classifyResponse(op string, status int, body []byte) *Error {
	if status >= 200 && status < 300 {
		return nil
	}

	message := http.StatusText(status)
	var envelope errorResponse
	if json.Unmarshal(body, &envelope) == nil {
		if envelope.Description != "" {
			message = envelope.Description
		} else if envelope.Code != "" {
			message = envelope.Code
		}
	}

	kind := KindAPI
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = KindAuth
	case http.StatusNotFound:
		kind = KindNotFound
	}

	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Status:  status,
		Body:    string(body),
	}
}

// observe records one operation outcome when metrics are attached.
func (c *Client) observe(operation string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
	}
	c.metrics.IncrementRequests(operation, outcome)
	c.metrics.ObserveRequestDuration(operation, time.Since(start).Seconds())
}

// debugLog emits one diagnostic line when debug mode is on and a logger
// is configured.
func (c *Client) debugLog(ctx context.Context, msg string, args ...any) {
	if !c.debug || c.logger == nil {
		return
	}
	c.logger.DebugContext(ctx, msg, args...)
}
