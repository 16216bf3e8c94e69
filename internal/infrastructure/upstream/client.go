// Package upstream holds the HTTP clients for the platform services the
// admin gateway talks to. Every operation issues exactly one request: no
// retries, no caching.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/aioutlet/admin-service/internal/core/domain"
	"github.com/aioutlet/admin-service/internal/pkg/metrics"
	"github.com/aioutlet/admin-service/internal/pkg/reqctx"
)

const (
	DefaultTimeout = 10 * time.Second

	// maxErrorBody bounds how much of a failed response is read for its message.
	maxErrorBody = 64 << 10
)

// Client is the shared transport of one upstream service.
type Client struct {
	service string
	baseURL string
	timeout time.Duration
	http    *http.Client
	log     zerolog.Logger
}

// NewClient builds a client for service rooted at baseURL. A non-positive
// timeout falls back to DefaultTimeout.
func NewClient(service, baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    &http.Client{},
		log:     log.With().Str("upstream", service).Logger(),
	}
}

// Service returns the logical name of the upstream.
func (c *Client) Service() string { return c.service }

// call describes one outbound request.
type call struct {
	op     string
	method string
	path   string
	target string // resource id, logged on failure
	token  string
	body   any
}

// do executes cl and returns the raw response body of a 2xx answer.
// The request is bound to ctx and additionally capped by the client timeout.
func (c *Client) do(ctx context.Context, cl call) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s request", cl.op)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, reqBody)
	if err != nil {
		return nil, errors.Wrapf(err, "build %s request", cl.op)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}
	if id := reqctx.CorrelationID(ctx); id != "" {
		req.Header.Set(reqctx.HeaderCorrelationID, id)
	}
	if tr, ok := reqctx.TraceFrom(ctx); ok {
		req.Header.Set(reqctx.HeaderTraceParent, tr.TraceParent())
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues(c.service, cl.op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(c.service, cl.op, "transport_error").Inc()
		uerr := &domain.UpstreamError{
			Service:   c.service,
			Operation: cl.op,
			Message:   "upstream unreachable",
			Err:       errors.Wrapf(err, "%s %s", cl.method, cl.path),
		}
		c.logFailure(ctx, cl, uerr)
		return nil, uerr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.UpstreamRequestsTotal.WithLabelValues(c.service, cl.op, "http_error").Inc()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		uerr := &domain.UpstreamError{
			Service:    c.service,
			Operation:  cl.op,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw, resp.StatusCode),
		}
		c.logFailure(ctx, cl, uerr)
		return nil, uerr
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(c.service, cl.op, "transport_error").Inc()
		uerr := &domain.UpstreamError{
			Service:   c.service,
			Operation: cl.op,
			Message:   "failed to read upstream response",
			Err:       errors.Wrap(err, "read response body"),
		}
		c.logFailure(ctx, cl, uerr)
		return nil, uerr
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(c.service, cl.op, "success").Inc()
	return raw, nil
}

func (c *Client) logFailure(ctx context.Context, cl call, err *domain.UpstreamError) {
	ev := c.log.Error().
		Err(err).
		Str("operation", cl.op).
		Int("status", err.StatusCode)
	if cl.target != "" {
		ev = ev.Str("target_id", cl.target)
	}
	if id := reqctx.CorrelationID(ctx); id != "" {
		ev = ev.Str("correlation_id", id)
	}
	ev.Msg("upstream call failed")
}

// Ping calls the upstream's /health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, call{op: "health", method: http.MethodGet, path: "/health"})
	return err
}

// errorMessage pulls a human readable message out of an error body. It
// understands {"message"}, {"error":"..."} and {"error":{"message"}}.
func errorMessage(raw []byte, status int) string {
	var body struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		var s string
		if json.Unmarshal(body.Error, &s) == nil && s != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
	}
	return http.StatusText(status)
}

// decodeList accepts a bare JSON array or an envelope {"data": [...]}.
func decodeList[T any](raw []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []T{}, nil
	}

	var items []T
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, errors.Wrap(err, "decode list")
		}
		return items, nil
	}

	var env struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, errors.Wrap(err, "decode list envelope")
	}
	if env.Data == nil {
		return []T{}, nil
	}
	return env.Data, nil
}

// list fetches path and decodes it as a list of T. Decoding problems are
// reported as upstream failures.
func list[T any](ctx context.Context, c *Client, op, path, token string) ([]T, error) {
	raw, err := c.do(ctx, call{op: op, method: http.MethodGet, path: path, token: token})
	if err != nil {
		return nil, err
	}
	items, err := decodeList[T](raw)
	if err != nil {
		uerr := &domain.UpstreamError{Service: c.service, Operation: op, Message: "malformed upstream response", Err: err}
		c.logFailure(ctx, call{op: op}, uerr)
		return nil, uerr
	}
	return items, nil
}
