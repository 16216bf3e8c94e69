// Package reqctx carries per-request tracing values through context.Context
// so that infrastructure clients can forward them without depending on echo.
package reqctx

import (
	"context"
	"fmt"
	"regexp"
)

type ctxKey int

const (
	correlationIDKey ctxKey = iota
	traceKey
)

// Header names shared by the middleware and the upstream clients.
const (
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderTraceParent   = "traceparent"
)

// Trace is the parsed W3C trace context of the inbound request.
type Trace struct {
	TraceID string
	SpanID  string
	Flags   string
}

// TraceParent renders the trace back into a traceparent header value.
func (t Trace) TraceParent() string {
	flags := t.Flags
	if flags == "" {
		flags = "01"
	}
	return fmt.Sprintf("00-%s-%s-%s", t.TraceID, t.SpanID, flags)
}

var traceParentRe = regexp.MustCompile(`^([0-9a-f]{2})-([0-9a-f]{32})-([0-9a-f]{16})-([0-9a-f]{2})$`)

// ParseTraceParent parses a version 00 traceparent header. All-zero trace or
// span ids are invalid.
func ParseTraceParent(header string) (Trace, bool) {
	m := traceParentRe.FindStringSubmatch(header)
	if m == nil || m[1] == "ff" {
		return Trace{}, false
	}
	if m[2] == "00000000000000000000000000000000" || m[3] == "0000000000000000" {
		return Trace{}, false
	}
	return Trace{TraceID: m[2], SpanID: m[3], Flags: m[4]}, true
}

func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationID returns the request's correlation id or "".
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

func WithTrace(ctx context.Context, t Trace) context.Context {
	return context.WithValue(ctx, traceKey, t)
}

// TraceFrom returns the trace stored in ctx, if any.
func TraceFrom(ctx context.Context) (Trace, bool) {
	t, ok := ctx.Value(traceKey).(Trace)
	return t, ok
}
