package reqctx

import (
	"context"
	"testing"
)

func TestParseTraceParent(t *testing.T) {
	cases := []struct {
		name   string
		header string
		ok     bool
	}{
		{"valid", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", true},
		{"empty", "", false},
		{"uppercase", "00-4BF92F3577B34DA6A3CE929D0E0E4736-00F067AA0BA902B7-01", false},
		{"short trace id", "00-4bf92f35-00f067aa0ba902b7-01", false},
		{"zero trace id", "00-00000000000000000000000000000000-00f067aa0ba902b7-01", false},
		{"zero span id", "00-4bf92f3577b34da6a3ce929d0e0e4736-0000000000000000-01", false},
		{"invalid version", "ff-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr, ok := ParseTraceParent(tc.header)
			if ok != tc.ok {
				t.Fatalf("ParseTraceParent(%q) ok = %v, want %v", tc.header, ok, tc.ok)
			}
			if ok && tr.TraceParent() != tc.header {
				t.Fatalf("round trip: got %q, want %q", tr.TraceParent(), tc.header)
			}
		})
	}
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	if CorrelationID(ctx) != "" {
		t.Fatalf("expected empty correlation id")
	}
	if _, ok := TraceFrom(ctx); ok {
		t.Fatalf("expected no trace")
	}

	ctx = WithCorrelationID(ctx, "cid-1")
	ctx = WithTrace(ctx, Trace{TraceID: "a", SpanID: "b"})
	if CorrelationID(ctx) != "cid-1" {
		t.Fatalf("unexpected correlation id %q", CorrelationID(ctx))
	}
	tr, ok := TraceFrom(ctx)
	if !ok || tr.TraceID != "a" || tr.TraceParent() != "00-a-b-01" {
		t.Fatalf("unexpected trace %+v", tr)
	}
}
