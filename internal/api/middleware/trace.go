package middleware

import (
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/aioutlet/admin-service/internal/pkg/reqctx"
)

const headerTraceID = "X-Trace-ID"

// Correlation reads X-Correlation-ID, generating a UUID when absent, echoes it
// on the response and stores it in the request context.
func Correlation() echo.MiddlewareFunc {
	return echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		TargetHeader: reqctx.HeaderCorrelationID,
		Generator:    func() string { return uuid.NewString() },
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(reqctx.WithCorrelationID(req.Context(), id)))
		},
	})
}

// CorrelationID returns the id assigned by Correlation.
func CorrelationID(c echo.Context) string {
	return reqctx.CorrelationID(c.Request().Context())
}

// TraceContext continues the W3C trace of the inbound traceparent header, or
// starts a new one, and exposes it to logs, error bodies and upstream calls.
func TraceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			tr, ok := reqctx.ParseTraceParent(req.Header.Get(reqctx.HeaderTraceParent))
			if !ok {
				tr = reqctx.Trace{TraceID: newTraceID(), Flags: "01"}
			}
			// this service's span
			tr.SpanID = newSpanID()

			c.SetRequest(req.WithContext(reqctx.WithTrace(req.Context(), tr)))
			c.Response().Header().Set(reqctx.HeaderTraceParent, tr.TraceParent())
			c.Response().Header().Set(headerTraceID, tr.TraceID)
			return next(c)
		}
	}
}

func newTraceID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

func newSpanID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:8])
}
