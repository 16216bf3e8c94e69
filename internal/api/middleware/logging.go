package middleware

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/aioutlet/admin-service/internal/pkg/reqctx"
)

// RequestLogger writes one access log entry per request. Errors are logged by
// the error handler, so only the status is recorded here.
func RequestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		Skipper:      skipOperational,
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Warn()
			}
			ev = ev.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("user_agent", v.UserAgent).
				Str("correlation_id", CorrelationID(c))
			if tr, ok := reqctx.TraceFrom(c.Request().Context()); ok {
				ev = ev.Str("trace_id", tr.TraceID).Str("span_id", tr.SpanID)
			}
			if id := IdentityFrom(c); id != nil {
				ev = ev.Str("user_id", id.ID)
			}
			ev.Msg("request")
			return nil
		},
	})
}
