package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/aioutlet/admin-service/internal/api/apierror"
	"github.com/aioutlet/admin-service/internal/api/middleware"
	"github.com/aioutlet/admin-service/internal/core/domain"
	"github.com/aioutlet/admin-service/internal/pkg/reqctx"
)

// resolved is what the client is told about an error.
type resolved struct {
	status  int
	code    string
	message string
	details any
}

// panicError is a value recovered from a panicking handler.
type panicError struct {
	err   error
	stack []byte
}

func (p *panicError) Error() string { return "panic: " + p.err.Error() }

func (p *panicError) Unwrap() error { return p.err }

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs every error once with request context and stack.
//   - Renders the standard envelope without leaking internal details.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		r := resolveError(err)
		logError(log, c, err, r)

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(r.status)
			return
		}
		_ = apierror.Write(c, r.status, r.code, r.message, r.details)
	}
}

func resolveError(err error) resolved {
	// Echo's own errors (routing 404/405, body limit, bind failures).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := fmt.Sprintf("%v", he.Message)
		if he.Code >= http.StatusInternalServerError {
			msg = http.StatusText(he.Code)
		}
		return resolved{status: he.Code, code: apierror.CodeForStatus(he.Code), message: msg}
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return resolved{status: http.StatusBadRequest, code: apierror.CodeValidation, message: verr.Message}
	}

	var uerr *domain.UpstreamError
	if errors.As(err, &uerr) {
		return resolveUpstream(uerr)
	}

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return resolved{status: http.StatusUnauthorized, code: apierror.CodeUnauthorized, message: "Unauthorized"}
	case errors.Is(err, domain.ErrForbidden):
		return resolved{status: http.StatusForbidden, code: apierror.CodeForbidden, message: "Forbidden"}
	}

	return resolved{status: http.StatusInternalServerError, code: apierror.CodeInternal, message: "Internal server error"}
}

// resolveUpstream keeps the upstream status. Client errors carry the upstream
// message; server errors and transport failures get a generic one.
func resolveUpstream(uerr *domain.UpstreamError) resolved {
	status := uerr.StatusCode
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	msg := "Upstream service error"
	if status < 500 && uerr.Message != "" {
		msg = uerr.Message
	}
	return resolved{
		status:  status,
		code:    apierror.CodeUpstream,
		message: msg,
		details: map[string]string{"service": uerr.Service},
	}
}

func logError(log zerolog.Logger, c echo.Context, err error, r resolved) {
	ev := log.Warn()
	if r.status >= http.StatusInternalServerError {
		ev = log.Error().Stack()
	}
	ev = ev.
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Int("status", r.status).
		Str("code", r.code).
		Str("correlation_id", middleware.CorrelationID(c))
	if tr, ok := reqctx.TraceFrom(c.Request().Context()); ok {
		ev = ev.Str("trace_id", tr.TraceID)
	}
	if id := middleware.IdentityFrom(c); id != nil {
		ev = ev.Str("user_id", id.ID)
	}
	var pe *panicError
	if errors.As(err, &pe) {
		ev = ev.Bytes("panic_stack", pe.stack)
	}
	ev.Msg("request failed")
}
