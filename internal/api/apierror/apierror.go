// Package apierror renders the JSON error envelope shared by handlers,
// middleware and the central error handler:
//
//	{"error": {"code": "...", "message": "...", "details": ..., "traceId": "..."}}
package apierror

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aioutlet/admin-service/internal/pkg/reqctx"
)

// Error codes.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeRateLimited  = "RATE_LIMITED"
	CodeUpstream     = "UPSTREAM_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
)

type Detail struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Details any     `json:"details"`
	TraceID *string `json:"traceId"`
}

type Body struct {
	Error Detail `json:"error"`
}

// New builds the envelope for c, attaching the trace id when one is known.
func New(c echo.Context, code, message string, details any) Body {
	d := Detail{Code: code, Message: message, Details: details}
	if t, ok := reqctx.TraceFrom(c.Request().Context()); ok {
		d.TraceID = &t.TraceID
	}
	return Body{Error: d}
}

// Write sends the envelope with status.
func Write(c echo.Context, status int, code, message string, details any) error {
	return c.JSON(status, New(c, code, message, details))
}

// CodeForStatus picks the code used when only an HTTP status is known.
func CodeForStatus(status int) string {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return CodeValidation
	case status == http.StatusUnauthorized:
		return CodeUnauthorized
	case status == http.StatusForbidden:
		return CodeForbidden
	case status == http.StatusNotFound, status == http.StatusMethodNotAllowed:
		return CodeNotFound
	case status == http.StatusTooManyRequests:
		return CodeRateLimited
	case status == http.StatusRequestEntityTooLarge:
		return CodeValidation
	default:
		return CodeInternal
	}
}

func BadRequest(c echo.Context, message string) error {
	return Write(c, http.StatusBadRequest, CodeValidation, message, nil)
}

func Unauthorized(c echo.Context, message string) error {
	return Write(c, http.StatusUnauthorized, CodeUnauthorized, message, nil)
}

func Forbidden(c echo.Context, message string, details any) error {
	return Write(c, http.StatusForbidden, CodeForbidden, message, details)
}
