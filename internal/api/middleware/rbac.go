package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/aioutlet/admin-service/internal/api/apierror"
	"github.com/aioutlet/admin-service/internal/core/domain"
	"github.com/aioutlet/admin-service/internal/core/ports"
	"github.com/aioutlet/admin-service/internal/pkg/metrics"
)

type roleDetails struct {
	Required []string `json:"required"`
	Actual   []string `json:"actual"`
}

// RequireRoles lets the request through when the authenticated identity holds
// any of roles. Outside production the 403 body lists required and actual roles.
func RequireRoles(auth ports.AuthService, production bool, roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := IdentityFrom(c)

			err := auth.Authorize(identity, roles...)
			switch {
			case err == nil:
				return next(c)
			case errors.Is(err, domain.ErrUnauthorized):
				metrics.AuthFailuresTotal.WithLabelValues("missing_token").Inc()
				return apierror.Unauthorized(c, "Unauthorized: authentication required")
			}

			metrics.AuthFailuresTotal.WithLabelValues("forbidden").Inc()
			var details any
			if !production {
				details = roleDetails{
					Required: domain.RoleNames(roles),
					Actual:   domain.RoleNames(identity.Roles),
				}
			}
			return apierror.Forbidden(c, "Forbidden: insufficient permissions", details)
		}
	}
}
