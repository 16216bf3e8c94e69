package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aioutlet/admin-service/internal/api/apierror"
	"github.com/aioutlet/admin-service/internal/api/middleware"
	"github.com/aioutlet/admin-service/internal/core/domain"
	"github.com/aioutlet/admin-service/internal/core/validation"
)

// caller returns the identity and bearer token attached by Authenticate.
// Both must be present: their absence means the route was mounted without
// the auth middleware, which is a wiring bug reported as 401.
func caller(c echo.Context) (*domain.Identity, string, error) {
	identity := middleware.IdentityFrom(c)
	token := middleware.TokenFrom(c)
	if identity == nil || token == "" {
		return nil, "", domain.ErrUnauthorized
	}
	return identity, token, nil
}

// userIDParam returns the :id path parameter in canonical lowercase form, or
// writes the 400 response and returns ok=false when it is not a valid ObjectID.
func userIDParam(c echo.Context) (id string, ok bool, err error) {
	id = c.Param("id")
	if !validation.IsValidObjectID(id) {
		return "", false, apierror.BadRequest(c, "Invalid user ID")
	}
	return strings.ToLower(id), true, nil
}

// isSelf reports whether id names the caller. ObjectIDs are hex, so case is
// not significant.
func isSelf(identity *domain.Identity, id string) bool {
	return strings.EqualFold(identity.ID, id)
}
