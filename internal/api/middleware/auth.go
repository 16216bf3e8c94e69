package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/aioutlet/admin-service/internal/api/apierror"
	"github.com/aioutlet/admin-service/internal/core/domain"
	"github.com/aioutlet/admin-service/internal/core/ports"
	"github.com/aioutlet/admin-service/internal/pkg/metrics"
)

const (
	identityKey = "identity"
	tokenKey    = "token"
)

var (
	errMissingHeader = errors.New("missing authorization header")
	errBadScheme     = errors.New("authorization header must use the Bearer scheme")
	errMissingToken  = errors.New("missing token")
)

// IdentityFrom returns the identity attached by Authenticate or OptionalAuth, or nil.
func IdentityFrom(c echo.Context) *domain.Identity {
	id, _ := c.Get(identityKey).(*domain.Identity)
	return id
}

// TokenFrom returns the verified bearer token of the request, or "".
func TokenFrom(c echo.Context) string {
	tok, _ := c.Get(tokenKey).(string)
	return tok
}

// SetIdentity attaches a verified identity and its token to the request.
func SetIdentity(c echo.Context, identity *domain.Identity, token string) {
	c.Set(identityKey, identity)
	c.Set(tokenKey, token)
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", errMissingHeader
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errBadScheme
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errMissingToken
	}
	return token, nil
}

// Authenticate verifies the bearer token and attaches the caller's Identity.
// Every failure answers 401 before any handler runs; an unavailable signing
// secret is a server fault and goes to the error handler.
func Authenticate(auth ports.AuthService, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				metrics.AuthFailuresTotal.WithLabelValues("missing_token").Inc()
				return apierror.Unauthorized(c, "Unauthorized: "+err.Error())
			}

			identity, err := auth.Verify(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrSecretUnavailable) {
					metrics.AuthFailuresTotal.WithLabelValues("secret_unavailable").Inc()
					return err
				}
				metrics.AuthFailuresTotal.WithLabelValues("invalid_token").Inc()
				log.Debug().Str("path", c.Path()).Msg("rejected bearer token")
				return apierror.Unauthorized(c, "Unauthorized: invalid or expired token")
			}

			SetIdentity(c, identity, token)
			return next(c)
		}
	}
}

// OptionalAuth attaches an Identity when the request carries a valid token
// and otherwise lets the request through anonymously.
func OptionalAuth(auth ports.AuthService, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				return next(c)
			}

			identity, err := auth.Verify(c.Request().Context(), token)
			if err != nil {
				log.Debug().Err(err).Msg("optional auth: continuing anonymously")
				return next(c)
			}

			SetIdentity(c, identity, token)
			return next(c)
		}
	}
}
