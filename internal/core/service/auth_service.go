package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/aioutlet/admin-service/internal/core/domain"
	"github.com/aioutlet/admin-service/internal/core/ports"
)

// DefaultSecretName is the secret holding the HMAC key shared with the auth service.
const DefaultSecretName = "JWT_SECRET"

// AuthOptions tunes token verification.
type AuthOptions struct {
	// SecretName is resolved through the SecretResolver. Defaults to DefaultSecretName.
	SecretName string
	// Issuer and Audience are enforced only when non-empty.
	Issuer   string
	Audience string
}

// tokenClaims is the payload issued by the platform auth service.
type tokenClaims struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// AuthService verifies bearer tokens and checks role membership.
type AuthService struct {
	secrets ports.SecretResolver
	opts    AuthOptions
	log     zerolog.Logger

	mu  sync.RWMutex
	key []byte
}

func NewAuthService(secrets ports.SecretResolver, opts AuthOptions, log zerolog.Logger) *AuthService {
	if opts.SecretName == "" {
		opts.SecretName = DefaultSecretName
	}
	return &AuthService{secrets: secrets, opts: opts, log: log}
}

// Verify checks signature, expiry and the optional issuer/audience, and builds
// the caller's Identity. Every verification problem collapses to ErrUnauthorized.
func (s *AuthService) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	key, err := s.signingKey(ctx)
	if err != nil {
		return nil, err
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		}),
	}
	if s.opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(s.opts.Issuer))
	}
	if s.opts.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(s.opts.Audience))
	}

	claims := &tokenClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	}, parserOpts...)
	if err != nil || !tkn.Valid {
		s.log.Debug().Err(err).Msg("token verification failed")
		return nil, domain.ErrUnauthorized
	}

	id := claims.ID
	if id == "" {
		id = claims.Subject
	}

	roles := make([]domain.Role, 0, len(claims.Roles))
	for _, r := range claims.Roles {
		roles = append(roles, domain.Role(r))
	}

	return &domain.Identity{ID: id, Email: claims.Email, Roles: roles}, nil
}

// Authorize passes when identity holds any of the required roles.
func (s *AuthService) Authorize(identity *domain.Identity, required ...domain.Role) error {
	if identity == nil {
		return domain.ErrUnauthorized
	}
	if !identity.HasAnyRole(required...) {
		return domain.ErrForbidden
	}
	return nil
}

// signingKey returns the cached key, resolving it on first use. Concurrent
// first callers may each resolve; they all store the same value.
func (s *AuthService) signingKey(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	key := s.key
	s.mu.RUnlock()
	if key != nil {
		return key, nil
	}

	secret, err := s.secrets.Resolve(ctx, s.opts.SecretName)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %v", domain.ErrSecretUnavailable, s.opts.SecretName, err)
	}
	if secret == "" {
		return nil, domain.ErrSecretUnavailable
	}

	key = []byte(secret)
	s.mu.Lock()
	s.key = key
	s.mu.Unlock()

	s.log.Info().Str("secret", s.opts.SecretName).Msg("token signing secret resolved")
	return key, nil
}
