package ports

import (
	"context"

	"github.com/aioutlet/admin-service/internal/core/domain"
)

// AuthService verifies bearer tokens and enforces role membership.
type AuthService interface {
	Verify(ctx context.Context, token string) (*domain.Identity, error)
	Authorize(identity *domain.Identity, required ...domain.Role) error
}
