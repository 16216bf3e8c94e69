package ports

import (
	"context"
	"encoding/json"

	"github.com/aioutlet/admin-service/internal/core/domain"
)

// UserClient is the user-service as seen by the admin routes. Each call issues
// exactly one upstream request carrying the caller's bearer token.
// Documents are returned as the raw upstream JSON so they reach the caller unchanged.
type UserClient interface {
	FetchAllUsers(ctx context.Context, token string) (json.RawMessage, error)
	FetchUserByID(ctx context.Context, id, token string) (json.RawMessage, error)
	UpdateUserByID(ctx context.Context, id string, payload domain.UpdatePayload, token string) (json.RawMessage, error)
	RemoveUserByID(ctx context.Context, id, token string) error
}

// UserLister decodes the user list for read models such as the dashboard.
type UserLister interface {
	ListUsers(ctx context.Context, token string) ([]domain.User, error)
}
