package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/aioutlet/admin-service/internal/core/domain"
	"github.com/aioutlet/admin-service/internal/core/ports"
)

const adminUsersPath = "/api/admin/users"

var (
	_ ports.UserClient = (*UserClient)(nil)
	_ ports.UserLister = (*UserClient)(nil)
)

// UserClient proxies admin user management to the user-service. Responses
// are passed through as raw JSON.
type UserClient struct {
	*Client
}

func NewUserClient(baseURL string, timeout time.Duration, log zerolog.Logger) *UserClient {
	return &UserClient{Client: NewClient("user", baseURL, timeout, log)}
}

func userPath(id string) string {
	return adminUsersPath + "/" + url.PathEscape(id)
}

func (c *UserClient) FetchAllUsers(ctx context.Context, token string) (json.RawMessage, error) {
	return c.do(ctx, call{op: "fetch_all_users", method: http.MethodGet, path: adminUsersPath, token: token})
}

func (c *UserClient) FetchUserByID(ctx context.Context, id, token string) (json.RawMessage, error) {
	return c.do(ctx, call{op: "fetch_user", method: http.MethodGet, path: userPath(id), target: id, token: token})
}

func (c *UserClient) UpdateUserByID(ctx context.Context, id string, payload domain.UpdatePayload, token string) (json.RawMessage, error) {
	return c.do(ctx, call{op: "update_user", method: http.MethodPatch, path: userPath(id), target: id, token: token, body: payload})
}

func (c *UserClient) RemoveUserByID(ctx context.Context, id, token string) error {
	_, err := c.do(ctx, call{op: "remove_user", method: http.MethodDelete, path: userPath(id), target: id, token: token})
	return err
}

// ListUsers decodes the admin user list for the dashboard.
func (c *UserClient) ListUsers(ctx context.Context, token string) ([]domain.User, error) {
	return list[domain.User](ctx, c.Client, "list_users", adminUsersPath, token)
}
