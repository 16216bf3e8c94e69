package ports

import (
	"context"

	"github.com/aioutlet/admin-service/internal/core/domain"
)

// DashboardService builds the admin dashboard read models.
type DashboardService interface {
	GetStats(ctx context.Context, token string) (*domain.DashboardStats, error)
	RecentOrders(ctx context.Context, token string, limit int) ([]domain.RecentOrder, error)
	RecentUsers(ctx context.Context, token string, limit int) ([]domain.RecentUser, error)
}
