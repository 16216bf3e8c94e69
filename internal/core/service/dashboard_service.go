package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aioutlet/admin-service/internal/core/domain"
	"github.com/aioutlet/admin-service/internal/core/ports"
	"github.com/aioutlet/admin-service/internal/pkg/metrics"
)

const (
	DefaultRecentLimit       = 5
	MaxRecentLimit           = 100
	DefaultLowStockThreshold = 10
)

// Dashboard sections, also used as metric label values.
const (
	sectionUsers    = "users"
	sectionOrders   = "orders"
	sectionProducts = "products"
	sectionReviews  = "reviews"
)

// DashboardService aggregates statistics from several upstream services.
type DashboardService struct {
	users    ports.UserLister
	orders   ports.OrderLister
	products ports.ProductLister
	reviews  ports.ReviewLister

	lowStockThreshold int
	now               func() time.Time
	log               zerolog.Logger
}

func NewDashboardService(
	users ports.UserLister,
	orders ports.OrderLister,
	products ports.ProductLister,
	reviews ports.ReviewLister,
	lowStockThreshold int,
	log zerolog.Logger,
) *DashboardService {
	if lowStockThreshold <= 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	return &DashboardService{
		users:             users,
		orders:            orders,
		products:          products,
		reviews:           reviews,
		lowStockThreshold: lowStockThreshold,
		now:               time.Now,
		log:               log,
	}
}

// settle runs fn on g and stores its outcome in out. The goroutine never
// returns an error, so one failed call cannot cancel its siblings.
func settle[T any](ctx context.Context, g *errgroup.Group, fn func(context.Context) (T, error), out *domain.Result[T]) {
	g.Go(func() error {
		*out = domain.Settle(fn(ctx))
		return nil
	})
}

// GetStats calls every upstream concurrently and folds whatever succeeded.
// A failed call leaves its section zeroed; the stats are always returned.
func (s *DashboardService) GetStats(ctx context.Context, token string) (*domain.DashboardStats, error) {
	var (
		g        errgroup.Group
		users    domain.Result[[]domain.User]
		orders   domain.Result[[]domain.Order]
		products domain.Result[[]domain.Product]
		reviews  domain.Result[[]domain.Review]
	)

	settle(ctx, &g, func(ctx context.Context) ([]domain.User, error) { return s.users.ListUsers(ctx, token) }, &users)
	settle(ctx, &g, func(ctx context.Context) ([]domain.Order, error) { return s.orders.FetchAllOrders(ctx, token) }, &orders)
	settle(ctx, &g, func(ctx context.Context) ([]domain.Product, error) { return s.products.FetchAllProducts(ctx, token) }, &products)
	settle(ctx, &g, func(ctx context.Context) ([]domain.Review, error) { return s.reviews.FetchAllReviews(ctx, token) }, &reviews)
	_ = g.Wait()

	now := s.now().UTC()
	stats := &domain.DashboardStats{}

	if s.check(sectionUsers, users.Err) {
		stats.Users = foldUsers(users.Value, now)
	}
	if s.check(sectionOrders, orders.Err) {
		stats.Orders = foldOrders(orders.Value, now)
	}
	if s.check(sectionProducts, products.Err) {
		stats.Products = foldProducts(products.Value, s.lowStockThreshold)
	}
	if s.check(sectionReviews, reviews.Err) {
		stats.Reviews = foldReviews(reviews.Value, now)
	}

	s.log.Info().
		Int("total_users", stats.Users.Total).
		Int("total_orders", stats.Orders.Total).
		Int("pending_orders", stats.Orders.Pending).
		Float64("revenue", stats.Orders.Revenue).
		Msg("dashboard statistics fetched")

	return stats, nil
}

// check records a failed section and reports whether the section can be folded.
func (s *DashboardService) check(section string, err error) bool {
	if err == nil {
		return true
	}
	metrics.DashboardSectionFailuresTotal.WithLabelValues(section).Inc()
	s.log.Warn().Err(err).Str("section", section).Msg("dashboard section unavailable, using defaults")
	return false
}

// RecentOrders returns the newest orders first, at most limit of them.
func (s *DashboardService) RecentOrders(ctx context.Context, token string, limit int) ([]domain.RecentOrder, error) {
	orders, err := s.orders.FetchAllOrders(ctx, token)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	orders = orders[:clampLimit(limit, len(orders))]

	out := make([]domain.RecentOrder, len(orders))
	for i, o := range orders {
		out[i] = domain.RecentOrder{
			ID:            o.ID,
			OrderNumber:   o.OrderNumber,
			Customer:      o.CustomerName,
			CustomerEmail: o.CustomerEmail,
			Total:         o.TotalAmount,
			Status:        o.Status,
			CreatedAt:     o.CreatedAt,
		}
	}
	return out, nil
}

// RecentUsers returns the newest accounts first, at most limit of them.
func (s *DashboardService) RecentUsers(ctx context.Context, token string, limit int) ([]domain.RecentUser, error) {
	users, err := s.users.ListUsers(ctx, token)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	users = users[:clampLimit(limit, len(users))]

	out := make([]domain.RecentUser, len(users))
	for i, u := range users {
		out[i] = domain.RecentUser{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Role:      u.PrimaryRole(),
			CreatedAt: u.CreatedAt,
		}
	}
	return out, nil
}

func clampLimit(limit, n int) int {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	if limit > n {
		return n
	}
	return limit
}

func startOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// percentOf returns part/total as a percentage rounded to one decimal.
func percentOf(part, total int) float64 {
	if part == 0 || total == 0 {
		return 0
	}
	return round1(float64(part) / float64(total) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func foldUsers(users []domain.User, now time.Time) domain.UserStats {
	monthStart := startOfMonth(now)
	st := domain.UserStats{Total: len(users)}
	for _, u := range users {
		if u.Active() {
			st.Active++
		}
		if !u.CreatedAt.Before(monthStart) {
			st.NewThisMonth++
		}
	}
	st.Growth = percentOf(st.NewThisMonth, st.Total)
	return st
}

func foldOrders(orders []domain.Order, now time.Time) domain.OrderStats {
	monthStart := startOfMonth(now)
	st := domain.OrderStats{Total: len(orders)}
	var thisMonth int
	for _, o := range orders {
		switch o.Status {
		case domain.OrderPending:
			st.Pending++
		case domain.OrderProcessing:
			st.Processing++
		case domain.OrderCompleted:
			st.Completed++
		}
		st.Revenue += o.TotalAmount
		if !o.CreatedAt.Before(monthStart) {
			thisMonth++
		}
	}
	st.Revenue = math.Round(st.Revenue*100) / 100
	st.Growth = percentOf(thisMonth, st.Total)
	return st
}

func foldProducts(products []domain.Product, lowStock int) domain.ProductStats {
	st := domain.ProductStats{Total: len(products)}
	for _, p := range products {
		if p.Active() {
			st.Active++
		}
		switch {
		case p.Stock <= 0:
			st.OutOfStock++
		case p.Stock <= lowStock:
			st.LowStock++
		}
	}
	return st
}

func foldReviews(reviews []domain.Review, now time.Time) domain.ReviewStats {
	monthStart := startOfMonth(now)
	st := domain.ReviewStats{Total: len(reviews)}
	var sum float64
	var thisMonth int
	for _, r := range reviews {
		if r.Status == "pending" {
			st.Pending++
		}
		sum += r.Rating
		if !r.CreatedAt.Before(monthStart) {
			thisMonth++
		}
	}
	if st.Total > 0 {
		st.AverageRating = round1(sum / float64(st.Total))
	}
	st.Growth = percentOf(thisMonth, st.Total)
	return st
}
