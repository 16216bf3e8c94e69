package upstream

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aioutlet/admin-service/internal/core/domain"
	"github.com/aioutlet/admin-service/internal/core/ports"
)

var (
	_ ports.OrderLister   = (*OrderClient)(nil)
	_ ports.ProductLister = (*ProductClient)(nil)
	_ ports.ReviewLister  = (*ReviewClient)(nil)
)

type OrderClient struct{ *Client }

func NewOrderClient(baseURL string, timeout time.Duration, log zerolog.Logger) *OrderClient {
	return &OrderClient{Client: NewClient("order", baseURL, timeout, log)}
}

func (c *OrderClient) FetchAllOrders(ctx context.Context, token string) ([]domain.Order, error) {
	return list[domain.Order](ctx, c.Client, "fetch_all_orders", "/api/orders", token)
}

type ProductClient struct{ *Client }

func NewProductClient(baseURL string, timeout time.Duration, log zerolog.Logger) *ProductClient {
	return &ProductClient{Client: NewClient("product", baseURL, timeout, log)}
}

func (c *ProductClient) FetchAllProducts(ctx context.Context, token string) ([]domain.Product, error) {
	return list[domain.Product](ctx, c.Client, "fetch_all_products", "/api/products", token)
}

type ReviewClient struct{ *Client }

func NewReviewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *ReviewClient {
	return &ReviewClient{Client: NewClient("review", baseURL, timeout, log)}
}

func (c *ReviewClient) FetchAllReviews(ctx context.Context, token string) ([]domain.Review, error) {
	return list[domain.Review](ctx, c.Client, "fetch_all_reviews", "/api/reviews", token)
}
