package ports

import (
	"context"

	"github.com/aioutlet/admin-service/internal/core/domain"
)

// OrderLister reads orders from the order-service.
type OrderLister interface {
	FetchAllOrders(ctx context.Context, token string) ([]domain.Order, error)
}

// ProductLister reads the catalogue from the product-service.
type ProductLister interface {
	FetchAllProducts(ctx context.Context, token string) ([]domain.Product, error)
}

// ReviewLister reads customer reviews from the review-service.
type ReviewLister interface {
	FetchAllReviews(ctx context.Context, token string) ([]domain.Review, error)
}
