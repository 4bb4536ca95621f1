package ports

import (
	"context"

	"github.com/llmndev/perfume-storefront/internal/domains/wishlist/domain"
)

// Service exposes wishlist use cases.
type Service interface {
	Add(ctx context.Context, userID int64, item domain.Item) (*domain.Wishlist, error)
	Remove(ctx context.Context, userID, productID int64) (*domain.Wishlist, error)
	// Toggle adds the item when absent and removes it when present. It returns
	// whether the product is on the list afterwards.
	Toggle(ctx context.Context, userID int64, item domain.Item) (bool, error)
	Contains(ctx context.Context, userID int64, productIDs []int64) (map[int64]bool, error)
	List(ctx context.Context, userID int64) (*domain.Wishlist, error)
	Clear(ctx context.Context, userID int64) error
}
