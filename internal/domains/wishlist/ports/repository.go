package ports

import (
	"context"

	"github.com/llmndev/perfume-storefront/internal/domains/wishlist/domain"
)

// Repository stores wishlists. Implementations keep one entry per product and
// list items in the order they were first added.
type Repository interface {
	// Add stores the item unless the product is already present and reports
	// whether it was inserted.
	Add(ctx context.Context, userID int64, item domain.Item) (bool, error)
	// Remove deletes the product and reports whether it was present.
	Remove(ctx context.Context, userID, productID int64) (bool, error)
	// Toggle removes the product when present and stores the item otherwise, as one
	// atomic step. It reports whether the product is on the list afterwards.
	Toggle(ctx context.Context, userID int64, item domain.Item) (bool, error)
	List(ctx context.Context, userID int64) ([]domain.Item, error)
	// Contains answers membership for every requested product in one round trip.
	Contains(ctx context.Context, userID int64, productIDs []int64) (map[int64]bool, error)
	Clear(ctx context.Context, userID int64) error
}
