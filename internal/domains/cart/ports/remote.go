package ports

import (
	"context"
	"errors"

	"github.com/llmndev/perfume-storefront/internal/domains/cart/domain"
)

// ErrCartNotFound signals that the remote API holds no cart for the user.
var ErrCartNotFound = errors.New("cart not found")

// Remote is the cart REST API that owns the authoritative cart state.
// Returned carts carry no items; items are listed separately.
type Remote interface {
	GetCartByUser(ctx context.Context, userID int64) (*domain.Cart, error)
	CreateCart(ctx context.Context, userID int64) (*domain.Cart, error)
	ListItems(ctx context.Context, cartID int64) ([]domain.LineItem, error)
	CreateItem(ctx context.Context, cartID, productID int64, quantity int) (*domain.LineItem, error)
	UpdateItem(ctx context.Context, lineItemID int64, quantity int) (*domain.LineItem, error)
	DeleteItem(ctx context.Context, lineItemID int64) error
}
