package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/llmndev/perfume-storefront/internal/domains/cart/domain"
)

// Phase enumerates the per-operation states of a synchronizer.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseMutating   Phase = "mutating"
	PhaseRefreshing Phase = "refreshing"
	PhaseFailed     Phase = "failed"
)

// Synchronizer keeps a point-in-time mirror of one user's remote cart.
type Synchronizer interface {
	UserID() int64
	Refresh(ctx context.Context) error
	AddItem(ctx context.Context, productID int64, quantity int) error
	UpdateQuantity(ctx context.Context, lineItemID int64, quantity int) error
	RemoveItem(ctx context.Context, lineItemID int64) error
	Clear(ctx context.Context) error
	Cart() *domain.Cart
	Subtotal() decimal.Decimal
	ItemCount() int
	Loading() bool
	Phase() Phase
}

// Sessions hands out the synchronizer mirroring a shopper's cart.
type Sessions interface {
	For(ctx context.Context, userID int64) (Synchronizer, error)
	Release(userID int64) bool
}
