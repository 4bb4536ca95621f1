package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/llmndev/perfume-storefront/internal/domains/cart/domain"
	"github.com/llmndev/perfume-storefront/internal/domains/cart/ports"
)

var _ ports.Remote = (*Remote)(nil)

// ErrNotFound is returned for unknown carts, products or line items.
var ErrNotFound = errors.New("resource not found")

// Remote is an in-memory stand-in for the cart REST API, used for local
// development and tests.
type Remote struct {
	mu         sync.RWMutex
	products   map[int64]domain.ProductSnapshot
	carts      map[int64]*domain.Cart
	cartByUser map[int64]int64
	items      map[int64]*storedItem
	nextCartID int64
	nextItemID int64
}

type storedItem struct {
	cartID    int64
	productID int64
	quantity  int
}

func NewRemote() *Remote {
	return &Remote{
		products:   map[int64]domain.ProductSnapshot{},
		carts:      map[int64]*domain.Cart{},
		cartByUser: map[int64]int64{},
		items:      map[int64]*storedItem{},
	}
}

// WithProducts seeds the catalog the remote resolves product snapshots from.
func (r *Remote) WithProducts(products ...domain.ProductSnapshot) *Remote {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *Remote) GetCartByUser(_ context.Context, userID int64) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cartID, ok := r.cartByUser[userID]
	if !ok {
		return nil, ports.ErrCartNotFound
	}
	return &domain.Cart{ID: cartID, UserID: userID}, nil
}

func (r *Remote) CreateCart(_ context.Context, userID int64) (*domain.Cart, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if cartID, ok := r.cartByUser[userID]; ok {
		return &domain.Cart{ID: cartID, UserID: userID}, nil
	}
	r.nextCartID++
	cart := &domain.Cart{ID: r.nextCartID, UserID: userID}
	r.carts[cart.ID] = cart
	r.cartByUser[userID] = cart.ID
	return &domain.Cart{ID: cart.ID, UserID: userID}, nil
}

func (r *Remote) ListItems(_ context.Context, cartID int64) ([]domain.LineItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.carts[cartID]; !ok {
		return nil, fmt.Errorf("cart %d: %w", cartID, ErrNotFound)
	}
	ids := make([]int64, 0, len(r.items))
	for id, item := range r.items {
		if item.cartID == cartID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	list := make([]domain.LineItem, 0, len(ids))
	for _, id := range ids {
		list = append(list, r.toLineItem(id, r.items[id]))
	}
	return list, nil
}

func (r *Remote) CreateItem(_ context.Context, cartID, productID int64, quantity int) (*domain.LineItem, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.carts[cartID]; !ok {
		return nil, fmt.Errorf("cart %d: %w", cartID, ErrNotFound)
	}
	if _, ok := r.products[productID]; !ok {
		return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	r.nextItemID++
	stored := &storedItem{cartID: cartID, productID: productID, quantity: quantity}
	r.items[r.nextItemID] = stored
	item := r.toLineItem(r.nextItemID, stored)
	return &item, nil
}

func (r *Remote) UpdateItem(_ context.Context, lineItemID int64, quantity int) (*domain.LineItem, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[lineItemID]
	if !ok {
		return nil, fmt.Errorf("line item %d: %w", lineItemID, ErrNotFound)
	}
	stored.quantity = quantity
	item := r.toLineItem(lineItemID, stored)
	return &item, nil
}

func (r *Remote) DeleteItem(_ context.Context, lineItemID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[lineItemID]; !ok {
		return fmt.Errorf("line item %d: %w", lineItemID, ErrNotFound)
	}
	delete(r.items, lineItemID)
	return nil
}

func (r *Remote) toLineItem(id int64, stored *storedItem) domain.LineItem {
	return domain.LineItem{
		ID:       id,
		Quantity: stored.quantity,
		Product:  r.products[stored.productID],
	}
}
