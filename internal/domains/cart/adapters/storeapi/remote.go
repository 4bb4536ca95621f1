package storeapi

import (
	"context"
	"errors"

	"github.com/llmndev/perfume-storefront/internal/clients/http/storeapi"
	"github.com/llmndev/perfume-storefront/internal/domains/cart/domain"
	"github.com/llmndev/perfume-storefront/internal/domains/cart/ports"
)

var _ ports.Remote = (*Remote)(nil)

// API is the subset of the store API client the cart needs.
type API interface {
	GetCartByUser(ctx context.Context, userID int64) (*storeapi.Cart, error)
	CreateCart(ctx context.Context, body storeapi.CreateCartRequest) (*storeapi.Cart, error)
	ListCartItems(ctx context.Context, cartID int64) ([]storeapi.CartItem, error)
	CreateCartItem(ctx context.Context, body storeapi.CreateCartItemRequest) (*storeapi.CartItem, error)
	UpdateCartItem(ctx context.Context, id int64, body storeapi.UpdateCartItemRequest) (*storeapi.CartItem, error)
	DeleteCartItem(ctx context.Context, id int64) error
}

// Remote adapts the store API client to the cart remote port.
type Remote struct {
	api API
}

func NewRemote(api API) *Remote {
	return &Remote{api: api}
}

func (r *Remote) GetCartByUser(ctx context.Context, userID int64) (*domain.Cart, error) {
	cart, err := r.api.GetCartByUser(ctx, userID)
	if storeapi.IsNotFound(err) {
		return nil, errors.Join(ports.ErrCartNotFound, err)
	}
	if err != nil {
		return nil, err
	}
	return toDomainCart(cart, userID)
}

func (r *Remote) CreateCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	cart, err := r.api.CreateCart(ctx, storeapi.CreateCartRequest{User: storeapi.UserRef{ID: userID}})
	if err != nil {
		return nil, err
	}
	return toDomainCart(cart, userID)
}

func (r *Remote) ListItems(ctx context.Context, cartID int64) ([]domain.LineItem, error) {
	items, err := r.api.ListCartItems(ctx, cartID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, toDomainItem(item))
	}
	return out, nil
}

func (r *Remote) CreateItem(ctx context.Context, cartID, productID int64, quantity int) (*domain.LineItem, error) {
	item, err := r.api.CreateCartItem(ctx, storeapi.CreateCartItemRequest{
		Cart:     storeapi.CartRef{ID: cartID},
		Product:  storeapi.ProductRef{ID: productID},
		Quantity: quantity,
	})
	if err != nil {
		return nil, err
	}
	li := toDomainItem(*item)
	return &li, nil
}

func (r *Remote) UpdateItem(ctx context.Context, lineItemID int64, quantity int) (*domain.LineItem, error) {
	item, err := r.api.UpdateCartItem(ctx, lineItemID, storeapi.UpdateCartItemRequest{ID: lineItemID, Quantity: quantity})
	if err != nil {
		return nil, err
	}
	li := toDomainItem(*item)
	return &li, nil
}

func (r *Remote) DeleteItem(ctx context.Context, lineItemID int64) error {
	return r.api.DeleteCartItem(ctx, lineItemID)
}

var errMissingCartID = errors.New("store API returned a cart without id")

func toDomainCart(cart *storeapi.Cart, userID int64) (*domain.Cart, error) {
	if cart == nil || cart.ID <= 0 {
		return nil, errMissingCartID
	}
	owner := userID
	if cart.User != nil && cart.User.ID > 0 {
		owner = cart.User.ID
	}
	return &domain.Cart{ID: cart.ID, UserID: owner}, nil
}

func toDomainItem(item storeapi.CartItem) domain.LineItem {
	return domain.LineItem{
		ID:       item.ID,
		Quantity: item.Quantity,
		Product: domain.ProductSnapshot{
			ID:        item.Product.ID,
			Name:      item.Product.Name,
			UnitPrice: item.Product.Price,
			ImageURL:  item.Product.ImageURL,
		},
	}
}
