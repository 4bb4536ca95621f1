package mapper

import (
	"github.com/llmndev/perfume-storefront/internal/domains/cart/domain"
	"github.com/llmndev/perfume-storefront/internal/domains/cart/ports"
)

// DefaultAddQuantity applies when an add request omits the quantity.
const DefaultAddQuantity = 1

// Product is the HTTP representation of a product snapshot.
type Product struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl,omitempty"`
}

// CartItem is the HTTP representation of a line item.
type CartItem struct {
	ID        int64   `json:"id"`
	Quantity  int     `json:"quantity"`
	Product   Product `json:"product"`
	LineTotal string  `json:"lineTotal"`
}

// Cart is the HTTP representation of the mirrored cart.
type Cart struct {
	ID     int64      `json:"id"`
	UserID int64      `json:"userId"`
	Items  []CartItem `json:"items"`
}

// CartState is the body of every cart endpoint: the held cart plus derived values.
// Cart is null when no cart is held.
type CartState struct {
	Cart      *Cart  `json:"cart"`
	ItemCount int    `json:"itemCount"`
	Subtotal  string `json:"subtotal"`
	Loading   bool   `json:"loading"`
	Phase     string `json:"phase"`
}

// AddItemRequest is the body of POST /api/cart/items.
type AddItemRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  *int  `json:"quantity,omitempty"`
}

// EffectiveQuantity returns the requested quantity or DefaultAddQuantity.
func (r AddItemRequest) EffectiveQuantity() int {
	if r.Quantity == nil {
		return DefaultAddQuantity
	}
	return *r.Quantity
}

// UpdateItemRequest is the body of PUT /api/cart/items/:itemId.
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// FromSynchronizer snapshots the synchronizer state for a response.
func FromSynchronizer(s ports.Synchronizer) CartState {
	return CartState{
		Cart:      FromCart(s.Cart()),
		ItemCount: s.ItemCount(),
		Subtotal:  s.Subtotal().StringFixed(2),
		Loading:   s.Loading(),
		Phase:     string(s.Phase()),
	}
}

// FromCart converts the domain cart, keeping nil as nil.
func FromCart(cart *domain.Cart) *Cart {
	if cart == nil {
		return nil
	}
	out := &Cart{ID: cart.ID, UserID: cart.UserID, Items: make([]CartItem, 0, len(cart.Items))}
	for _, item := range cart.Items {
		out.Items = append(out.Items, CartItem{
			ID:       item.ID,
			Quantity: item.Quantity,
			Product: Product{
				ID:       item.Product.ID,
				Name:     item.Product.Name,
				Price:    item.Product.UnitPrice,
				ImageURL: item.Product.ImageURL,
			},
			LineTotal: item.LineTotal().StringFixed(2),
		})
	}
	return out
}
