package storeapi

// UserRef references a user by id.
type UserRef struct {
	ID int64 `json:"id"`
}

// CartRef references a cart by id.
type CartRef struct {
	ID int64 `json:"id"`
}

// ProductRef references a product by id.
type ProductRef struct {
	ID int64 `json:"id"`
}

// Cart is the cart resource returned by the store API.
type Cart struct {
	ID   int64    `json:"id"`
	User *UserRef `json:"user,omitempty"`
}

// Product is the product snapshot embedded in cart item responses.
type Product struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl,omitempty"`
}

// CartItem is a line item as returned by the store API.
type CartItem struct {
	ID       int64    `json:"id"`
	Quantity int      `json:"quantity"`
	Product  Product  `json:"product"`
	Cart     *CartRef `json:"cart,omitempty"`
}

// CreateCartRequest is the body of POST /cart.
type CreateCartRequest struct {
	User UserRef `json:"user"`
}

// CreateCartItemRequest is the body of POST /cart-items.
type CreateCartItemRequest struct {
	Cart     CartRef    `json:"cart"`
	Product  ProductRef `json:"product"`
	Quantity int        `json:"quantity"`
}

// UpdateCartItemRequest is the body of PUT /cart-items/{id}.
type UpdateCartItemRequest struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}
