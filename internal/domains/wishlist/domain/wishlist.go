package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidUserID    = errors.New("user id must be greater than zero")
	ErrInvalidProductID = errors.New("product id must be greater than zero")
	ErrInvalidPrice     = errors.New("price cannot be negative")
	ErrMissingName      = errors.New("product name is required")
)

// Item is a product saved for later, with the display data captured when it was saved.
type Item struct {
	ProductID int64
	Name      string
	Price     float64
	ImageURL  string
	AddedAt   time.Time
}

// Validate checks the item can be stored.
func (i Item) Validate() error {
	if err := ValidateProductID(i.ProductID); err != nil {
		return err
	}
	if strings.TrimSpace(i.Name) == "" {
		return ErrMissingName
	}
	if i.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// Wishlist is the ordered, duplicate-free set of items a user saved.
type Wishlist struct {
	UserID int64
	Items  []Item
}

// Contains reports whether the product is on the list.
func (w *Wishlist) Contains(productID int64) bool {
	if w == nil {
		return false
	}
	for _, item := range w.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// Len returns the number of saved items.
func (w *Wishlist) Len() int {
	if w == nil {
		return 0
	}
	return len(w.Items)
}

func ValidateUserID(id int64) error {
	if id <= 0 {
		return ErrInvalidUserID
	}
	return nil
}

func ValidateProductID(id int64) error {
	if id <= 0 {
		return ErrInvalidProductID
	}
	return nil
}
