package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidUserID     = errors.New("user id must be greater than zero")
	ErrInvalidProductID  = errors.New("product id must be greater than zero")
	ErrInvalidLineItemID = errors.New("line item id must be greater than zero")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
)

// ProductSnapshot is the product data embedded in a line item at read time.
type ProductSnapshot struct {
	ID        int64
	Name      string
	UnitPrice float64
	ImageURL  string
}

// LineItem pairs a product snapshot with a quantity.
type LineItem struct {
	ID       int64
	Quantity int
	Product  ProductSnapshot
}

// LineTotal returns unit price times quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return decimal.NewFromFloat(li.Product.UnitPrice).Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Cart mirrors the remote cart of a single user.
type Cart struct {
	ID     int64
	UserID int64
	Items  []LineItem
}

// ItemCount sums the quantities of all line items. A nil cart counts zero.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Subtotal sums unit price times quantity over all line items. A nil cart totals zero.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	if c == nil {
		return total
	}
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// FindByProduct returns the line item holding the given product, if any.
func (c *Cart) FindByProduct(productID int64) (LineItem, bool) {
	if c == nil {
		return LineItem{}, false
	}
	for _, item := range c.Items {
		if item.Product.ID == productID {
			return item, true
		}
	}
	return LineItem{}, false
}

// FindItem returns the line item with the given identifier, if any.
func (c *Cart) FindItem(lineItemID int64) (LineItem, bool) {
	if c == nil {
		return LineItem{}, false
	}
	for _, item := range c.Items {
		if item.ID == lineItemID {
			return item, true
		}
	}
	return LineItem{}, false
}

// LineCount returns the number of line items. A nil cart has none.
func (c *Cart) LineCount() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

// Clone returns a deep copy so callers never share the held slice.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Items != nil {
		clone.Items = append(make([]LineItem, 0, len(c.Items)), c.Items...)
	}
	return &clone
}

// ValidateProductID rejects non-positive product identifiers.
func ValidateProductID(id int64) error {
	if id <= 0 {
		return ErrInvalidProductID
	}
	return nil
}

// ValidateLineItemID rejects non-positive line item identifiers.
func ValidateLineItemID(id int64) error {
	if id <= 0 {
		return ErrInvalidLineItemID
	}
	return nil
}

// ValidateUserID rejects non-positive user identifiers.
func ValidateUserID(id int64) error {
	if id <= 0 {
		return ErrInvalidUserID
	}
	return nil
}
