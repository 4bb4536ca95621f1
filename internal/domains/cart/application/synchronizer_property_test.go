//go:build property

package application_test

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"

	cartmemory "github.com/llmndev/perfume-storefront/internal/domains/cart/adapters/memory"
	"github.com/llmndev/perfume-storefront/internal/domains/cart/application"
	"github.com/llmndev/perfume-storefront/internal/domains/cart/domain"
)

var catalog = []domain.ProductSnapshot{
	{ID: 1, Name: "Oud Noir", UnitPrice: 100},
	{ID: 2, Name: "Rose Absolue", UnitPrice: 45.5},
	{ID: 3, Name: "Vetiver", UnitPrice: 12.25},
	{ID: 4, Name: "Neroli", UnitPrice: 0.99},
}

// op encodes a product index in the low bits and a quantity in the rest.
func decodeOp(op int) (productID int64, quantity int) {
	return catalog[op%len(catalog)].ID, op/len(catalog) + 1
}

func newProperties(minSuccessful int) *gopter.Properties {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = minSuccessful
	return gopter.NewProperties(parameters)
}

// TestAddItemAggregates verifies totals after any sequence of adds.
// Property: count == sum(quantities) and one line per product.
func TestAddItemAggregates(t *testing.T) {
	properties := newProperties(50)

	properties.Property("adds accumulate per product", prop.ForAll(
		func(ops []int) bool {
			ctx := context.Background()
			s, err := application.NewSynchronizer(cartmemory.NewRemote().WithProducts(catalog...), 1)
			if err != nil || s.Refresh(ctx) != nil {
				return false
			}

			want := map[int64]int{}
			total := 0
			for _, op := range ops {
				productID, quantity := decodeOp(op)
				if err := s.AddItem(ctx, productID, quantity); err != nil {
					return false
				}
				want[productID] += quantity
				total += quantity
			}

			cart := s.Cart()
			if len(cart.Items) != len(want) || s.ItemCount() != total {
				return false
			}
			expected := decimal.Zero
			for _, item := range cart.Items {
				if want[item.Product.ID] != item.Quantity {
					return false
				}
				expected = expected.Add(decimal.NewFromFloat(item.Product.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity))))
			}
			return s.Subtotal().Equal(expected)
		},
		gen.SliceOf(gen.IntRange(0, 39)),
	))

	properties.TestingRun(t)
}

// TestHeldStateMatchesRemote verifies the held cart after a mutation sequence.
// Property: held cart == cart loaded by a fresh synchronizer
func TestHeldStateMatchesRemote(t *testing.T) {
	properties := newProperties(50)

	properties.Property("held state equals a fresh reload", prop.ForAll(
		func(ops []int, updates []int) bool {
			ctx := context.Background()
			remote := cartmemory.NewRemote().WithProducts(catalog...)
			s, err := application.NewSynchronizer(remote, 1)
			if err != nil || s.Refresh(ctx) != nil {
				return false
			}
			for _, op := range ops {
				productID, quantity := decodeOp(op)
				if err := s.AddItem(ctx, productID, quantity); err != nil {
					return false
				}
			}
			for i, quantity := range updates {
				items := s.Cart().Items
				if len(items) == 0 {
					break
				}
				if err := s.UpdateQuantity(ctx, items[i%len(items)].ID, quantity); err != nil {
					return false
				}
			}

			fresh, err := application.NewSynchronizer(remote, 1)
			if err != nil || fresh.Refresh(ctx) != nil {
				return false
			}
			held, reloaded := s.Cart(), fresh.Cart()
			if held.ID != reloaded.ID || len(held.Items) != len(reloaded.Items) {
				return false
			}
			for i := range held.Items {
				if held.Items[i] != reloaded.Items[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 39)),
		gen.SliceOf(gen.IntRange(-2, 6)),
	))

	properties.TestingRun(t)
}

// TestClearEmptiesCart verifies Clear leaves no line items.
// Property: Clear(cart) => ItemCount == 0 and Subtotal == 0
func TestClearEmptiesCart(t *testing.T) {
	properties := newProperties(30)

	properties.Property("clear empties any cart", prop.ForAll(
		func(ops []int, concurrency int) bool {
			ctx := context.Background()
			s, err := application.NewSynchronizer(cartmemory.NewRemote().WithProducts(catalog...), 1,
				application.WithClearConcurrency(concurrency))
			if err != nil || s.Refresh(ctx) != nil {
				return false
			}
			for _, op := range ops {
				productID, quantity := decodeOp(op)
				if err := s.AddItem(ctx, productID, quantity); err != nil {
					return false
				}
			}
			if err := s.Clear(ctx); err != nil {
				return false
			}
			return s.Cart() != nil && len(s.Cart().Items) == 0 && s.ItemCount() == 0 && s.Subtotal().IsZero()
		},
		gen.SliceOf(gen.IntRange(0, 39)),
		gen.IntRange(1, 4),
	))

	properties.TestingRun(t)
}
