package features

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cucumber/godog"

	cartmemory "github.com/llmndev/perfume-storefront/internal/domains/cart/adapters/memory"
	"github.com/llmndev/perfume-storefront/internal/domains/cart/application"
	"github.com/llmndev/perfume-storefront/internal/domains/cart/domain"
)

var errUnavailable = errors.New("cart API unavailable")

type countingRemote struct {
	*cartmemory.Remote
	deletes     atomic.Int32
	unavailable atomic.Bool
}

func (r *countingRemote) GetCartByUser(ctx context.Context, userID int64) (*domain.Cart, error) {
	if r.unavailable.Load() {
		return nil, errUnavailable
	}
	return r.Remote.GetCartByUser(ctx, userID)
}

func (r *countingRemote) DeleteItem(ctx context.Context, lineItemID int64) error {
	r.deletes.Add(1)
	return r.Remote.DeleteItem(ctx, lineItemID)
}

type cartTestContext struct {
	remote       *countingRemote
	synchronizer *application.Synchronizer
	err          error
}

func (c *cartTestContext) reset() {
	c.remote = &countingRemote{Remote: cartmemory.NewRemote()}
	c.synchronizer = nil
	c.err = nil
}

func (c *cartTestContext) theCatalogContainsProduct(id int64, name string, price float64) error {
	c.remote.WithProducts(domain.ProductSnapshot{ID: id, Name: name, UnitPrice: price})
	return nil
}

func (c *cartTestContext) aSynchronizerForUser(userID int64) error {
	s, err := application.NewSynchronizer(c.remote, userID)
	if err != nil {
		return err
	}
	c.synchronizer = s
	return nil
}

func (c *cartTestContext) theCartAPIIsUnavailable() error {
	c.remote.unavailable.Store(true)
	return nil
}

func (c *cartTestContext) theCartIsRefreshed() error {
	c.err = c.synchronizer.Refresh(context.Background())
	return nil
}

func (c *cartTestContext) productIsAddedWithQuantity(productID int64, quantity int) error {
	c.err = c.synchronizer.AddItem(context.Background(), productID, quantity)
	return nil
}

func (c *cartTestContext) productIsUpdatedToQuantity(productID int64, quantity int) error {
	item, ok := c.synchronizer.Cart().FindByProduct(productID)
	if !ok {
		return fmt.Errorf("product %d is not in the cart", productID)
	}
	c.err = c.synchronizer.UpdateQuantity(context.Background(), item.ID, quantity)
	return nil
}

func (c *cartTestContext) productsAreAddedConcurrently(a, b, d int64) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, productID := range []int64{a, b, d} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.synchronizer.AddItem(context.Background(), productID, 1); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	c.err = errors.Join(errs...)
	return nil
}

func (c *cartTestContext) theCartIsCleared() error {
	c.err = c.synchronizer.Clear(context.Background())
	return nil
}

func (c *cartTestContext) theCartExistsForUser(userID int64) error {
	cart := c.synchronizer.Cart()
	if cart == nil {
		return fmt.Errorf("expected a cart, got none (last error: %v)", c.err)
	}
	if cart.UserID != userID {
		return fmt.Errorf("expected cart of user %d, got %d", userID, cart.UserID)
	}
	return nil
}

func (c *cartTestContext) theCartHasLineItems(n int) error {
	if c.err != nil {
		return fmt.Errorf("unexpected error: %w", c.err)
	}
	cart := c.synchronizer.Cart()
	if cart == nil {
		return errors.New("no cart is held")
	}
	if len(cart.Items) != n {
		return fmt.Errorf("expected %d line items, got %d", n, len(cart.Items))
	}
	return nil
}

func (c *cartTestContext) productHasQuantity(productID int64, quantity int) error {
	item, ok := c.synchronizer.Cart().FindByProduct(productID)
	if !ok {
		return fmt.Errorf("product %d is not in the cart", productID)
	}
	if item.Quantity != quantity {
		return fmt.Errorf("expected quantity %d, got %d", quantity, item.Quantity)
	}
	return nil
}

func (c *cartTestContext) theSubtotalIs(expected string) error {
	if got := c.synchronizer.Subtotal().StringFixed(2); got != expected {
		return fmt.Errorf("expected subtotal %s, got %s", expected, got)
	}
	return nil
}

func (c *cartTestContext) theItemCountIs(n int) error {
	if got := c.synchronizer.ItemCount(); got != n {
		return fmt.Errorf("expected item count %d, got %d", n, got)
	}
	return nil
}

func (c *cartTestContext) deleteRequestsWereIssued(n int) error {
	if got := int(c.remote.deletes.Load()); got != n {
		return fmt.Errorf("expected %d delete requests, got %d", n, got)
	}
	return nil
}

func (c *cartTestContext) theOperationFailsBecauseTheCartWasNotLoaded() error {
	if !errors.Is(c.err, application.ErrCartNotLoaded) {
		return fmt.Errorf("expected ErrCartNotLoaded, got %v", c.err)
	}
	c.err = nil
	return nil
}

func (c *cartTestContext) theOperationFailsWithARemoteError() error {
	if !errors.Is(c.err, application.ErrRemote) {
		return fmt.Errorf("expected a remote error, got %v", c.err)
	}
	return nil
}

func (c *cartTestContext) noCartIsHeld() error {
	if cart := c.synchronizer.Cart(); cart != nil {
		return fmt.Errorf("expected no cart, got cart %d", cart.ID)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the catalog contains product (\d+) "([^"]*)" priced (\d+\.\d+)$`, tc.theCatalogContainsProduct)
	ctx.Step(`^a synchronizer for user (\d+)$`, tc.aSynchronizerForUser)
	ctx.Step(`^the cart API is unavailable$`, tc.theCartAPIIsUnavailable)

	// When steps
	ctx.Step(`^the cart is refreshed$`, tc.theCartIsRefreshed)
	ctx.Step(`^product (\d+) is added with quantity (\d+)$`, tc.productIsAddedWithQuantity)
	ctx.Step(`^product (\d+) is updated to quantity (-?\d+)$`, tc.productIsUpdatedToQuantity)
	ctx.Step(`^products (\d+), (\d+) and (\d+) are added concurrently$`, tc.productsAreAddedConcurrently)
	ctx.Step(`^the cart is cleared$`, tc.theCartIsCleared)

	// Then steps
	ctx.Step(`^the cart exists for user (\d+)$`, tc.theCartExistsForUser)
	ctx.Step(`^the cart has (\d+) line items$`, tc.theCartHasLineItems)
	ctx.Step(`^product (\d+) has quantity (\d+)$`, tc.productHasQuantity)
	ctx.Step(`^the subtotal is "([^"]*)"$`, tc.theSubtotalIs)
	ctx.Step(`^the item count is (\d+)$`, tc.theItemCountIs)
	ctx.Step(`^(\d+) delete requests were issued$`, tc.deleteRequestsWereIssued)
	ctx.Step(`^the operation fails because the cart was not loaded$`, tc.theOperationFailsBecauseTheCartWasNotLoaded)
	ctx.Step(`^the operation fails with a remote error$`, tc.theOperationFailsWithARemoteError)
	ctx.Step(`^no cart is held$`, tc.noCartIsHeld)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"cart.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
