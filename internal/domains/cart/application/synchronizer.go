package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/llmndev/perfume-storefront/internal/domains/cart/domain"
	"github.com/llmndev/perfume-storefront/internal/domains/cart/ports"
)

// DefaultClearConcurrency bounds the parallel deletes issued by Clear.
const DefaultClearConcurrency = 8

// Synchronizer mirrors one user's remote cart. Every mutation goes through the
// remote API and is followed by a full reload; held state is replaced, never patched.
// Mutations are serialized: a call waits until the previous one, including its
// trailing refresh, has completed.
type Synchronizer struct {
	remote           ports.Remote
	userID           int64
	logger           *slog.Logger
	clearConcurrency int

	mutations sync.Mutex
	refreshes singleflight.Group
	inflight  atomic.Int32

	mu    sync.RWMutex
	cart  *domain.Cart
	phase ports.Phase
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger used for degraded loads.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synchronizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClearConcurrency bounds the number of deletes Clear keeps in flight.
func WithClearConcurrency(n int) Option {
	return func(s *Synchronizer) {
		if n > 0 {
			s.clearConcurrency = n
		}
	}
}

// NewSynchronizer builds a synchronizer for the given user. No request is issued until Refresh.
func NewSynchronizer(remote ports.Remote, userID int64, opts ...Option) (*Synchronizer, error) {
	if remote == nil {
		return nil, errors.New("cart remote is nil")
	}
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, mapError(err)
	}
	s := &Synchronizer{
		remote:           remote,
		userID:           userID,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		clearConcurrency: DefaultClearConcurrency,
		phase:            ports.PhaseIdle,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// UserID returns the owner of the mirrored cart.
func (s *Synchronizer) UserID() int64 {
	return s.userID
}

// Refresh discards the held cart and reloads it from the remote API, creating the
// cart when the user has none. On failure the held cart becomes nil and the error
// is returned. Concurrent calls share a single reload. The shared reload is detached
// from the caller's cancellation; a cancelled caller stops waiting while the others
// still receive the result.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	shared := context.WithoutCancel(ctx)
	result := s.refreshes.DoChan("refresh", func() (any, error) {
		s.mutations.Lock()
		defer s.mutations.Unlock()
		done := s.begin(ports.PhaseRefreshing)
		err := s.refresh(shared)
		done(err)
		return nil, err
	})
	select {
	case res := <-result:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AddItem adds quantity units of a product. When the product is already in the
// cart its line item quantity is incremented instead. When no cart is held the
// cart is reloaded and ErrCartNotLoaded is returned.
func (s *Synchronizer) AddItem(ctx context.Context, productID int64, quantity int) (err error) {
	if err := domain.ValidateProductID(productID); err != nil {
		return mapError(err)
	}
	if quantity <= 0 {
		return mapError(domain.ErrInvalidQuantity)
	}
	s.mutations.Lock()
	defer s.mutations.Unlock()
	done := s.begin(ports.PhaseMutating)
	defer func() { done(err) }()

	cart := s.current()
	if cart == nil {
		if err := s.refresh(ctx); err != nil {
			return err
		}
		return ErrCartNotLoaded
	}
	if existing, ok := cart.FindByProduct(productID); ok {
		return s.updateQuantity(ctx, existing.ID, existing.Quantity+quantity)
	}
	if _, err := s.remote.CreateItem(ctx, cart.ID, productID, quantity); err != nil {
		return remoteError(fmt.Sprintf("add product %d", productID), err)
	}
	return s.refresh(ctx)
}

// UpdateQuantity sets a line item quantity. A quantity of zero or less removes the item.
func (s *Synchronizer) UpdateQuantity(ctx context.Context, lineItemID int64, quantity int) (err error) {
	if err := domain.ValidateLineItemID(lineItemID); err != nil {
		return mapError(err)
	}
	s.mutations.Lock()
	defer s.mutations.Unlock()
	done := s.begin(ports.PhaseMutating)
	defer func() { done(err) }()
	return s.updateQuantity(ctx, lineItemID, quantity)
}

// RemoveItem deletes a line item.
func (s *Synchronizer) RemoveItem(ctx context.Context, lineItemID int64) (err error) {
	if err := domain.ValidateLineItemID(lineItemID); err != nil {
		return mapError(err)
	}
	s.mutations.Lock()
	defer s.mutations.Unlock()
	done := s.begin(ports.PhaseMutating)
	defer func() { done(err) }()
	return s.removeItem(ctx, lineItemID)
}

// Clear deletes every held line item in parallel, waits for all deletes to settle
// and reloads once. Delete and reload failures are joined into the returned error.
func (s *Synchronizer) Clear(ctx context.Context) (err error) {
	s.mutations.Lock()
	defer s.mutations.Unlock()
	done := s.begin(ports.PhaseMutating)
	defer func() { done(err) }()

	cart := s.current()
	if cart == nil {
		return nil
	}

	var (
		g      errgroup.Group
		errsMu sync.Mutex
		errs   []error
	)
	g.SetLimit(s.clearConcurrency)
	for _, item := range cart.Items {
		g.Go(func() error {
			if err := s.remote.DeleteItem(ctx, item.ID); err != nil {
				errsMu.Lock()
				errs = append(errs, remoteError(fmt.Sprintf("delete line item %d", item.ID), err))
				errsMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := s.refresh(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Cart returns a copy of the held cart, or nil when none is loaded.
func (s *Synchronizer) Cart() *domain.Cart {
	return s.current()
}

// Subtotal returns the sum of unit price times quantity, zero without a cart.
func (s *Synchronizer) Subtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Subtotal()
}

// ItemCount returns the sum of quantities, zero without a cart.
func (s *Synchronizer) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.ItemCount()
}

// Loading reports whether an operation, including its trailing refresh, is in progress.
func (s *Synchronizer) Loading() bool {
	return s.inflight.Load() > 0
}

// Phase reports the current operation phase. After an operation ends it reports
// idle on success and failed on error until the next operation starts.
func (s *Synchronizer) Phase() ports.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

func (s *Synchronizer) updateQuantity(ctx context.Context, lineItemID int64, quantity int) error {
	if quantity <= 0 {
		return s.removeItem(ctx, lineItemID)
	}
	if _, err := s.remote.UpdateItem(ctx, lineItemID, quantity); err != nil {
		return remoteError(fmt.Sprintf("update line item %d", lineItemID), err)
	}
	return s.refresh(ctx)
}

func (s *Synchronizer) removeItem(ctx context.Context, lineItemID int64) error {
	if err := s.remote.DeleteItem(ctx, lineItemID); err != nil {
		return remoteError(fmt.Sprintf("delete line item %d", lineItemID), err)
	}
	return s.refresh(ctx)
}

// refresh must be called with the mutation lock held.
func (s *Synchronizer) refresh(ctx context.Context) error {
	s.setPhase(ports.PhaseRefreshing)
	cart, err := s.load(ctx)
	s.mu.Lock()
	s.cart = cart
	s.mu.Unlock()
	return err
}

func (s *Synchronizer) load(ctx context.Context) (*domain.Cart, error) {
	cart, err := s.remote.GetCartByUser(ctx, s.userID)
	if errors.Is(err, ports.ErrCartNotFound) {
		cart, err = s.remote.CreateCart(ctx, s.userID)
		if err != nil {
			return nil, remoteError("create cart", err)
		}
	} else if err != nil {
		return nil, remoteError("load cart", err)
	}
	if cart == nil {
		return nil, remoteError("load cart", errors.New("empty cart response"))
	}
	cart.UserID = s.userID

	items, err := s.remote.ListItems(ctx, cart.ID)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "cart items unavailable, holding empty cart",
			slog.Int64("cart.id", cart.ID),
			slog.Int64("user.id", s.userID),
			slog.String("error", err.Error()))
		items = nil
	}
	cart.Items = append([]domain.LineItem{}, items...)
	return cart, nil
}

func (s *Synchronizer) current() *domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

func (s *Synchronizer) setPhase(phase ports.Phase) {
	s.mu.Lock()
	s.phase = phase
	s.mu.Unlock()
}

func (s *Synchronizer) begin(phase ports.Phase) func(error) {
	s.inflight.Add(1)
	s.setPhase(phase)
	return func(err error) {
		s.inflight.Add(-1)
		if err != nil {
			s.setPhase(ports.PhaseFailed)
			return
		}
		s.setPhase(ports.PhaseIdle)
	}
}

var _ ports.Synchronizer = (*Synchronizer)(nil)
