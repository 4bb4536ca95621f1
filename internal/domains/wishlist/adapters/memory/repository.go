package memory

import (
	"context"
	"sync"

	"github.com/llmndev/perfume-storefront/internal/domains/wishlist/domain"
	"github.com/llmndev/perfume-storefront/internal/domains/wishlist/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory wishlist persistence adapter.
type Repository struct {
	mu    sync.RWMutex
	lists map[int64][]domain.Item
}

func NewRepository() *Repository {
	return &Repository{lists: map[int64][]domain.Item{}}
}

func (r *Repository) Add(_ context.Context, userID int64, item domain.Item) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.lists[userID] {
		if existing.ProductID == item.ProductID {
			return false, nil
		}
	}
	r.lists[userID] = append(r.lists[userID], item)
	return true, nil
}

func (r *Repository) Remove(_ context.Context, userID, productID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.lists[userID]
	for i, existing := range items {
		if existing.ProductID != productID {
			continue
		}
		kept := make([]domain.Item, 0, len(items)-1)
		kept = append(kept, items[:i]...)
		kept = append(kept, items[i+1:]...)
		r.lists[userID] = kept
		return true, nil
	}
	return false, nil
}

func (r *Repository) Toggle(_ context.Context, userID int64, item domain.Item) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.lists[userID]
	for i, existing := range items {
		if existing.ProductID == item.ProductID {
			r.lists[userID] = append(items[:i:i], items[i+1:]...)
			return false, nil
		}
	}
	r.lists[userID] = append(items, item)
	return true, nil
}

func (r *Repository) List(_ context.Context, userID int64) ([]domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := r.lists[userID]
	out := make([]domain.Item, len(items))
	copy(out, items)
	return out, nil
}

func (r *Repository) Contains(_ context.Context, userID int64, productIDs []int64) (map[int64]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	present := make(map[int64]bool, len(productIDs))
	for _, id := range productIDs {
		present[id] = false
	}
	for _, item := range r.lists[userID] {
		if _, asked := present[item.ProductID]; asked {
			present[item.ProductID] = true
		}
	}
	return present, nil
}

func (r *Repository) Clear(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lists, userID)
	return nil
}
