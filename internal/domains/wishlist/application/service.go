package application

import (
	"context"
	"fmt"
	"time"

	"github.com/llmndev/perfume-storefront/internal/domains/wishlist/domain"
	"github.com/llmndev/perfume-storefront/internal/domains/wishlist/ports"
)

// MaxContainsBatch bounds the products checked by a single Contains call.
const MaxContainsBatch = 100

// Service orchestrates wishlist use cases.
type Service struct {
	repo ports.Repository
	now  func() time.Time
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Add(ctx context.Context, userID int64, item domain.Item) (*domain.Wishlist, error) {
	if err := s.insert(ctx, userID, item); err != nil {
		return nil, err
	}
	return s.List(ctx, userID)
}

func (s *Service) Remove(ctx context.Context, userID, productID int64) (*domain.Wishlist, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, mapError(err)
	}
	if err := domain.ValidateProductID(productID); err != nil {
		return nil, mapError(err)
	}
	if _, err := s.repo.Remove(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.List(ctx, userID)
}

// Toggle flips membership of the product and reports whether it is on the list
// afterwards. Switching a product off needs only its id.
func (s *Service) Toggle(ctx context.Context, userID int64, item domain.Item) (bool, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return false, mapError(err)
	}
	if err := domain.ValidateProductID(item.ProductID); err != nil {
		return false, mapError(err)
	}
	if err := item.Validate(); err != nil {
		// without item details the toggle can only switch the product off
		removed, rmErr := s.repo.Remove(ctx, userID, item.ProductID)
		if rmErr != nil {
			return false, rmErr
		}
		if removed {
			return false, nil
		}
		return false, mapError(err)
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = s.now().UTC()
	}
	return s.repo.Toggle(ctx, userID, item)
}

// Contains reports membership for each requested product. Duplicates are collapsed.
func (s *Service) Contains(ctx context.Context, userID int64, productIDs []int64) (map[int64]bool, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, mapError(err)
	}
	unique := make([]int64, 0, len(productIDs))
	seen := make(map[int64]struct{}, len(productIDs))
	for _, id := range productIDs {
		if err := domain.ValidateProductID(id); err != nil {
			return nil, mapError(err)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) > MaxContainsBatch {
		return nil, fmt.Errorf("%w: at most %d products per lookup", ErrInvalidInput, MaxContainsBatch)
	}
	if len(unique) == 0 {
		return map[int64]bool{}, nil
	}
	found, err := s.repo.Contains(ctx, userID, unique)
	if err != nil {
		return nil, err
	}
	result := make(map[int64]bool, len(unique))
	for _, id := range unique {
		result[id] = found[id]
	}
	return result, nil
}

func (s *Service) List(ctx context.Context, userID int64) (*domain.Wishlist, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, mapError(err)
	}
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.Wishlist{UserID: userID, Items: items}, nil
}

func (s *Service) Clear(ctx context.Context, userID int64) error {
	if err := domain.ValidateUserID(userID); err != nil {
		return mapError(err)
	}
	return s.repo.Clear(ctx, userID)
}

func (s *Service) insert(ctx context.Context, userID int64, item domain.Item) error {
	if err := domain.ValidateUserID(userID); err != nil {
		return mapError(err)
	}
	if err := item.Validate(); err != nil {
		return mapError(err)
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = s.now().UTC()
	}
	_, err := s.repo.Add(ctx, userID, item)
	return err
}

var _ ports.Service = (*Service)(nil)
