package application

import (
	"errors"
	"fmt"

	"github.com/llmndev/perfume-storefront/internal/domains/wishlist/domain"
)

var ErrInvalidInput = errors.New("invalid wishlist input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidUserID) ||
		errors.Is(err, domain.ErrInvalidProductID) ||
		errors.Is(err, domain.ErrInvalidPrice) ||
		errors.Is(err, domain.ErrMissingName) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
