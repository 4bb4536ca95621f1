package application

import (
	"errors"
	"fmt"

	"github.com/llmndev/perfume-storefront/internal/domains/cart/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid cart input")
	// ErrCartNotLoaded is returned by AddItem when no cart was held; the cart has been
	// reloaded and the caller should retry.
	ErrCartNotLoaded = errors.New("cart was not loaded, retry after refresh")
	// ErrRemote wraps every failure reported by the remote cart API.
	ErrRemote = errors.New("cart API request failed")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidUserID) ||
		errors.Is(err, domain.ErrInvalidProductID) ||
		errors.Is(err, domain.ErrInvalidLineItemID) ||
		errors.Is(err, domain.ErrInvalidQuantity) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

func remoteError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrRemote, op, err)
}
