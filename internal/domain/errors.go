package domain

import (
	"errors"
	"fmt"
)

var (
	ErrConflict           = errors.New("cart line already exists")
	ErrValidation         = errors.New("validation failed")
	ErrTransport          = errors.New("transport failure")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrNotFound           = errors.New("not found")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
)

var (
	ErrEmptyCart        = fmt.Errorf("%w: cart is empty", ErrValidation)
	ErrInvalidCartTotal = fmt.Errorf("%w: invalid cart total", ErrValidation)
	ErrMixedCurrency    = fmt.Errorf("%w: cart lines use different currencies", ErrValidation)
	ErrMissingContact   = fmt.Errorf("%w: contact name and email are required", ErrValidation)
	ErrInvalidQuantity  = fmt.Errorf("%w: quantity must be positive and fit in 32 bits", ErrValidation)
	ErrInvalidAmount    = fmt.Errorf("%w: amount must be positive in whole minor units", ErrValidation)
	ErrCurrencyMismatch = fmt.Errorf("%w: currency does not match the wallet", ErrValidation)
)

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
