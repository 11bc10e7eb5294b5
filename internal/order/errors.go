package order

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnknownProduct  = errors.New("unknown product")
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// ValidationError names the field that made an order or payer unusable
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a ValidationError
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// UnknownProductError is returned when a catalog line names a product the catalog does not list
type UnknownProductError struct {
	Name string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("unknown product %q", e.Name)
}

func (e *UnknownProductError) Unwrap() error {
	return ErrUnknownProduct
}

// InvalidQuantityError carries the rejected quantity input
type InvalidQuantityError struct {
	Input string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %q: must be a positive integer", e.Input)
}

func (e *InvalidQuantityError) Unwrap() error {
	return ErrInvalidQuantity
}
