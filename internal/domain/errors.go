package domain

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound indicates the requested entity was not found or is not
	// visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique constraint was hit.
	ErrAlreadyExists = errors.New("already exists")
	// ErrAuthenticationRequired is returned for operations that need a customer identity.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrEmptyCart is returned when checking out a cart with no lines.
	ErrEmptyCart = errors.New("your cart is empty")
	// ErrInvalidAddress is returned when no address, or one not owned by the caller, is selected.
	ErrInvalidAddress = errors.New("please select a valid shipping address")
	// ErrCartChanged is returned when the cart was modified after it was reviewed.
	ErrCartChanged = errors.New("your cart has changed, please review it and try again")
	// ErrOrderNumberTaken signals an order number collision.
	ErrOrderNumberTaken = errors.New("order number already taken")
)

// InsufficientStockError names the product that could not cover the requested quantity.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

// AllocationCollisionError means every generated order number collided.
type AllocationCollisionError struct {
	Attempts int
}

func (e *AllocationCollisionError) Error() string {
	return fmt.Sprintf("order number allocation failed after %d attempts", e.Attempts)
}

func (e *AllocationCollisionError) Unwrap() error { return ErrOrderNumberTaken }

// PersistenceError hides storage failures from callers while keeping the cause.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "there was an error processing your order, please try again"
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ValidationError reports rejected user input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
