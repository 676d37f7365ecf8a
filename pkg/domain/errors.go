package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidSessionID is returned for empty or oversized session IDs.
var ErrInvalidSessionID = errors.New("invalid session id")

var (
	// ErrItemNotAvailable is returned when an item was never part of the catalog.
	ErrItemNotAvailable = errors.New("item not available in inventory")

	// ErrOutOfStock is matched by *OutOfStockError.
	ErrOutOfStock = errors.New("out of stock")

	// ErrNotInCart is returned when removing an item the cart does not hold.
	ErrNotInCart = errors.New("item not in cart")

	// ErrUnrecognizedIntent is returned for tool calls outside the known set.
	ErrUnrecognizedIntent = errors.New("unrecognized intent")

	// ErrInvalidIntent is returned when intent arguments fail validation.
	ErrInvalidIntent = errors.New("invalid intent")

	// ErrUpdateConflict is returned when an update would desynchronize a cart entry.
	ErrUpdateConflict = errors.New("update conflicts with cart contents")

	// ErrConservationViolated reports a broken inventory/cart balance.
	ErrConservationViolated = errors.New("conservation invariant violated")

	// ErrInvalidCatalog is returned when a catalog definition is rejected.
	ErrInvalidCatalog = errors.New("invalid catalog")
)

// OutOfStockError carries the requested and available quantities of a failed add.
type OutOfStockError struct {
	Name      string
	Requested int
	Available int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("out of stock: %s requested=%d available=%d", e.Name, e.Requested, e.Available)
}

// Is reports ErrOutOfStock as the error's kind.
func (e *OutOfStockError) Is(target error) bool {
	return target == ErrOutOfStock
}

// ItemError attaches the operation and item name to a business failure.
type ItemError struct {
	Op   string
	Name string
	Err  error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
