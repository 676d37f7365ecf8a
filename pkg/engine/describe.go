package engine

import (
	"errors"
	"fmt"

	"github.com/aretw0/shopkeep/pkg/domain"
)

// Describe converts an intent failure into the plain-language message shown
// to the user in place of the assistant reply.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var stock *domain.OutOfStockError
	if errors.As(err, &stock) {
		return fmt.Sprintf("Unable to add %d %s(s). Only %d available in stock.", stock.Requested, stock.Name, stock.Available)
	}

	name := ""
	var itemErr *domain.ItemError
	if errors.As(err, &itemErr) {
		name = itemErr.Name
	}

	switch {
	case errors.Is(err, domain.ErrItemNotAvailable):
		return fmt.Sprintf("Unable to add %s. Item not available in inventory.", name)
	case errors.Is(err, domain.ErrNotInCart):
		return fmt.Sprintf("Unable to remove %s. Item not in cart.", name)
	case errors.Is(err, domain.ErrUpdateConflict):
		return fmt.Sprintf("Unable to update %s while it is in your cart.", name)
	case errors.Is(err, domain.ErrUnrecognizedIntent):
		return "Sorry, I don't know how to do that yet."
	case errors.Is(err, domain.ErrInvalidIntent):
		return fmt.Sprintf("Sorry, that request was incomplete: %v.", err)
	default:
		return fmt.Sprintf("Something went wrong: %v", err)
	}
}
