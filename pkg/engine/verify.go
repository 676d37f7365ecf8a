package engine

import (
	"fmt"
	"strings"

	"github.com/aretw0/shopkeep/pkg/domain"
)

// Verify checks the conservation invariant and non-negativity of every
// catalog item in s. It returns an error wrapping
// domain.ErrConservationViolated that lists each offending item.
func Verify(catalog *domain.Catalog, s *domain.Session) error {
	var problems []string
	for _, tmpl := range catalog.Items() {
		stock, _ := s.Inventory.Get(tmpl.Name)
		entry, inCart := s.Cart.Get(tmpl.Name)

		if stock.Quantity < 0 {
			problems = append(problems, fmt.Sprintf("%s: negative inventory %d", tmpl.Name, stock.Quantity))
		}
		if inCart && entry.Quantity <= 0 {
			problems = append(problems, fmt.Sprintf("%s: cart entry with quantity %d", tmpl.Name, entry.Quantity))
		}
		if got := stock.Quantity + entry.Quantity; got != tmpl.Quantity {
			problems = append(problems, fmt.Sprintf("%s: inventory %d + cart %d != catalog %d",
				tmpl.Name, stock.Quantity, entry.Quantity, tmpl.Quantity))
		}
	}
	for _, name := range s.Cart.Names() {
		if _, known := catalog.Get(name); !known {
			problems = append(problems, fmt.Sprintf("%s: cart entry for unknown item", name))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrConservationViolated, strings.Join(problems, "; "))
	}
	return nil
}
