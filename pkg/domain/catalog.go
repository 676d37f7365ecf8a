package domain

import (
	"fmt"
)

// Catalog is the immutable seed table of SKUs. Its order is the order in
// which items were defined.
type Catalog struct {
	ledger *Ledger
}

// NewCatalog validates items and builds a Catalog from them.
// Names must be non-empty and unique after normalization; quantities and
// prices must not be negative.
func NewCatalog(items ...SKU) (*Catalog, error) {
	l := NewLedger()
	for i, item := range items {
		name := NormalizeName(item.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: item %d has no name", ErrInvalidCatalog, i)
		}
		if l.Has(name) {
			return nil, fmt.Errorf("%w: duplicate item %q", ErrInvalidCatalog, name)
		}
		if item.Quantity < 0 {
			return nil, fmt.Errorf("%w: item %q has negative quantity %d", ErrInvalidCatalog, name, item.Quantity)
		}
		if item.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: item %q has negative price %s", ErrInvalidCatalog, name, item.UnitPrice)
		}
		l.Put(item)
	}
	return &Catalog{ledger: l}, nil
}

// MustCatalog is like NewCatalog but panics on invalid input.
// It is intended for static seed tables.
func MustCatalog(items ...SKU) *Catalog {
	c, err := NewCatalog(items...)
	if err != nil {
		panic(err)
	}
	return c
}

// Get returns the catalog template for name.
func (c *Catalog) Get(name string) (SKU, bool) {
	return c.ledger.Get(name)
}

// Quantity returns the catalog-defined total for name, or 0 if unknown.
func (c *Catalog) Quantity(name string) int {
	item, _ := c.ledger.Get(name)
	return item.Quantity
}

// Items returns the catalog entries in definition order.
func (c *Catalog) Items() []SKU {
	return c.ledger.Items()
}

// Names returns the catalog names in definition order.
func (c *Catalog) Names() []string {
	return c.ledger.Names()
}

// Len returns the number of catalog items.
func (c *Catalog) Len() int {
	return c.ledger.Len()
}

// Inventory returns a fresh, independent inventory ledger seeded from the catalog.
func (c *Catalog) Inventory() *Ledger {
	return c.ledger.Clone()
}
