package render

import (
	"github.com/aretw0/shopkeep/pkg/domain"
	"github.com/shopspring/decimal"
)

// Record is one display card.
type Record struct {
	Name      string          `json:"name"`
	Color     string          `json:"color"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	// TotalPrice is the unit price for inventory records and
	// unit price times quantity for cart records.
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Projection is the display form of a session.
type Projection struct {
	Inventory []Record        `json:"inventory"`
	Cart      []Record        `json:"cart"`
	CartTotal decimal.Decimal `json:"cart_total"`
}

// Project renders the current ledgers of s.
func Project(s *domain.Session) Projection {
	return project(s.Inventory, s.Cart)
}

// ProjectCatalog renders the initial state: the catalog as inventory and an
// empty cart.
func ProjectCatalog(c *domain.Catalog) Projection {
	return project(c.Inventory(), domain.NewLedger())
}

func project(inventory, cart *domain.Ledger) Projection {
	p := Projection{
		Inventory: make([]Record, 0, inventory.Len()),
		Cart:      make([]Record, 0, cart.Len()),
		CartTotal: decimal.Zero,
	}
	for _, item := range inventory.Items() {
		p.Inventory = append(p.Inventory, Record{
			Name:       item.Name,
			Color:      item.Color,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.UnitPrice,
		})
	}
	for _, item := range cart.Items() {
		total := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		p.Cart = append(p.Cart, Record{
			Name:       item.Name,
			Color:      item.Color,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: total,
		})
		p.CartTotal = p.CartTotal.Add(total)
	}
	return p
}
