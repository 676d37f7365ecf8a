package catalog

import (
	"context"

	"github.com/aretw0/shopkeep/pkg/domain"
	"github.com/shopspring/decimal"
)

// Default returns the built-in seed table.
func Default() *domain.Catalog {
	return domain.MustCatalog(
		domain.SKU{Name: "banana", Color: "yellow", Quantity: 4, UnitPrice: decimal.NewFromInt(50)},
		domain.SKU{Name: "apple", Color: "red", Quantity: 5, UnitPrice: decimal.NewFromInt(80)},
		domain.SKU{Name: "orange", Color: "orange", Quantity: 3, UnitPrice: decimal.NewFromInt(60)},
		domain.SKU{Name: "grape", Color: "purple", Quantity: 6, UnitPrice: decimal.NewFromInt(120)},
	)
}

// DefaultLoader implements ports.CatalogLoader with the built-in table.
type DefaultLoader struct{}

// LoadCatalog returns Default().
func (DefaultLoader) LoadCatalog(ctx context.Context) (*domain.Catalog, error) {
	return Default(), nil
}
