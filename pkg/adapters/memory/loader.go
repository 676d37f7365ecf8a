package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/shopkeep/pkg/domain"
)

// Loader implements ports.CatalogLoader over an in-memory item table.
type Loader struct {
	items []domain.SKU
}

// NewLoader creates a Loader serving the given items in order.
func NewLoader(items ...domain.SKU) *Loader {
	copied := make([]domain.SKU, len(items))
	copy(copied, items)
	return &Loader{items: copied}
}

// NewLoaderFromJSON creates a Loader from a JSON array of SKUs.
// This keeps test fixtures close to the wire format.
func NewLoaderFromJSON(data []byte) (*Loader, error) {
	var items []domain.SKU
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode catalog items: %w", err)
	}
	return &Loader{items: items}, nil
}

// LoadCatalog validates the items and builds a Catalog.
func (l *Loader) LoadCatalog(ctx context.Context) (*domain.Catalog, error) {
	return domain.NewCatalog(l.items...)
}
