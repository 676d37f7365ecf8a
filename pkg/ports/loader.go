package ports

import (
	"context"

	"github.com/aretw0/shopkeep/pkg/domain"
)

// CatalogLoader defines how the seed catalog is obtained.
// This allows the catalog source (built-in table, file, document
// directory) to be decoupled from the engine.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) (*domain.Catalog, error)
}
