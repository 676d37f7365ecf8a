package loam

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/shopkeep/pkg/catalog"
	"github.com/aretw0/shopkeep/pkg/domain"
)

// Loader adapts a Loam repository of item documents to ports.CatalogLoader.
// Each document (markdown frontmatter, json or yaml) describes one SKU.
type Loader struct {
	Repo *loam.TypedRepository[catalog.Item]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[catalog.Item]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only Loam repository at dir.
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode yields json.Number for every numeric field, whatever the
	// document format. The catalog is never written.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[catalog.Item](repo)), nil
}

type entry struct {
	id    string
	order int
	item  catalog.Item
}

// LoadCatalog lists the repository and builds a Catalog ordered by each
// document's order field, then by document ID. Documents without an
// order come after those with one.
func (l *Loader) LoadCatalog(ctx context.Context) (*domain.Catalog, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	entries := make([]entry, 0, len(docs))

	for _, doc := range docs {
		id := trimExtension(doc.ID)
		item := doc.Data
		if item.Quantity == nil && item.Name == "" {
			// Not an item document (README and the like).
			continue
		}
		if item.Name == "" {
			item.Name = filepath.Base(id)
		}

		key := domain.NormalizeName(item.Name)
		if existing, ok := seen[key]; ok {
			return nil, fmt.Errorf("%w: item %q is defined in both '%s' and '%s'", domain.ErrInvalidCatalog, key, existing, doc.ID)
		}
		seen[key] = doc.ID

		order := math.MaxInt
		if item.Order != nil {
			order, err = catalog.ToInt(item.Order)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: order: %v", domain.ErrInvalidCatalog, doc.ID, err)
			}
		}
		entries = append(entries, entry{id: id, order: order, item: item})
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no item documents found", domain.ErrInvalidCatalog)
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		return cmp.Or(cmp.Compare(a.order, b.order), strings.Compare(a.id, b.id))
	})

	items := make([]catalog.Item, len(entries))
	for i, e := range entries {
		items[i] = e.item
	}
	return catalog.Build(items)
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
