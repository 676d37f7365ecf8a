package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/shopkeep/pkg/domain"
	"github.com/shopspring/decimal"
)

// Item is the document form of a SKU. Numeric fields accept integers,
// floats, json.Number and numeric strings, since YAML, JSON and frontmatter
// decoders disagree on number types.
type Item struct {
	Name     string `yaml:"name" json:"name" mapstructure:"name"`
	Color    string `yaml:"color" json:"color" mapstructure:"color"`
	Quantity any    `yaml:"quantity" json:"quantity" mapstructure:"quantity"`
	Price    any    `yaml:"price" json:"price" mapstructure:"price"`
	// Order positions the item in directory catalogs; lower comes first.
	Order any `yaml:"order,omitempty" json:"order,omitempty" mapstructure:"order"`
}

// SKU converts the item into a domain SKU.
func (it Item) SKU() (domain.SKU, error) {
	qty, err := ToInt(it.Quantity)
	if err != nil {
		return domain.SKU{}, fmt.Errorf("%w: %s: quantity: %v", domain.ErrInvalidCatalog, it.Name, err)
	}
	price, err := ToDecimal(it.Price)
	if err != nil {
		return domain.SKU{}, fmt.Errorf("%w: %s: price: %v", domain.ErrInvalidCatalog, it.Name, err)
	}
	return domain.SKU{
		Name:      it.Name,
		Color:     strings.TrimSpace(it.Color),
		Quantity:  qty,
		UnitPrice: price,
	}, nil
}

// Build converts items into a validated Catalog, preserving their order.
func Build(items []Item) (*domain.Catalog, error) {
	skus := make([]domain.SKU, 0, len(items))
	for _, it := range items {
		sku, err := it.SKU()
		if err != nil {
			return nil, err
		}
		skus = append(skus, sku)
	}
	return domain.NewCatalog(skus...)
}

// ToInt converts a decoded number into an int. Nil yields 0.
func ToInt(v any) (int, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not a whole number", n)
		}
		return int(n), nil
	case json.Number:
		return strconv.Atoi(n.String())
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	default:
		return 0, fmt.Errorf("unsupported number type %T", v)
	}
}

// ToDecimal converts a decoded number into a decimal. Nil yields zero.
func ToDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case uint64:
		return decimal.NewFromInt(int64(n)), nil
	case float64:
		return decimal.NewFromFloat(n), nil
	case json.Number:
		return decimal.NewFromString(n.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(n))
	default:
		return decimal.Zero, fmt.Errorf("unsupported number type %T", v)
	}
}
