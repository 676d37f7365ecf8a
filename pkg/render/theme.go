package render

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Density selects how much a card shows.
type Density string

const (
	// Compact cards carry a stock label and are used for the inventory.
	Compact Density = "compact"
	// Full cards carry a quantity label and are used for the cart.
	Full Density = "full"
)

// ParseDensity maps a configuration string to a Density. The empty
// string yields the empty Density, meaning "use the theme default".
func ParseDensity(s string) (Density, error) {
	switch d := Density(strings.ToLower(strings.TrimSpace(s))); d {
	case "", Compact, Full:
		return d, nil
	default:
		return "", fmt.Errorf("unknown render density %q", s)
	}
}

// Label returns the quantity label for the density.
func (d Density) Label() string {
	if d == Full {
		return "Qty"
	}
	return "Stock"
}

// Theme controls textual presentation.
type Theme struct {
	Inventory Density
	Cart      Density
	Currency  string
	// Places is the number of decimal places shown for prices.
	Places int32
}

// DefaultTheme matches the web page: compact inventory cards, full cart
// cards, whole rupees.
func DefaultTheme() Theme {
	return Theme{
		Inventory: Compact,
		Cart:      Full,
		Currency:  "₹",
	}
}

// WithDensity forces d on both sections. An empty d leaves t unchanged.
func (t Theme) WithDensity(d Density) Theme {
	if d != "" {
		t.Inventory = d
		t.Cart = d
	}
	return t
}

// Price formats an amount with the theme currency.
func (t Theme) Price(d decimal.Decimal) string {
	return t.Currency + d.StringFixed(t.Places)
}

var titler = cases.Title(language.English)

// Title returns the display form of an item name.
func Title(name string) string {
	return titler.String(name)
}
