package render_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/shopkeep/pkg/domain"
	"github.com/aretw0/shopkeep/pkg/engine"
	"github.com/aretw0/shopkeep/pkg/render"
	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed() *domain.Catalog {
	return domain.MustCatalog(
		domain.SKU{Name: "banana", Color: "yellow", Quantity: 4, UnitPrice: decimal.NewFromInt(50)},
		domain.SKU{Name: "apple", Color: "red", Quantity: 5, UnitPrice: decimal.NewFromInt(80)},
		domain.SKU{Name: "orange", Color: "orange", Quantity: 3, UnitPrice: decimal.NewFromInt(60)},
		domain.SKU{Name: "grape", Color: "purple", Quantity: 6, UnitPrice: decimal.NewFromInt(120)},
	)
}

func shoppedSession(t *testing.T) *domain.Session {
	t.Helper()
	c := seed()
	s := domain.NewSession("golden", c)
	res := engine.New(c).Apply(s, []domain.Intent{
		domain.AddItem{Name: "grape", Quantity: 2},
		domain.AddItem{Name: "banana", Quantity: 1},
	})
	require.True(t, res.Changed)
	return s
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestMarkdown_Golden(t *testing.T) {
	g := golden(t)

	t.Run("Catalog", func(t *testing.T) {
		md := render.Markdown(render.ProjectCatalog(seed()), render.DefaultTheme())
		g.Assert(t, "catalog_default", []byte(md))
	})

	t.Run("After Adds", func(t *testing.T) {
		md := render.Markdown(render.Project(shoppedSession(t)), render.DefaultTheme())
		g.Assert(t, "session_after_adds", []byte(md))
	})

	t.Run("Full Density", func(t *testing.T) {
		theme := render.DefaultTheme().WithDensity(render.Full)
		md := render.Markdown(render.Project(shoppedSession(t)), theme)
		g.Assert(t, "session_full_density", []byte(md))
	})
}

func TestProjection_JSONGolden(t *testing.T) {
	data, err := json.MarshalIndent(render.Project(shoppedSession(t)), "", "  ")
	require.NoError(t, err)
	golden(t).Assert(t, "projection", append(data, '\n'))
}

func TestProject_Totals(t *testing.T) {
	p := render.Project(shoppedSession(t))

	require.Len(t, p.Cart, 2)
	assert.True(t, p.Cart[0].TotalPrice.Equal(decimal.NewFromInt(240)))
	assert.True(t, p.Cart[1].TotalPrice.Equal(decimal.NewFromInt(50)))
	assert.True(t, p.CartTotal.Equal(decimal.NewFromInt(290)))

	// Inventory cards carry the unit price.
	assert.True(t, p.Inventory[3].TotalPrice.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, 4, p.Inventory[3].Quantity)
}

func TestProject_ReAddedItemMovesLast(t *testing.T) {
	c := seed()
	s := shoppedSession(t)
	eng := engine.New(c)

	eng.Apply(s, []domain.Intent{
		domain.RemoveItem{Name: "grape", RemoveAll: true},
		domain.AddItem{Name: "grape", Quantity: 1},
	})

	p := render.Project(s)
	require.Len(t, p.Cart, 2)
	assert.Equal(t, "banana", p.Cart[0].Name)
	assert.Equal(t, "grape", p.Cart[1].Name)

	// Inventory order is untouched by cart churn.
	names := make([]string, 0, len(p.Inventory))
	for _, r := range p.Inventory {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"banana", "apple", "orange", "grape"}, names)
}

func TestProjectCatalog_IsIndependent(t *testing.T) {
	c := seed()
	p := render.ProjectCatalog(c)
	p.Inventory[0].Quantity = 99

	assert.Equal(t, 4, c.Quantity("banana"))
	assert.Empty(t, p.Cart)
	assert.True(t, p.CartTotal.IsZero())
}

func TestColorClass(t *testing.T) {
	tests := []struct {
		color string
		want  string
	}{
		{"yellow", "bg-yellow-400"},
		{"Red", "bg-red-500"},
		{"brown", "bg-amber-700"},
		{"pink", "bg-pink-500"},
		{"teal", render.FallbackClass},
		{"", render.FallbackClass},
	}
	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			assert.Equal(t, tt.want, render.ColorClass(tt.color))
		})
	}
}

func TestParseDensity(t *testing.T) {
	d, err := render.ParseDensity(" FULL ")
	require.NoError(t, err)
	assert.Equal(t, render.Full, d)
	assert.Equal(t, "Qty", d.Label())
	assert.Equal(t, "Stock", render.Compact.Label())

	_, err = render.ParseDensity("huge")
	assert.Error(t, err)

	theme := render.DefaultTheme().WithDensity("")
	assert.Equal(t, render.DefaultTheme(), theme)
}

func TestTheme_Price(t *testing.T) {
	theme := render.DefaultTheme()
	assert.Equal(t, "₹50", theme.Price(decimal.NewFromInt(50)))
	assert.Equal(t, "₹13", theme.Price(decimal.RequireFromString("12.5")))

	theme.Currency = "$"
	theme.Places = 2
	assert.Equal(t, "$12.50", theme.Price(decimal.RequireFromString("12.5")))
}
