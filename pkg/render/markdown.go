package render

import (
	"fmt"
	"strings"
)

// Markdown renders p as a markdown document with an inventory and a cart section.
func Markdown(p Projection, t Theme) string {
	var b strings.Builder

	b.WriteString("## Inventory\n\n")
	if len(p.Inventory) == 0 {
		b.WriteString("_No items._\n")
	}
	writeRecords(&b, p.Inventory, t.Inventory, t)

	b.WriteString("\n## Cart\n\n")
	if len(p.Cart) == 0 {
		b.WriteString("_Your cart is empty._\n")
		return b.String()
	}
	writeRecords(&b, p.Cart, t.Cart, t)
	fmt.Fprintf(&b, "\n**Total:** %s\n", t.Price(p.CartTotal))
	return b.String()
}

func writeRecords(b *strings.Builder, records []Record, d Density, t Theme) {
	for _, r := range records {
		fmt.Fprintf(b, "- **%s** (%s) %s: %d, %s\n",
			Title(r.Name), r.Color, d.Label(), r.Quantity, t.Price(r.TotalPrice))
	}
}
