package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "0.1.0")

	out := buf.String()
	assert.Contains(t, out, "v0.1.0")
	assert.Equal(t, len(bannerLines)+3, strings.Count(out, "\n"))
}

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer(60)
	require.NoError(t, err)

	out, err := render("## Cart\n\n- **Banana** (yellow) Qty: 2, ₹100\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Banana")
	assert.Contains(t, out, "Cart")
}
