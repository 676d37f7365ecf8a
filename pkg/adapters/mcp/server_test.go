package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/shopkeep/pkg/adapters/memory"
	"github.com/aretw0/shopkeep/pkg/catalog"
	"github.com/aretw0/shopkeep/pkg/domain"
	"github.com/aretw0/shopkeep/pkg/engine"
	"github.com/aretw0/shopkeep/pkg/session"
	"github.com/aretw0/shopkeep/pkg/turn"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	c := catalog.Default()
	svc := turn.New(session.NewManager(memory.NewStore(), c), engine.New(c), nil)
	return NewServer(svc, "test")
}

func callTool(t *testing.T, s *Server, kind domain.IntentKind, args map[string]any) ToolResponse {
	t.Helper()
	resp, err := s.cartTool(kind)(context.Background(), mcp.CallToolRequest{}, args)
	require.NoError(t, err)
	return resp
}

func TestCartTools(t *testing.T) {
	s := newTestServer()

	resp := callTool(t, s, domain.KindAdd, map[string]any{"session_id": "s1", "name": "banana", "quantity": float64(3)})
	assert.Equal(t, "s1", resp.SessionID)
	assert.Empty(t, resp.Reply)
	assert.True(t, resp.Changed)
	require.NotNil(t, resp.Projection)
	require.Len(t, resp.Projection.Cart, 1)
	assert.Equal(t, 3, resp.Projection.Cart[0].Quantity)
	assert.Equal(t, "yellow", resp.Projection.Cart[0].Color)

	resp = callTool(t, s, domain.KindRemove, map[string]any{"session_id": "s1", "name": "banana", "quantity": float64(1)})
	assert.True(t, resp.Changed)
	assert.Equal(t, 2, resp.Projection.Cart[0].Quantity)

	resp = callTool(t, s, domain.KindUpdate, map[string]any{"session_id": "s1", "name": "grape", "new_color": "green"})
	assert.True(t, resp.Changed)
	assert.Equal(t, "green", resp.Projection.Inventory[3].Color)
	require.Len(t, resp.Outcomes, 1)
	assert.True(t, resp.Outcomes[0].OK)

	resp = callTool(t, s, domain.KindRemove, map[string]any{"session_id": "s1", "name": "banana", "remove_all": true})
	assert.True(t, resp.Changed)
	assert.Empty(t, resp.Projection.Cart)
	assert.Equal(t, 4, resp.Projection.Inventory[0].Quantity)
}

func TestCartTools_Failures(t *testing.T) {
	s := newTestServer()

	resp := callTool(t, s, domain.KindAdd, map[string]any{"name": "banana", "quantity": float64(9)})
	assert.Equal(t, DefaultSessionID, resp.SessionID)
	assert.Equal(t, "Unable to add 9 banana(s). Only 4 available in stock.", resp.Reply)
	assert.False(t, resp.Changed)
	assert.Nil(t, resp.Projection)

	resp = callTool(t, s, domain.KindAdd, map[string]any{"name": "kiwi"})
	assert.Equal(t, "Unable to add kiwi. Item not available in inventory.", resp.Reply)

	resp = callTool(t, s, domain.KindAdd, map[string]any{"quantity": float64(1)})
	require.Len(t, resp.Outcomes, 1)
	assert.Equal(t, domain.KindMalformed, resp.Outcomes[0].Kind)
	assert.False(t, resp.Outcomes[0].OK)
	assert.Contains(t, resp.Reply, "incomplete")
}

func TestCartTools_InvalidSession(t *testing.T) {
	s := newTestServer()
	_, err := s.cartTool(domain.KindAdd)(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"session_id": string(make([]byte, 200)),
		"name":       "banana",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSessionID)
}

func TestViewCart(t *testing.T) {
	s := newTestServer()
	callTool(t, s, domain.KindAdd, map[string]any{"session_id": "s2", "name": "apple", "quantity": 2})

	resp, err := s.handleView(context.Background(), mcp.CallToolRequest{}, map[string]any{"session_id": "s2"})
	require.NoError(t, err)
	require.NotNil(t, resp.Projection)
	require.Len(t, resp.Projection.Cart, 1)
	assert.Equal(t, "160", resp.Projection.CartTotal.String())

	other, err := s.handleView(context.Background(), mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.Empty(t, other.Projection.Cart, "sessions are isolated")
}

func TestCatalogResource(t *testing.T) {
	s := newTestServer()

	contents, err := s.readCatalog(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, CatalogURI, text.URI)

	var items []struct {
		Name      string `json:"name"`
		Quantity  int    `json:"quantity"`
		UnitPrice string `json:"unit_price"`
	}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &items))
	require.Len(t, items, 4)
	assert.Equal(t, "banana", items[0].Name)
	assert.Equal(t, "50", items[0].UnitPrice)
	assert.Equal(t, "grape", items[3].Name)
}

func TestSplitSession(t *testing.T) {
	id, rest := splitSession(map[string]any{"session_id": "abc", "name": "banana"})
	assert.Equal(t, "abc", id)
	assert.Equal(t, map[string]any{"name": "banana"}, rest)

	id, _ = splitSession(map[string]any{"session_id": 42})
	assert.Equal(t, DefaultSessionID, id)
}
