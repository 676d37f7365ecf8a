package turn_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/shopkeep/internal/logging"
	"github.com/aretw0/shopkeep/pkg/adapters/memory"
	"github.com/aretw0/shopkeep/pkg/domain"
	"github.com/aretw0/shopkeep/pkg/engine"
	"github.com/aretw0/shopkeep/pkg/ports"
	"github.com/aretw0/shopkeep/pkg/session"
	"github.com/aretw0/shopkeep/pkg/turn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *domain.Catalog {
	return domain.MustCatalog(
		domain.SKU{Name: "banana", Color: "yellow", Quantity: 4, UnitPrice: decimal.NewFromInt(50)},
		domain.SKU{Name: "apple", Color: "red", Quantity: 5, UnitPrice: decimal.NewFromInt(80)},
	)
}

func call(tool string, args map[string]any) domain.ToolCall {
	return domain.ToolCall{ToolName: tool, Args: args}
}

// scripted answers every turn with the same response.
func scripted(reply string, calls ...domain.ToolCall) ports.IntentSource {
	return ports.IntentSourceFunc(func(ctx context.Context, req ports.TurnRequest) (ports.TurnResponse, error) {
		return ports.TurnResponse{Reply: reply, ToolCalls: calls}, nil
	})
}

func newService(c *domain.Catalog, src ports.IntentSource, opts ...turn.Option) *turn.Service {
	mgr := session.NewManager(memory.NewStore(), c)
	return turn.New(mgr, engine.New(c), src, opts...)
}

func TestHandle_AddChangesState(t *testing.T) {
	svc := newService(testCatalog(), scripted("Added 2 bananas to your cart.",
		call("add_card", map[string]any{"name": "banana", "color": "yellow", "quantity": float64(2)})))
	ctx := context.Background()

	res, err := svc.Handle(ctx, "default", "add 2 bananas")
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "Added 2 bananas to your cart.", res.Reply)
	assert.False(t, res.Failed())
	assert.True(t, res.Changed)
	require.Len(t, res.Outcomes, 1)
	assert.True(t, res.Outcomes[0].OK)
	assert.Equal(t, domain.KindAdd, res.Outcomes[0].Kind)

	require.NotNil(t, res.Projection)
	require.Len(t, res.Projection.Cart, 1)
	assert.Equal(t, 2, res.Projection.Cart[0].Quantity)
	assert.True(t, res.Projection.CartTotal.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 2, res.Projection.Inventory[0].Quantity)

	s, err := svc.Sessions().Load(ctx, "default")
	require.NoError(t, err)
	require.Len(t, s.History, 2)
	assert.Equal(t, domain.Message{Role: domain.RoleUser, Content: "add 2 bananas"}, s.History[0])
	assert.Equal(t, domain.RoleAssistant, s.History[1].Role)
}

func TestHandle_FailureReplacesReply(t *testing.T) {
	svc := newService(testCatalog(), scripted("Sure!",
		call("add_card", map[string]any{"name": "banana", "quantity": 5})))

	res, err := svc.Handle(context.Background(), "s1", "add 5 bananas")
	require.NoError(t, err)

	assert.Equal(t, "Unable to add 5 banana(s). Only 4 available in stock.", res.Reply)
	assert.Equal(t, res.Reply, res.Error)
	assert.False(t, res.Changed)
	assert.Nil(t, res.Projection, "unchanged turns carry no projection")
}

func TestHandle_FirstFailureWins(t *testing.T) {
	svc := newService(testCatalog(), scripted("Done.",
		call("remove_card", map[string]any{"name": "kiwi"}),
		call("add_card", map[string]any{"name": "apple", "quantity": 1}),
		call("add_card", map[string]any{"name": "kiwi", "quantity": 1}),
	))

	res, err := svc.Handle(context.Background(), "s1", "mixed")
	require.NoError(t, err)

	assert.Equal(t, "Unable to remove kiwi. Item not in cart.", res.Reply)
	assert.True(t, res.Changed, "the apple add still applied")
	require.NotNil(t, res.Projection)
	require.Len(t, res.Outcomes, 3)
	assert.False(t, res.Outcomes[0].OK)
	assert.True(t, res.Outcomes[1].OK)
	assert.Equal(t, "Unable to add kiwi. Item not available in inventory.", res.Outcomes[2].Error)
}

func TestHandle_UnrecognizedTool(t *testing.T) {
	svc := newService(testCatalog(), scripted("Checking...", call("fact_check", map[string]any{"claim": "x"})))

	res, err := svc.Handle(context.Background(), "s1", "is this true?")
	require.NoError(t, err)
	assert.Equal(t, "Sorry, I don't know how to do that yet.", res.Reply)
	assert.Equal(t, domain.KindUnrecognized, res.Outcomes[0].Kind)
	assert.False(t, res.Changed)
}

func TestHandle_SourceFailureDegrades(t *testing.T) {
	src := ports.IntentSourceFunc(func(ctx context.Context, req ports.TurnRequest) (ports.TurnResponse, error) {
		return ports.TurnResponse{}, errors.New("model unavailable")
	})
	svc := newService(testCatalog(), src)
	ctx := context.Background()

	res, err := svc.Handle(ctx, "s1", "add a banana")
	require.NoError(t, err, "collaborator failures never fail the turn")

	assert.True(t, res.Degraded)
	assert.Equal(t, "Sorry, I could not process that request: model unavailable", res.Reply)
	assert.False(t, res.Changed)
	assert.Empty(t, res.Outcomes)

	s, err := svc.Sessions().Load(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, s.History, 2)
}

func TestHandle_NoInterpreterDegrades(t *testing.T) {
	svc := newService(testCatalog(), nil)
	res, err := svc.Handle(context.Background(), "s1", "hello")
	require.NoError(t, err)
	assert.True(t, res.Degraded)
}

func TestHandle_PassesHistory(t *testing.T) {
	var mu sync.Mutex
	var seen [][]domain.Message
	src := ports.IntentSourceFunc(func(ctx context.Context, req ports.TurnRequest) (ports.TurnResponse, error) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, req.History)
		return ports.TurnResponse{Reply: "ok " + req.Message}, nil
	})
	svc := newService(testCatalog(), src, turn.WithHistoryMax(3))
	ctx := context.Background()

	for _, msg := range []string{"one", "two", "three"} {
		_, err := svc.Handle(ctx, "s1", msg)
		require.NoError(t, err)
	}

	require.Len(t, seen, 3)
	assert.Empty(t, seen[0])
	assert.Len(t, seen[1], 2)
	assert.Len(t, seen[2], 3, "history is bounded")
	assert.Equal(t, "ok one", seen[2][0].Content)
}

func TestHandle_RejectsBadInput(t *testing.T) {
	echo := ports.IntentSourceFunc(func(ctx context.Context, req ports.TurnRequest) (ports.TurnResponse, error) {
		return ports.TurnResponse{Reply: req.Message}, nil
	})
	svc := newService(testCatalog(), echo, turn.WithMaxInputSize(8))
	ctx := context.Background()

	_, err := svc.Handle(ctx, "s1", strings.Repeat("x", 9))
	assert.ErrorIs(t, err, turn.ErrInputTooLarge)

	_, err = svc.Handle(ctx, "", "hello")
	assert.ErrorIs(t, err, domain.ErrInvalidSessionID)

	res, err := svc.Handle(ctx, "s1", "h\x1bi\x00")
	require.NoError(t, err)
	assert.Equal(t, "hi", res.Reply, "control characters are stripped before interpretation")
}

func TestHandle_Hooks(t *testing.T) {
	var intents []*turn.IntentEvent
	var turns []*turn.TurnEvent
	svc := newService(testCatalog(),
		scripted("ok",
			call("add_card", map[string]any{"name": "apple"}),
			call("update_card", map[string]any{"name": "apple", "new_quantity": 9}),
		),
		turn.WithHooks(turn.Hooks{
			OnIntent: func(ctx context.Context, ev *turn.IntentEvent) { intents = append(intents, ev) },
		}),
		turn.WithHooks(turn.Hooks{
			OnTurn: func(ctx context.Context, ev *turn.TurnEvent) { turns = append(turns, ev) },
		}),
	)

	res, err := svc.Handle(context.Background(), "s1", "go")
	require.NoError(t, err)

	require.Len(t, intents, 2)
	assert.Equal(t, domain.KindAdd, intents[0].Kind)
	assert.Equal(t, res.ID, intents[0].TurnID)
	assert.True(t, intents[1].ConservationBypassed)
	assert.True(t, res.Outcomes[1].ConservationBypassed)

	require.Len(t, turns, 1)
	assert.Same(t, res, turns[0].Result)
}

func TestHandle_BypassMarksSessionUnbalanced(t *testing.T) {
	var logs bytes.Buffer
	calls := map[string]domain.ToolCall{
		"restock": call("update_card", map[string]any{"name": "apple", "new_quantity": 9}),
		"buy":     call("add_card", map[string]any{"name": "apple"}),
	}
	src := ports.IntentSourceFunc(func(ctx context.Context, req ports.TurnRequest) (ports.TurnResponse, error) {
		return ports.TurnResponse{Reply: "ok", ToolCalls: []domain.ToolCall{calls[req.Message]}}, nil
	})
	svc := newService(testCatalog(), src, turn.WithLogger(logging.NewWithWriter(&logs, slog.LevelDebug, logging.FormatText)))
	ctx := context.Background()

	res, err := svc.Handle(ctx, "s1", "restock")
	require.NoError(t, err)
	assert.True(t, res.Outcomes[0].ConservationBypassed)

	res, err = svc.Handle(ctx, "s1", "buy")
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.False(t, res.Outcomes[0].ConservationBypassed)

	s, err := svc.Sessions().Load(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, s.Unbalanced)
	assert.NotContains(t, logs.String(), "level=ERROR")
	assert.NotContains(t, logs.String(), "Session out of balance")
}

func TestHandle_ConcurrentTurnsOneSession(t *testing.T) {
	c := domain.MustCatalog(domain.SKU{Name: "banana", Color: "yellow", Quantity: 25, UnitPrice: decimal.NewFromInt(50)})
	svc := newService(c, scripted("ok", call("add_card", map[string]any{"name": "banana", "quantity": 1})))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Handle(ctx, "shared", "add a banana")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s, err := svc.Sessions().Load(ctx, "shared")
	require.NoError(t, err)
	entry, _ := s.Cart.Get("banana")
	assert.Equal(t, 25, entry.Quantity, "five turns ran out of stock")
	assert.NoError(t, engine.Verify(c, s))
}

func TestApplyIntentsAndView(t *testing.T) {
	svc := newService(testCatalog(), nil)
	ctx := context.Background()

	res, err := svc.ApplyIntents(ctx, "mcp", []domain.Intent{domain.AddItem{Name: "apple", Quantity: 2}})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Empty(t, res.Reply)

	p, err := svc.View(ctx, "mcp")
	require.NoError(t, err)
	require.Len(t, p.Cart, 1)
	assert.Equal(t, "apple", p.Cart[0].Name)

	fresh, err := svc.View(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, fresh.Cart)
	assert.Equal(t, testCatalog().Names(), []string{fresh.Inventory[0].Name, fresh.Inventory[1].Name})

	s, err := svc.Sessions().Load(ctx, "mcp")
	require.NoError(t, err)
	assert.Empty(t, s.History)
}
