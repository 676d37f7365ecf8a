package static_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/shopkeep/pkg/adapters/static"
	"github.com/aretw0/shopkeep/pkg/domain"
	"github.com/aretw0/shopkeep/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.IntentSource = (*static.Source)(nil)

func TestSource_ReplaysInOrder(t *testing.T) {
	boom := errors.New("boom")
	src := static.New(
		static.Reply("added", domain.ToolCall{ToolName: "add_card", Args: map[string]any{"name": "banana"}}),
		static.Fail(boom),
	)
	ctx := context.Background()

	resp, err := src.Interpret(ctx, ports.TurnRequest{SessionID: "s1", Message: "first"})
	require.NoError(t, err)
	assert.Equal(t, "added", resp.Reply)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "add_card", resp.ToolCalls[0].ToolName)

	_, err = src.Interpret(ctx, ports.TurnRequest{SessionID: "s1", Message: "second"})
	assert.ErrorIs(t, err, boom)

	_, err = src.Interpret(ctx, ports.TurnRequest{SessionID: "s1", Message: "third"})
	assert.ErrorIs(t, err, static.ErrExhausted)

	reqs := src.Requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, "second", reqs[1].Message)
}

func TestSource_Loop(t *testing.T) {
	src := static.New(static.Reply("a"), static.Reply("b")).Loop()
	ctx := context.Background()

	var replies []string
	for range 5 {
		resp, err := src.Interpret(ctx, ports.TurnRequest{SessionID: "s1"})
		require.NoError(t, err)
		replies = append(replies, resp.Reply)
	}
	assert.Equal(t, []string{"a", "b", "a", "b", "a"}, replies)

	_, err := static.New().Loop().Interpret(ctx, ports.TurnRequest{SessionID: "s1"})
	assert.ErrorIs(t, err, static.ErrExhausted)
}

func TestSource_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := static.New(static.Reply("a")).Interpret(ctx, ports.TurnRequest{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, static.New().Requests())
}
