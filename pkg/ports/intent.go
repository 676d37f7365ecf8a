package ports

import (
	"context"

	"github.com/aretw0/shopkeep/pkg/domain"
)

// TurnRequest is what the reasoning component sees of one turn.
type TurnRequest struct {
	SessionID string           `json:"session_id"`
	Message   string           `json:"message"`
	History   []domain.Message `json:"history,omitempty"`
}

// TurnResponse is the reasoning component's answer: a reply for the user
// and the tool calls it wants applied, in emission order.
type TurnResponse struct {
	Reply     string            `json:"reply"`
	ToolCalls []domain.ToolCall `json:"tool_calls,omitempty"`
}

// IntentSource translates a user message into tool calls.
// Implementations may block; they are never called while a session lock is held.
type IntentSource interface {
	Interpret(ctx context.Context, req TurnRequest) (TurnResponse, error)
}

// IntentSourceFunc adapts a function to IntentSource.
type IntentSourceFunc func(ctx context.Context, req TurnRequest) (TurnResponse, error)

// Interpret calls f(ctx, req).
func (f IntentSourceFunc) Interpret(ctx context.Context, req TurnRequest) (TurnResponse, error) {
	return f(ctx, req)
}
