package turn

import (
	"context"
	"time"

	"github.com/aretw0/shopkeep/pkg/domain"
)

// IntentEvent reports the outcome of one applied intent.
type IntentEvent struct {
	Timestamp            time.Time         `json:"timestamp"`
	TurnID               string            `json:"turn_id"`
	SessionID            string            `json:"session_id"`
	Kind                 domain.IntentKind `json:"kind"`
	Item                 string            `json:"item,omitempty"`
	Err                  error             `json:"-"`
	ConservationBypassed bool              `json:"conservation_bypassed,omitempty"`
}

// TurnEvent reports a completed turn.
type TurnEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Result    *Result       `json:"result"`
	Duration  time.Duration `json:"duration"`
}

// Hooks defines callbacks for turn observability. Nil fields are skipped.
// Hooks run after the session lock is released.
type Hooks struct {
	OnIntent func(context.Context, *IntentEvent)
	OnTurn   func(context.Context, *TurnEvent)
}
