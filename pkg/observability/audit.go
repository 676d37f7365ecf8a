package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/shopkeep/pkg/turn"
)

// AuditHooks logs every intent and turn at info level.
func AuditHooks(logger *slog.Logger) turn.Hooks {
	return turn.Hooks{
		OnIntent: func(ctx context.Context, e *turn.IntentEvent) {
			attrs := []any{
				"turn_id", e.TurnID,
				"session_id", e.SessionID,
				"kind", e.Kind,
				"item", e.Item,
			}
			if e.Err != nil {
				attrs = append(attrs, "err", e.Err)
			}
			if e.ConservationBypassed {
				attrs = append(attrs, "conservation_bypassed", true)
			}
			logger.InfoContext(ctx, "intent", attrs...)
		},
		OnTurn: func(ctx context.Context, e *turn.TurnEvent) {
			logger.InfoContext(ctx, "turn",
				"turn_id", e.Result.ID,
				"session_id", e.Result.SessionID,
				"outcome", TurnOutcome(e.Result),
				"duration_ms", e.Duration.Milliseconds(),
			)
		},
	}
}
