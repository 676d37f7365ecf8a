package turn

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/shopkeep/internal/logging"
	"github.com/aretw0/shopkeep/pkg/domain"
	"github.com/aretw0/shopkeep/pkg/engine"
	"github.com/aretw0/shopkeep/pkg/ports"
	"github.com/aretw0/shopkeep/pkg/render"
	"github.com/aretw0/shopkeep/pkg/session"
	"github.com/google/uuid"
)

// DefaultHistoryMax bounds the transcript kept per session.
const DefaultHistoryMax = 50

// Outcome is the wire form of one applied intent.
type Outcome struct {
	Kind                 domain.IntentKind `json:"kind"`
	Item                 string            `json:"item,omitempty"`
	OK                   bool              `json:"ok"`
	Error                string            `json:"error,omitempty"`
	ConservationBypassed bool              `json:"conservation_bypassed,omitempty"`
}

// Result describes a completed turn.
type Result struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	// Reply is the text shown to the user: the first failure message when an
	// intent failed, otherwise the Intent Source's reply.
	Reply string `json:"reply"`
	// Error repeats the failure message when the reply is one.
	Error    string    `json:"error,omitempty"`
	Degraded bool      `json:"degraded,omitempty"`
	Changed  bool      `json:"changed"`
	Outcomes []Outcome `json:"outcomes"`
	// Projection is set only when the turn changed state.
	Projection *render.Projection `json:"projection,omitempty"`
}

// Failed reports whether the reply is a failure message.
func (r *Result) Failed() bool {
	return r.Error != ""
}

// Service runs turns against sessions.
type Service struct {
	sessions   *session.Manager
	engine     *engine.Engine
	source     ports.IntentSource
	hooks      []Hooks
	historyMax int
	maxInput   int
	logger     *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithHooks registers observers. It may be given more than once.
func WithHooks(h Hooks) Option {
	return func(s *Service) {
		s.hooks = append(s.hooks, h)
	}
}

// WithHistoryMax bounds the per-session transcript (<= 0 keeps everything).
func WithHistoryMax(n int) Option {
	return func(s *Service) {
		s.historyMax = n
	}
}

// WithMaxInputSize sets the message size limit in bytes.
func WithMaxInputSize(n int) Option {
	return func(s *Service) {
		s.maxInput = n
	}
}

// WithLogger configures a logger for the Service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a turn Service. source may be nil when only ApplyIntents is used.
func New(sessions *session.Manager, eng *engine.Engine, source ports.IntentSource, opts ...Option) *Service {
	s := &Service{
		sessions:   sessions,
		engine:     eng,
		source:     source,
		historyMax: DefaultHistoryMax,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sessions returns the session manager.
func (s *Service) Sessions() *session.Manager {
	return s.sessions
}

// Catalog returns the catalog sessions are seeded from.
func (s *Service) Catalog() *domain.Catalog {
	return s.engine.Catalog()
}

// Handle runs one conversational turn for sessionID.
func (s *Service) Handle(ctx context.Context, sessionID, message string) (*Result, error) {
	start := time.Now()

	if err := session.ValidateID(sessionID); err != nil {
		return nil, err
	}
	text, err := SanitizeInput(message, s.maxInput)
	if err != nil {
		return nil, err
	}

	// The history snapshot also creates the session on first contact.
	snapshot, err := s.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	res := &Result{ID: uuid.NewString(), SessionID: sessionID}
	intents := s.interpret(ctx, res, ports.TurnRequest{
		SessionID: sessionID,
		Message:   text,
		History:   snapshot.History,
	})

	var events []*IntentEvent
	_, err = s.sessions.Transact(ctx, sessionID, func(sess *domain.Session) error {
		events = s.apply(sess, intents, res)
		sess.AppendHistory(s.historyMax,
			domain.Message{Role: domain.RoleUser, Content: text},
			domain.Message{Role: domain.RoleAssistant, Content: res.Reply},
		)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("turn %s: %w", res.ID, err)
	}

	s.fire(ctx, res, events, time.Since(start))
	return res, nil
}

// ApplyIntents applies intents to sessionID as one batch without consulting
// the Intent Source or touching the transcript. Hosts that produce tool
// calls themselves (MCP) use this.
func (s *Service) ApplyIntents(ctx context.Context, sessionID string, intents []domain.Intent) (*Result, error) {
	start := time.Now()

	res := &Result{ID: uuid.NewString(), SessionID: sessionID}
	var events []*IntentEvent
	_, err := s.sessions.Transact(ctx, sessionID, func(sess *domain.Session) error {
		events = s.apply(sess, intents, res)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.fire(ctx, res, events, time.Since(start))
	return res, nil
}

// View returns the current projection of sessionID, creating the session if needed.
func (s *Service) View(ctx context.Context, sessionID string) (render.Projection, error) {
	sess, err := s.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return render.Projection{}, err
	}
	return render.Project(sess), nil
}

func (s *Service) interpret(ctx context.Context, res *Result, req ports.TurnRequest) []domain.Intent {
	if s.source == nil {
		s.degrade(res, fmt.Errorf("no intent source configured"))
		return nil
	}

	resp, err := s.source.Interpret(ctx, req)
	if err != nil {
		s.logger.Warn("Intent source failed",
			"session_id", req.SessionID,
			"turn_id", res.ID,
			"err", err,
		)
		s.degrade(res, err)
		return nil
	}

	res.Reply = resp.Reply
	return domain.DecodeToolCalls(resp.ToolCalls)
}

func (s *Service) degrade(res *Result, err error) {
	res.Degraded = true
	res.Reply = fmt.Sprintf("Sorry, I could not process that request: %v", err)
	res.Error = res.Reply
}

// apply must run under the session lock.
func (s *Service) apply(sess *domain.Session, intents []domain.Intent, res *Result) []*IntentEvent {
	applied := s.engine.Apply(sess, intents)
	now := time.Now().UTC()

	res.Changed = applied.Changed
	res.Outcomes = make([]Outcome, 0, len(applied.Outcomes))
	events := make([]*IntentEvent, 0, len(applied.Outcomes))
	bypassed := false

	for _, o := range applied.Outcomes {
		out := Outcome{
			Kind:                 o.Intent.Kind(),
			Item:                 o.Intent.Target(),
			OK:                   o.OK(),
			ConservationBypassed: o.ConservationBypassed,
		}
		if !o.OK() {
			out.Error = engine.Describe(o.Err)
		}
		bypassed = bypassed || o.ConservationBypassed
		res.Outcomes = append(res.Outcomes, out)
		events = append(events, &IntentEvent{
			Timestamp:            now,
			TurnID:               res.ID,
			SessionID:            sess.ID,
			Kind:                 out.Kind,
			Item:                 out.Item,
			Err:                  o.Err,
			ConservationBypassed: o.ConservationBypassed,
		})
	}

	if first, failed := applied.FirstFailure(); failed && !res.Degraded {
		res.Reply = engine.Describe(first.Err)
		res.Error = res.Reply
	}

	if bypassed {
		sess.Unbalanced = true
	}
	if applied.Changed {
		p := render.Project(sess)
		res.Projection = &p
		if !sess.Unbalanced {
			if err := engine.Verify(s.engine.Catalog(), sess); err != nil {
				s.logger.Error("Session out of balance", "session_id", sess.ID, "turn_id", res.ID, "err", err)
			}
		}
	}
	return events
}

func (s *Service) fire(ctx context.Context, res *Result, events []*IntentEvent, d time.Duration) {
	s.logger.Debug("Turn completed",
		"session_id", res.SessionID,
		"turn_id", res.ID,
		"intents", len(res.Outcomes),
		"changed", res.Changed,
		"failed", res.Failed(),
		"duration", d,
	)
	for _, h := range s.hooks {
		if h.OnIntent != nil {
			for _, ev := range events {
				h.OnIntent(ctx, ev)
			}
		}
		if h.OnTurn != nil {
			h.OnTurn(ctx, &TurnEvent{Timestamp: time.Now().UTC(), Result: res, Duration: d})
		}
	}
}
