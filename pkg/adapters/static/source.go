// Package static provides a scripted intent source. Each call to Interpret
// returns the next scripted response, which makes turn behaviour fully
// reproducible in tests and demos.
package static

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/shopkeep/pkg/domain"
	"github.com/aretw0/shopkeep/pkg/ports"
)

// ErrExhausted is returned once every scripted step has been used.
var ErrExhausted = errors.New("static intent script exhausted")

// Step is one scripted answer. A non-nil Err is returned instead of Response.
type Step struct {
	Response ports.TurnResponse
	Err      error
}

// Source replays Steps in order. Safe for concurrent use.
type Source struct {
	mu       sync.Mutex
	steps    []Step
	next     int
	loop     bool
	requests []ports.TurnRequest
}

// New creates a Source from steps.
func New(steps ...Step) *Source {
	return &Source{steps: steps}
}

// Reply is shorthand for a Step with the given reply and tool calls.
func Reply(text string, calls ...domain.ToolCall) Step {
	return Step{Response: ports.TurnResponse{Reply: text, ToolCalls: calls}}
}

// Fail is shorthand for a failing Step.
func Fail(err error) Step {
	return Step{Err: err}
}

// Loop makes the script start over instead of returning ErrExhausted.
func (s *Source) Loop() *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loop = true
	return s
}

// Interpret returns the next scripted step.
func (s *Source) Interpret(ctx context.Context, req ports.TurnRequest) (ports.TurnResponse, error) {
	if err := ctx.Err(); err != nil {
		return ports.TurnResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	if s.next >= len(s.steps) {
		if !s.loop || len(s.steps) == 0 {
			return ports.TurnResponse{}, ErrExhausted
		}
		s.next = 0
	}
	step := s.steps[s.next]
	s.next++
	return step.Response, step.Err
}

// Requests returns the requests seen so far.
func (s *Source) Requests() []ports.TurnRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.TurnRequest(nil), s.requests...)
}
