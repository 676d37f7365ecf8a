package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/aretw0/shopkeep/internal/logging"
	"github.com/aretw0/shopkeep/pkg/ports"
)

// DefaultTimeout bounds one interpretation when the config sets none.
const DefaultTimeout = 30 * time.Second

// maxStderr caps how much of the child's stderr ends up in an error.
const maxStderr = 512

var (
	// ErrTimeout is returned when the command does not answer in time.
	ErrTimeout = errors.New("intent process timed out")
	// ErrBadResponse is returned when stdout is not a valid response document.
	ErrBadResponse = errors.New("intent process returned an invalid response")
)

// Source implements ports.IntentSource by running one configured command
// per turn. The request is written to stdin as JSON and the response is
// read from stdout. Only the configured command is ever executed; the user's
// text never reaches the command line.
type Source struct {
	command string
	args    []string
	env     []string
	dir     string
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures the Source.
type Option func(*Source)

// WithTimeout overrides the interpretation timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger configures a logger for the Source.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// NewSource creates a Source from cfg.
func NewSource(cfg Config, opts ...Option) (*Source, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("intent command is required")
	}
	timeout, err := cfg.TimeoutDuration(DefaultTimeout)
	if err != nil {
		return nil, err
	}

	s := &Source{
		command: cfg.Command,
		args:    cfg.Args,
		dir:     cfg.Dir,
		timeout: timeout,
		logger:  logging.NewNop(),
	}
	for k, v := range cfg.Environment {
		s.env = append(s.env, k+"="+v)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Interpret runs the command for one turn.
func (s *Source) Interpret(ctx context.Context, req ports.TurnRequest) (ports.TurnResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return ports.TurnResponse{}, fmt.Errorf("failed to encode turn request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.command, s.args...)
	cmd.Dir = s.dir
	cmd.Env = append(cmd.Environ(), s.env...)
	cmd.Env = append(cmd.Env, "SHOPKEEP_SESSION_ID="+req.SessionID)
	cmd.Stdin = bytes.NewReader(payload)
	// Grandchildren holding the pipes open must not stall the turn.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	s.logger.Debug("Intent process finished",
		"session_id", req.SessionID,
		"command", s.command,
		"duration", time.Since(start),
		"err", err,
	)

	if ctx.Err() == context.DeadlineExceeded {
		return ports.TurnResponse{}, fmt.Errorf("%w after %s", ErrTimeout, s.timeout)
	}
	if err != nil {
		return ports.TurnResponse{}, fmt.Errorf("intent process failed: %w: %s", err, truncate(stderr.String()))
	}

	var resp ports.TurnResponse
	dec := json.NewDecoder(&stdout)
	dec.UseNumber()
	if err := dec.Decode(&resp); err != nil {
		return ports.TurnResponse{}, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return resp, nil
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderr {
		return s[:maxStderr] + "..."
	}
	return s
}
