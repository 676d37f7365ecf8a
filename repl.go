package shopkeep

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/shopkeep/pkg/render"
	"github.com/aretw0/shopkeep/pkg/turn"
)

// REPL runs turns read line by line from Input against one session.
// This allows for easy testing and integration with different frontends.
type REPL struct {
	Input     io.Reader
	Output    io.Writer
	SessionID string
	// Headless suppresses the greeting and the prompt.
	Headless bool
	Renderer ContentRenderer
	Theme    render.Theme
}

// ContentRenderer transforms markdown before it is written (markdown to ANSI).
type ContentRenderer func(string) (string, error)

// NewREPL creates a REPL for sessionID. Input and Output must be set before Run.
func NewREPL(sessionID string) *REPL {
	return &REPL{
		SessionID: sessionID,
		Theme:     render.DefaultTheme(),
	}
}

// Run reads lines until EOF, "exit" or "quit". A line reading "/cart" shows
// the session without running a turn.
func (r *REPL) Run(ctx context.Context, svc *turn.Service) error {
	if r.Input == nil {
		return errors.New("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return errors.New("output writer must be set (use os.Stdout)")
	}
	lines := bufio.NewReader(r.Input)

	if !r.Headless {
		fmt.Fprintf(r.Output, "--- shopkeep (session %s) ---\n", r.SessionID)
	}
	if err := r.showCart(ctx, svc); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !r.Headless {
			fmt.Fprint(r.Output, "> ")
		}

		text, err := lines.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("input error: %w", err)
		}
		input := strings.TrimSpace(text)
		eof := errors.Is(err, io.EOF)

		switch {
		case input == "exit" || input == "quit":
			fmt.Fprintln(r.Output, "Bye!")
			return nil
		case input == "/cart":
			if err := r.showCart(ctx, svc); err != nil {
				return err
			}
		case input != "":
			if err := r.turn(ctx, svc, input); err != nil {
				return err
			}
		}

		if eof {
			return nil
		}
	}
}

func (r *REPL) turn(ctx context.Context, svc *turn.Service, input string) error {
	res, err := svc.Handle(ctx, r.SessionID, input)
	if err != nil {
		if errors.Is(err, turn.ErrInputTooLarge) || errors.Is(err, turn.ErrInvalidUTF8) {
			fmt.Fprintf(r.Output, "Sorry, %v.\n", err)
			return nil
		}
		return fmt.Errorf("turn error: %w", err)
	}

	if res.Reply != "" {
		fmt.Fprintln(r.Output, res.Reply)
	}
	if res.Projection != nil {
		r.print(render.Markdown(*res.Projection, r.Theme))
	}
	return nil
}

func (r *REPL) showCart(ctx context.Context, svc *turn.Service) error {
	p, err := svc.View(ctx, r.SessionID)
	if err != nil {
		return fmt.Errorf("view error: %w", err)
	}
	r.print(render.Markdown(p, r.Theme))
	return nil
}

func (r *REPL) print(markdown string) {
	output := markdown
	if r.Renderer != nil {
		if rendered, err := r.Renderer(markdown); err == nil {
			output = rendered
		}
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(output))
}
