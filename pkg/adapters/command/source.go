package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/shopkeep/pkg/domain"
	"github.com/aretw0/shopkeep/pkg/ports"
)

// Help lists the accepted commands.
const Help = "Try: add 2 banana, remove all apple, remove 1 grape, update grape color green qty 3, view."

var numbers = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// Source implements ports.IntentSource with a fixed grammar.
type Source struct {
	catalog *domain.Catalog
}

// Option configures the Source.
type Option func(*Source)

// WithCatalog lets the source map simple plurals ("bananas") onto catalog names.
func WithCatalog(c *domain.Catalog) Option {
	return func(s *Source) {
		s.catalog = c
	}
}

// New creates a command Source.
func New(opts ...Option) *Source {
	s := &Source{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interpret parses req.Message into tool calls.
func (s *Source) Interpret(ctx context.Context, req ports.TurnRequest) (ports.TurnResponse, error) {
	var (
		calls   []domain.ToolCall
		unknown []string
		view    bool
		help    bool
	)

	for _, clause := range splitClauses(req.Message) {
		switch clause[0] {
		case "help", "?":
			help = true
			continue
		case "view", "show", "cart", "list":
			view = true
			continue
		}

		call, ok := s.parse(clause)
		if !ok {
			unknown = append(unknown, strings.Join(clause, " "))
			continue
		}
		calls = append(calls, call)
	}

	return ports.TurnResponse{Reply: reply(calls, unknown, view, help), ToolCalls: calls}, nil
}

func reply(calls []domain.ToolCall, unknown []string, view, help bool) string {
	switch {
	case len(unknown) > 0:
		return fmt.Sprintf("I did not understand %q. %s", unknown[0], Help)
	case help:
		return Help
	case len(calls) > 0:
		return "Done."
	case view:
		return "Here is your cart."
	default:
		return Help
	}
}

func splitClauses(msg string) [][]string {
	msg = strings.ToLower(msg)
	msg = strings.NewReplacer(";", " ; ", ",", " ; ", ".", " ").Replace(msg)

	var (
		clauses [][]string
		current []string
	)
	for _, tok := range strings.Fields(msg) {
		if tok == ";" || tok == "and" || tok == "then" {
			if len(current) > 0 {
				clauses = append(clauses, current)
			}
			current = nil
			continue
		}
		current = append(current, tok)
	}
	if len(current) > 0 {
		clauses = append(clauses, current)
	}
	return clauses
}

func (s *Source) parse(clause []string) (domain.ToolCall, bool) {
	verb, rest := clause[0], clause[1:]

	switch verb {
	case "add", "buy", "put":
		qty, rest := quantity(rest)
		name, color := splitAt(rest, "in", "color", "colour")
		if name == "" {
			return domain.ToolCall{}, false
		}
		args := map[string]any{"name": s.resolve(name), "quantity": qty}
		if color != "" {
			args["color"] = color
		}
		return domain.ToolCall{ToolName: string(domain.KindAdd), Args: args}, true

	case "remove", "delete", "drop":
		if len(rest) > 0 && rest[0] == "all" {
			name := strings.Join(rest[1:], " ")
			if name == "" {
				return domain.ToolCall{}, false
			}
			return domain.ToolCall{ToolName: string(domain.KindRemove), Args: map[string]any{
				"name": s.resolve(name), "remove_all": true,
			}}, true
		}
		qty, rest := quantity(rest)
		name := strings.Join(rest, " ")
		if name == "" {
			return domain.ToolCall{}, false
		}
		return domain.ToolCall{ToolName: string(domain.KindRemove), Args: map[string]any{
			"name": s.resolve(name), "quantity": qty,
		}}, true

	case "update", "change", "set":
		return s.parseUpdate(rest)
	}
	return domain.ToolCall{}, false
}

func (s *Source) parseUpdate(rest []string) (domain.ToolCall, bool) {
	var nameParts []string
	for len(rest) > 0 && !isUpdateKey(rest[0]) {
		nameParts = append(nameParts, rest[0])
		rest = rest[1:]
	}
	if len(nameParts) == 0 || len(rest) == 0 {
		return domain.ToolCall{}, false
	}

	args := map[string]any{"name": s.resolve(strings.Join(nameParts, " "))}
	for len(rest) >= 2 {
		key, value := rest[0], rest[1]
		rest = rest[2:]
		switch key {
		case "color", "colour":
			args["new_color"] = value
		case "qty", "quantity":
			n, err := strconv.Atoi(value)
			if err != nil {
				return domain.ToolCall{}, false
			}
			args["new_quantity"] = n
		default:
			return domain.ToolCall{}, false
		}
	}
	if len(rest) != 0 {
		return domain.ToolCall{}, false
	}
	return domain.ToolCall{ToolName: string(domain.KindUpdate), Args: args}, true
}

func isUpdateKey(tok string) bool {
	switch tok {
	case "color", "colour", "qty", "quantity":
		return true
	}
	return false
}

// quantity consumes a leading count, defaulting to 1.
func quantity(tokens []string) (int, []string) {
	if len(tokens) == 0 {
		return 1, tokens
	}
	if n, err := strconv.Atoi(tokens[0]); err == nil {
		return n, tokens[1:]
	}
	if n, ok := numbers[tokens[0]]; ok {
		return n, tokens[1:]
	}
	return 1, tokens
}

// splitAt joins tokens before the first keyword and after it.
func splitAt(tokens []string, keywords ...string) (string, string) {
	for i, tok := range tokens {
		for _, kw := range keywords {
			if tok == kw {
				return strings.Join(tokens[:i], " "), strings.Join(tokens[i+1:], " ")
			}
		}
	}
	return strings.Join(tokens, " "), ""
}

func (s *Source) resolve(name string) string {
	if s.catalog == nil {
		return name
	}
	if _, ok := s.catalog.Get(name); ok {
		return name
	}
	for _, suffix := range []string{"es", "s"} {
		if base, found := strings.CutSuffix(name, suffix); found {
			if _, ok := s.catalog.Get(base); ok {
				return base
			}
		}
	}
	return name
}
