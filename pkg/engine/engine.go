package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/shopkeep/internal/logging"
	"github.com/aretw0/shopkeep/pkg/domain"
)

// UpdatePolicy controls how UpdateItem interacts with items held in the cart.
type UpdatePolicy string

const (
	// UpdateLiteral assigns inventory values absolutely, even when a cart
	// entry for the same item exists.
	UpdateLiteral UpdatePolicy = "literal"
	// UpdateRejectWhileInCart refuses quantity updates on items present in the cart.
	UpdateRejectWhileInCart UpdatePolicy = "reject_in_cart"
)

// ParseUpdatePolicy maps a configuration string to an UpdatePolicy.
func ParseUpdatePolicy(s string) (UpdatePolicy, error) {
	switch UpdatePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", UpdateLiteral:
		return UpdateLiteral, nil
	case UpdateRejectWhileInCart:
		return UpdateRejectWhileInCart, nil
	default:
		return "", fmt.Errorf("unknown update policy %q", s)
	}
}

// Outcome is the result of applying one intent.
type Outcome struct {
	Intent domain.Intent
	Err    error
	// Changed reports whether this intent modified a ledger.
	Changed bool
	// ConservationBypassed is set when an UpdateItem left the item's
	// inventory and cart quantities out of balance with the catalog.
	ConservationBypassed bool
}

// OK reports whether the intent applied without a failure.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Result collects the outcomes of one batch in application order.
type Result struct {
	Outcomes []Outcome
	Changed  bool
}

// FirstFailure returns the first failed outcome of the batch.
func (r Result) FirstFailure() (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Err != nil {
			return o, true
		}
	}
	return Outcome{}, false
}

// Engine applies intents to sessions. It holds no session state and is
// safe for concurrent use; callers serialize access to each session.
type Engine struct {
	catalog *domain.Catalog
	policy  UpdatePolicy
	logger  *slog.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithUpdatePolicy selects how UpdateItem treats items held in the cart.
func WithUpdatePolicy(p UpdatePolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithLogger configures a logger for the Engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine bound to the catalog sessions were seeded from.
func New(catalog *domain.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		policy:  UpdateLiteral,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the engine checks conservation against.
func (e *Engine) Catalog() *domain.Catalog {
	return e.catalog
}

// Apply applies intents to s strictly in order.
func (e *Engine) Apply(s *domain.Session, intents []domain.Intent) Result {
	res := Result{Outcomes: make([]Outcome, 0, len(intents))}
	for _, intent := range intents {
		o := e.apply(s, intent)
		if o.Changed {
			res.Changed = true
		}
		if o.Err != nil {
			e.logger.Debug("Intent rejected",
				"session_id", s.ID,
				"kind", intent.Kind(),
				"item", intent.Target(),
				"err", o.Err,
			)
		}
		res.Outcomes = append(res.Outcomes, o)
	}
	return res
}

func (e *Engine) apply(s *domain.Session, intent domain.Intent) Outcome {
	switch i := intent.(type) {
	case domain.AddItem:
		return e.add(s, i)
	case domain.RemoveItem:
		return e.remove(s, i)
	case domain.UpdateItem:
		return e.update(s, i)
	case domain.UnrecognizedIntent:
		return Outcome{Intent: i, Err: fmt.Errorf("%w: %q", domain.ErrUnrecognizedIntent, i.ToolName)}
	case domain.MalformedIntent:
		err := i.Err
		if err == nil {
			err = domain.ErrInvalidIntent
		}
		return Outcome{Intent: i, Err: err}
	default:
		return Outcome{Intent: intent, Err: fmt.Errorf("%w: %T", domain.ErrUnrecognizedIntent, intent)}
	}
}

func (e *Engine) add(s *domain.Session, i domain.AddItem) Outcome {
	if err := i.Validate(); err != nil {
		return Outcome{Intent: i, Err: err}
	}
	name := i.Target()

	stock, ok := s.Inventory.Get(name)
	if !ok {
		return Outcome{Intent: i, Err: &domain.ItemError{Op: "add", Name: name, Err: domain.ErrItemNotAvailable}}
	}
	if i.Quantity > stock.Quantity {
		return Outcome{Intent: i, Err: &domain.OutOfStockError{Name: name, Requested: i.Quantity, Available: stock.Quantity}}
	}

	stock.Quantity -= i.Quantity
	s.Inventory.Put(stock)

	if entry, inCart := s.Cart.Get(name); inCart {
		entry.Quantity += i.Quantity
		s.Cart.Put(entry)
	} else {
		// The tracked inventory record is authoritative for color and price.
		s.Cart.Put(domain.SKU{
			Name:      name,
			Color:     stock.Color,
			Quantity:  i.Quantity,
			UnitPrice: stock.UnitPrice,
		})
	}
	return Outcome{Intent: i, Changed: true}
}

func (e *Engine) remove(s *domain.Session, i domain.RemoveItem) Outcome {
	if err := i.Validate(); err != nil {
		return Outcome{Intent: i, Err: err}
	}
	name := i.Target()

	entry, ok := s.Cart.Get(name)
	if !ok {
		return Outcome{Intent: i, Err: &domain.ItemError{Op: "remove", Name: name, Err: domain.ErrNotInCart}}
	}

	moved := i.Quantity
	if i.RemoveAll || moved >= entry.Quantity {
		moved = entry.Quantity
		s.Cart.Delete(name)
	} else {
		entry.Quantity -= moved
		s.Cart.Put(entry)
	}

	stock, ok := s.Inventory.Get(name)
	if !ok {
		// Inventory entries are never deleted; only hand-built sessions get here.
		stock = domain.SKU{Name: name, Color: entry.Color, UnitPrice: entry.UnitPrice}
	}
	stock.Quantity += moved
	s.Inventory.Put(stock)

	return Outcome{Intent: i, Changed: true}
}

func (e *Engine) update(s *domain.Session, i domain.UpdateItem) Outcome {
	if err := i.Validate(); err != nil {
		return Outcome{Intent: i, Err: err}
	}
	name := i.Target()

	stock, ok := s.Inventory.Get(name)
	if !ok {
		return Outcome{Intent: i}
	}

	entry, inCart := s.Cart.Get(name)
	if i.NewQuantity != nil && inCart && e.policy == UpdateRejectWhileInCart {
		return Outcome{Intent: i, Err: &domain.ItemError{Op: "update", Name: name, Err: domain.ErrUpdateConflict}}
	}

	changed := false
	if i.NewColor != nil {
		stock.Color = *i.NewColor
		changed = true
	}
	if i.NewQuantity != nil {
		stock.Quantity = *i.NewQuantity
		changed = true
	}
	s.Inventory.Put(stock)

	o := Outcome{Intent: i, Changed: changed}
	if total, known := e.catalog.Get(name); known && i.NewQuantity != nil {
		if stock.Quantity+entry.Quantity != total.Quantity {
			o.ConservationBypassed = true
			e.logger.Warn("Update bypassed conservation",
				"session_id", s.ID,
				"item", name,
				"inventory", stock.Quantity,
				"cart", entry.Quantity,
				"catalog", total.Quantity,
			)
		}
	}
	return o
}
