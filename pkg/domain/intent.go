package domain

import "fmt"

// IntentKind names an intent on the wire. The values match the tool names
// the reasoning component emits.
type IntentKind string

const (
	KindAdd          IntentKind = "add_card"
	KindRemove       IntentKind = "remove_card"
	KindUpdate       IntentKind = "update_card"
	KindUnrecognized IntentKind = "unrecognized"
	KindMalformed    IntentKind = "malformed"
)

// Intent is a typed command produced from one conversation turn.
// The set is closed: AddItem, RemoveItem, UpdateItem, UnrecognizedIntent
// and MalformedIntent are its only members.
type Intent interface {
	Kind() IntentKind
	// Target returns the normalized item name the intent refers to, if any.
	Target() string
	isIntent()
}

// AddItem moves Quantity units of Name from inventory into the cart.
// Color is advisory; the tracked inventory color wins.
type AddItem struct {
	Name     string
	Color    string
	Quantity int
}

// RemoveItem moves units of Name from the cart back into inventory.
type RemoveItem struct {
	Name      string
	Quantity  int
	RemoveAll bool
}

// UpdateItem assigns inventory fields absolutely. Nil fields are left unchanged.
type UpdateItem struct {
	Name        string
	NewColor    *string
	NewQuantity *int
}

// UnrecognizedIntent is a tool call whose name is outside the known set.
type UnrecognizedIntent struct {
	ToolName string
	Args     map[string]any
}

// MalformedIntent is a known tool call whose arguments could not be decoded or validated.
type MalformedIntent struct {
	ToolName string
	Err      error
}

func (AddItem) Kind() IntentKind            { return KindAdd }
func (RemoveItem) Kind() IntentKind         { return KindRemove }
func (UpdateItem) Kind() IntentKind         { return KindUpdate }
func (UnrecognizedIntent) Kind() IntentKind { return KindUnrecognized }
func (MalformedIntent) Kind() IntentKind    { return KindMalformed }

func (i AddItem) Target() string          { return NormalizeName(i.Name) }
func (i RemoveItem) Target() string       { return NormalizeName(i.Name) }
func (i UpdateItem) Target() string       { return NormalizeName(i.Name) }
func (UnrecognizedIntent) Target() string { return "" }
func (MalformedIntent) Target() string    { return "" }

func (AddItem) isIntent()            {}
func (RemoveItem) isIntent()         {}
func (UpdateItem) isIntent()         {}
func (UnrecognizedIntent) isIntent() {}
func (MalformedIntent) isIntent()    {}

// Validate checks the arguments of an AddItem.
func (i AddItem) Validate() error {
	if i.Target() == "" {
		return fmt.Errorf("%w: add requires a name", ErrInvalidIntent)
	}
	if i.Quantity < 1 {
		return fmt.Errorf("%w: add quantity must be at least 1, got %d", ErrInvalidIntent, i.Quantity)
	}
	return nil
}

// Validate checks the arguments of a RemoveItem.
func (i RemoveItem) Validate() error {
	if i.Target() == "" {
		return fmt.Errorf("%w: remove requires a name", ErrInvalidIntent)
	}
	if !i.RemoveAll && i.Quantity < 1 {
		return fmt.Errorf("%w: remove quantity must be at least 1, got %d", ErrInvalidIntent, i.Quantity)
	}
	return nil
}

// Validate checks the arguments of an UpdateItem.
func (i UpdateItem) Validate() error {
	if i.Target() == "" {
		return fmt.Errorf("%w: update requires a name", ErrInvalidIntent)
	}
	if i.NewQuantity != nil && *i.NewQuantity < 0 {
		return fmt.Errorf("%w: update quantity must not be negative, got %d", ErrInvalidIntent, *i.NewQuantity)
	}
	return nil
}
