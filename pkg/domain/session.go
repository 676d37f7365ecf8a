package domain

import (
	"encoding/json"
	"time"
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a session transcript.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session holds the two linked ledgers of one conversation.
type Session struct {
	ID        string    `json:"id"`
	Inventory *Ledger   `json:"inventory"`
	Cart      *Ledger   `json:"cart"`
	History   []Message `json:"history,omitempty"`
	// Unbalanced is set once an update has knowingly moved an item off its
	// catalog total. Conservation is no longer checked for such a session.
	Unbalanced bool      `json:"unbalanced,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewSession creates a session whose inventory is a deep copy of the
// catalog and whose cart is empty.
func NewSession(id string, catalog *Catalog) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		Inventory: catalog.Inventory(),
		Cart:      NewLedger(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UnmarshalJSON decodes a stored session. A missing or null ledger decodes
// as an empty one.
func (s *Session) UnmarshalJSON(data []byte) error {
	type plain Session
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Inventory == nil {
		p.Inventory = NewLedger()
	}
	if p.Cart == nil {
		p.Cart = NewLedger()
	}
	*s = Session(p)
	return nil
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	c := *s
	c.Inventory = s.Inventory.Clone()
	c.Cart = s.Cart.Clone()
	if s.History != nil {
		c.History = make([]Message, len(s.History))
		copy(c.History, s.History)
	}
	return &c
}

// AppendHistory records messages, keeping at most max entries (max <= 0 keeps all).
func (s *Session) AppendHistory(max int, msgs ...Message) {
	s.History = append(s.History, msgs...)
	if max > 0 && len(s.History) > max {
		s.History = append([]Message(nil), s.History[len(s.History)-max:]...)
	}
}
