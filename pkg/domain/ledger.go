package domain

import (
	"encoding/json"
	"fmt"
)

// Ledger is a mapping from normalized item name to SKU that remembers the
// order in which live entries were inserted. Deleting an entry and adding
// it again places it last.
//
// A Ledger is not safe for concurrent use; sessions are serialized by the
// session manager.
type Ledger struct {
	order []string
	items map[string]SKU
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{items: make(map[string]SKU)}
}

// Get returns the entry stored under the normalized name.
func (l *Ledger) Get(name string) (SKU, bool) {
	item, ok := l.items[NormalizeName(name)]
	return item, ok
}

// Has reports whether the ledger holds an entry for name.
func (l *Ledger) Has(name string) bool {
	_, ok := l.items[NormalizeName(name)]
	return ok
}

// Put stores item under its normalized name. New names are appended to the
// iteration order; existing names keep their position.
func (l *Ledger) Put(item SKU) {
	key := NormalizeName(item.Name)
	item.Name = key
	if _, exists := l.items[key]; !exists {
		l.order = append(l.order, key)
	}
	l.items[key] = item
}

// Delete removes the entry for name, if any.
func (l *Ledger) Delete(name string) {
	key := NormalizeName(name)
	if _, exists := l.items[key]; !exists {
		return
	}
	delete(l.items, key)
	for i, n := range l.order {
		if n == key {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.order)
}

// Names returns the entry names in insertion order.
func (l *Ledger) Names() []string {
	names := make([]string, len(l.order))
	copy(names, l.order)
	return names
}

// Items returns copies of the entries in insertion order.
func (l *Ledger) Items() []SKU {
	items := make([]SKU, 0, len(l.order))
	for _, name := range l.order {
		items = append(items, l.items[name])
	}
	return items
}

// Clone returns a deep copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		order: make([]string, len(l.order)),
		items: make(map[string]SKU, len(l.items)),
	}
	copy(c.order, l.order)
	for k, v := range l.items {
		c.items[k] = v
	}
	return c
}

// MarshalJSON encodes the ledger as an ordered array of SKUs.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Items())
}

// UnmarshalJSON decodes an ordered array of SKUs.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var items []SKU
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	l.order = nil
	l.items = make(map[string]SKU, len(items))
	for _, item := range items {
		if l.Has(item.Name) {
			return fmt.Errorf("duplicate ledger entry %q", item.Name)
		}
		l.Put(item)
	}
	return nil
}
