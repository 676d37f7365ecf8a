/*
Package domain contains the core domain models of the shopkeep state engine.

It defines the stock-keeping units, the per-session ledgers that track them,
and the closed set of intents a conversation turn can produce. This package
is kept pure and free of I/O or persistence concerns.

# Key Entities

  - SKU: A stock-keeping unit (name, color, quantity, unit price).
  - Catalog: The immutable seed table every session's inventory is copied from.
  - Ledger: An insertion-ordered mapping from item name to SKU.
  - Session: One conversation's inventory and cart ledgers plus its transcript.
  - Intent: A typed command (AddItem, RemoveItem, UpdateItem) decoded from a tool call.

# Conservation

For every catalog item, the inventory quantity plus the cart quantity equals
the catalog quantity after any successful AddItem or RemoveItem. UpdateItem
assigns inventory values absolutely and may break this rule.
*/
package domain
