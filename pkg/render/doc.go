// Package render projects session ledgers into ordered display records.
//
// Projections are deterministic: inventory records follow catalog order and
// cart records follow the order in which items were first added. Transports
// build their views (HTML cards, JSON, terminal markdown) from a Projection
// and never read the ledgers directly.
package render
