// Package command provides a deterministic intent source that understands a
// small imperative grammar:
//
//	add 2 banana
//	add apple in green
//	remove all apple
//	remove 1 grape
//	update grape color green qty 3
//	view
//
// Clauses may be joined with "and", "," or ";". It backs the REPL and
// end-to-end tests; it does not try to understand free-form language.
package command
