/*
Package engine implements the mutation engine: the validation and transition
logic that applies one turn's ordered intents to a session's ledgers.

Apply never panics on user input and never aborts a batch. Each intent yields
an Outcome; a failed intent leaves its item's ledgers untouched and later
intents still run.
*/
package engine
