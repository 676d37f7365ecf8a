/*
Package observability provides metrics and audit logging for turns.

Both are delivered as turn.Hooks, so the turn path stays unaware of
prometheus or of the log format.
*/
package observability
