/*
Package turn orchestrates one conversational turn end to end.

A turn sanitizes the user's text, asks the Intent Source for a reply and
tool calls, decodes those into intents, applies the batch to the session
under its lock, records the exchange in the session history, and renders
a projection when any intent changed state. Collaborator failures degrade
the reply instead of failing the turn; only infrastructure errors (store,
lock, invalid input) are returned to the caller.

Observers attach through Hooks for metrics and live updates.
*/
package turn
