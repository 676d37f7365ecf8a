// Package process provides an intent source backed by an external command.
//
// Each turn runs the configured command once. The command receives a JSON
// document on stdin:
//
//	{"session_id": "s1", "message": "add two bananas", "history": [...]}
//
// and must print a single JSON document on stdout:
//
//	{"reply": "Added.", "tool_calls": [{"tool_name": "add_card", "args": {"name": "banana", "quantity": 2}}]}
//
// This is how a language model agent is plugged into shopkeep without the
// core depending on any model runtime.
package process
