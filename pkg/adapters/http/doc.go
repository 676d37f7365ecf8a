// Package http serves the shop over HTTP with chi.
//
// POST /send runs a turn and answers with JSON, or with an htmx fragment
// (chat bubbles plus out-of-band swaps of #cards-container and
// #cart-container) when the HX-Request header is set. GET / serves the web
// page, GET /state the JSON projection and GET /events an SSE stream of
// projections after every changed turn.
package http
