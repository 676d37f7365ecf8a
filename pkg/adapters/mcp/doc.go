// Package mcp exposes the shop as a Model Context Protocol server.
//
// Tools add_card, remove_card and update_card each apply one intent to a
// session; view_cart returns its projection. The catalog is published as
// the shopkeep://catalog resource.
package mcp
