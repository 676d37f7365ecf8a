/*
Package shopkeep is a conversational shopping cart: a fixed catalog of items,
a cart per session, and a turn loop that turns free text into cart operations.

Each turn goes through an Intent Source (an LLM bridge, an external command, or
the built-in command parser), whose tool calls are decoded into intents and
applied by the engine. The engine enforces conservation: for every item, the
quantity left in inventory plus the quantity in the cart always equals the
catalog quantity.

# Concept

The core (pkg/domain, pkg/engine, pkg/turn) knows nothing about transports or
storage. Adapters live under pkg/adapters: HTTP with an htmx storefront and
SSE, MCP, memory, file and Redis session stores, and Loam catalog directories.
App wires them from an internal/config.Config.

# Usage

	package main

	import (
		"context"
		"log"
		"net/http"

		"github.com/aretw0/shopkeep"
		"github.com/aretw0/shopkeep/internal/config"
	)

	func main() {
		ctx := context.Background()
		app, err := shopkeep.New(ctx, config.Default())
		if err != nil {
			log.Fatal(err)
		}
		defer app.Close()

		res, err := app.Turns.Handle(ctx, "alice", "add 2 banana")
		if err != nil {
			log.Fatal(err)
		}
		log.Println(res.Reply)

		log.Fatal(http.ListenAndServe(":8080", app.Handler()))
	}

# Intent Sources

An external interpreter is any executable reading a TurnRequest document on
stdin and writing a TurnResponse on stdout. See pkg/adapters/process.
*/
package shopkeep
