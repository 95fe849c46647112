/*
Package textfill fills the selected text layers of a design document with
AI-generated content.

A user selects text layers, describes what they want ("catchy headlines for a
coffee shop"), and textfill asks a remote generation service for exactly one
distinct string per layer, then writes them back in selection order.

# Concept

The library is split along a hexagonal layout. The host document model, the
generation service and the presentation surface are ports; the orchestrator in
pkg/fill owns the invocation state machine (Idle, Loading, Success or Error) and
emits status events to whatever sink the caller provides.

  - pkg/selection resolves the text targets from the host, never failing.
  - pkg/apply writes one string through the first writable capability.
  - pkg/adapters/http is the generation client and the HTTP/SSE UI bridge.
  - pkg/adapters/genservice implements the generation service itself.
  - pkg/runner drives the orchestrator from NDJSON or plain text streams.

# Usage

	package main

	import (
		"context"
		"fmt"
		"time"

		"github.com/aretw0/textfill"
		"github.com/aretw0/textfill/pkg/adapters/memory"
		"github.com/aretw0/textfill/pkg/domain"
		"github.com/aretw0/textfill/pkg/ports"
	)

	func main() {
		doc, err := memory.LoadDocument("landing.yaml")
		if err != nil {
			panic(err)
		}

		filler := textfill.New(textfill.WithRetry(3, 500*time.Millisecond))

		sink := ports.StatusFunc(func(ctx context.Context, ev domain.StatusEvent) error {
			fmt.Println(ev)
			return nil
		})
		final := filler.Submit(context.Background(), doc.Host(), "hero headlines", sink)
		if final.Type == domain.StatusSuccess {
			_ = doc.Save("landing.yaml")
		}
	}
*/
package textfill
