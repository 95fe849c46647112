/*
Package runner bridges a UI surface to the fill orchestrator over a byte stream.

The Runner reads one inbound message at a time from an IOHandler, hands it to
the orchestrator, and lets the same handler present the resulting status events.
Two handlers ship with the package:

  - JSONHandler: newline-delimited JSON. Each input line is a command, bare or
    wrapped in an envelope; each status event is written as one JSON line.
  - TextHandler: interactive terminal. Each input line is a description; status
    events are printed as coloured lines.

# Usage

	r := runner.NewRunner(orch,
		runner.WithInputHandler(runner.NewJSONHandler(os.Stdin, os.Stdout)),
		runner.WithAfterFill(func(ctx context.Context, ev domain.StatusEvent) error {
			return doc.Save(path)
		}),
	)
	if err := r.Run(ctx, doc.Host()); err != nil {
		log.Fatal(err)
	}
*/
package runner
