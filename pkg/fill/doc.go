/*
Package fill implements the generation-and-fill orchestrator.

One Submit call is one invocation:

	Idle -> Loading -> Success | Error

The orchestrator emits loading("processing"), resolves the text layers in the host
selection, emits loading("generating N texts"), asks the Generator for exactly N texts,
writes them pairwise into the layers and ends with exactly one terminal event, which is
also relayed to the host notifier when the host has one.

Only one invocation runs at a time per Orchestrator. A submit that arrives while another
is in flight is rejected with an error event and never touches the host. With a
DistributedLocker configured, invocations on the same document are additionally
serialized across processes.

# Usage

	gen := http.NewClient("")
	orch := fill.New(gen, fill.WithLogger(logger))

	final := orch.Submit(ctx, doc.Host(), "product taglines", sink)
*/
package fill
