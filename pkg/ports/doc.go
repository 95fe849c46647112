/*
Package ports defines the driven ports (interfaces) of the textfill pipeline.

These interfaces decouple the fill orchestrator from the host document model, the
generation service and the UI surface, so the same core runs inside a design tool bridge,
a CLI, an HTTP server or an MCP server.

# Key Interfaces

  - Node and its capability interfaces: what a host element can do.
  - PageSelector / DocumentSelector / Notifier: optional host capabilities.
  - Generator: the remote generation service.
  - StatusSink: where status events go.
  - DistributedLocker: cross-process serialization of invocations.
*/
package ports
