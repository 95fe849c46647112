/*
Package domain contains the core models of the textfill pipeline.

It defines the values that flow between the UI surface, the fill orchestrator, the host
document and the remote generation service. The package is kept free of I/O so that every
adapter (stdio, HTTP, MCP) shares one vocabulary.

# Key Entities

  - Command: the inbound request from the UI surface (bare or wrapped in an envelope).
  - StatusEvent: the outbound loading/error/success notification.
  - GenerationRequest / GenerationResult: the contract with the generation service.
  - Typed errors: TransportError, ServiceError, MalformedResponseError,
    InsufficientResultsError and UnwritableElementError.
*/
package domain
