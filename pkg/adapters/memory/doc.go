/*
Package memory provides an in-memory host document for the fill pipeline.

It stands in for a design tool's object model: pages with their own selections, a
document-level selection, and text layers that expose different write capabilities
(a characters property, a SetText method, or a legacy text property) next to shapes that
expose none. Documents load from and save to YAML or JSON fixtures, which is how the CLI,
the HTTP bridge and the MCP server drive the orchestrator outside a real host.
*/
package memory
