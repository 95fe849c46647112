// Package genservice is the HTTP generation service that design-tool plugins
// call: POST {description, count} and receive {success: true, texts: [...]}
// or {error: "..."}. Texts come from an upstream language model.
package genservice
