package domain

// GenerationRequest is the body sent to the generation service.
// Description is not validated locally; the service owns that policy.
type GenerationRequest struct {
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// GenerationResponse is the body the generation service answers with.
// Pointer and raw fields let the client tell "missing" apart from "empty".
type GenerationResponse struct {
	Success *bool    `json:"success,omitempty"`
	Texts   []string `json:"texts,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// GenerationResult is the ordered list of generated strings.
// A result longer than the request is fine; callers use the first Count entries.
type GenerationResult []string
