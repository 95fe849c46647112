package domain

import "fmt"

// StatusKind is the tag of a StatusEvent.
type StatusKind string

const (
	StatusLoading StatusKind = "loading"
	StatusError   StatusKind = "error"
	StatusSuccess StatusKind = "success"
)

// Messages emitted by the orchestrator.
const (
	MsgProcessing  = "processing"
	MsgNoSelection = "please select a text layer"
	MsgBusy        = "another fill is already in progress"
	MsgUnknown     = "processing failed, please retry"
)

// StatusEvent is what the UI surface receives. Exactly one terminal event
// (error or success) ends every invocation.
type StatusEvent struct {
	Type    StatusKind `json:"type"`
	Message string     `json:"message"`
}

// Terminal reports whether the event ends an invocation.
func (e StatusEvent) Terminal() bool {
	return e.Type == StatusError || e.Type == StatusSuccess
}

func (e StatusEvent) String() string {
	return string(e.Type) + ": " + e.Message
}

// Loading builds a non-terminal progress event.
func Loading(msg string) StatusEvent {
	return StatusEvent{Type: StatusLoading, Message: msg}
}

// Failed builds an error terminal event.
func Failed(msg string) StatusEvent {
	return StatusEvent{Type: StatusError, Message: msg}
}

// Succeeded builds a success terminal event.
func Succeeded(msg string) StatusEvent {
	return StatusEvent{Type: StatusSuccess, Message: msg}
}

// GeneratingMessage is the progress message shown before the network call.
func GeneratingMessage(n int) string {
	return fmt.Sprintf("generating %d texts", n)
}

// FilledMessage is the success message carrying the number of applied texts.
func FilledMessage(k int) string {
	return fmt.Sprintf("filled %d text layers", k)
}
