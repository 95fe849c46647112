package domain

import (
	"errors"
	"fmt"
)

// ErrNoSelection is the cause reported to OnFinish for the empty-selection
// branch. The resolver itself never fails.
var ErrNoSelection = errors.New(MsgNoSelection)

// ErrBusy is returned when a submit arrives while another one is in flight.
var ErrBusy = errors.New(MsgBusy)

// DefaultMalformedMessage is used when a malformed response carries no error text.
const DefaultMalformedMessage = "invalid response format from generation service"

// TransportError wraps a network-level failure (DNS, refused connection, timeout).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError is a non-success HTTP status from the generation service.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed: %d", e.StatusCode)
}

// MalformedResponseError is a success status whose body does not match the contract.
type MalformedResponseError struct {
	Message string
}

func (e *MalformedResponseError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return DefaultMalformedMessage
}

// InsufficientResultsError is returned when the service produced fewer texts than asked.
type InsufficientResultsError struct {
	Requested int
	Actual    int
}

func (e *InsufficientResultsError) Error() string {
	return fmt.Sprintf("not enough texts generated: requested %d, got %d", e.Requested, e.Actual)
}

// UnwritableElementError is returned when an element exposes no text-writing capability.
type UnwritableElementError struct {
	Element string
	Err     error
}

func (e *UnwritableElementError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot modify text layer %q: %v", e.Element, e.Err)
	}
	return fmt.Sprintf("cannot modify text layer %q", e.Element)
}

func (e *UnwritableElementError) Unwrap() error { return e.Err }

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
