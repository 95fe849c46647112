package domain

import (
	"context"
	"time"
)

// InvocationEvent describes one finished orchestrator invocation.
type InvocationEvent struct {
	Timestamp    time.Time     `json:"timestamp"`
	InvocationID string        `json:"invocation_id"`
	Selected     int           `json:"selected"`
	Applied      int           `json:"applied"`
	Duration     time.Duration `json:"duration"`
	Outcome      StatusEvent   `json:"outcome"`
	// Err is the cause of an error outcome (ErrNoSelection, ErrBusy, a
	// generation or apply error); nil on success.
	Err          error         `json:"-"`
}

// ApplyEvent describes a single successful write into a host element.
type ApplyEvent struct {
	InvocationID string `json:"invocation_id"`
	Index        int    `json:"index"`
	Element      string `json:"element"`
	Pathway      string `json:"pathway"`
	Text         string `json:"text"`
}

// LifecycleHooks defines callbacks for orchestrator observability.
type LifecycleHooks struct {
	OnStatus func(context.Context, StatusEvent)
	OnApply  func(context.Context, *ApplyEvent)
	OnFinish func(context.Context, *InvocationEvent)
}
