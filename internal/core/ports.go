package core

import (
	"context"
	"time"
)

// Classifier defines the interface for deciding whether a message is a
// job/career opportunity. The rule-based engine and the LLM adapters both
// implement it.
type Classifier interface {
	// Classify analyzes a message and returns its relevance classification
	Classify(ctx context.Context, msg *Message) (*Classification, error)
}

// ProcessedRegistry defines the interface for recording which message IDs
// have already produced a calendar event.
type ProcessedRegistry interface {
	// Seen reports whether the message ID has been recorded
	Seen(ctx context.Context, messageID string) (bool, error)

	// Mark records a message ID together with the deadline it produced
	Mark(ctx context.Context, messageID string, deadline time.Time) error

	// Cleanup removes expired entries, if the backend expires at all
	Cleanup(ctx context.Context) error
}

// ExistingEventLookup asks the calendar-write collaborator whether an event
// matching the subject prefix already exists on the given day.
type ExistingEventLookup func(ctx context.Context, subjectPrefix string, day time.Time) (bool, error)

// EventWriter is the calendar-write collaborator as seen from the engine:
// it creates remote events from descriptors and answers duplicate lookups
// for events created in earlier runs.
type EventWriter interface {
	// CreateEvent writes the event remotely and returns its stable remote ID
	CreateEvent(ctx context.Context, event *EventDescriptor) (string, error)

	// EventExists reports whether an event matching the subject prefix
	// already exists on the given day
	EventExists(ctx context.Context, subjectPrefix string, day time.Time) (bool, error)
}
