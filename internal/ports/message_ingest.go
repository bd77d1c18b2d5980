package ports

import (
	"context"

	"github.com/arjun/deadline-tracker/internal/core"
)

// MessageIngest defines the interface for message ingestion front-ends
type MessageIngest interface {
	// ProcessMessage runs a message through the engine and returns the result
	ProcessMessage(ctx context.Context, msg *core.Message) (*core.ProcessResult, error)

	// Start starts the ingestion service
	Start() error

	// Stop stops the ingestion service
	Stop() error
}
