package ports

import (
	"context"
	"time"

	"github.com/arjun/deadline-tracker/internal/core"
)

// Reminder is an existing deadline event as reported by the calendar
type Reminder struct {
	ID             string
	Title          string
	Start          time.Time
	DeadlineType   core.DeadlineType
	OriginalSender string
	Link           string
}

// CalendarService is the full calendar collaborator: the engine-facing
// writer plus the reminder management operations the host exposes.
type CalendarService interface {
	core.EventWriter

	// UpcomingReminders lists deadline events this system created within the
	// next daysAhead days
	UpcomingReminders(ctx context.Context, daysAhead int) ([]Reminder, error)

	// DeleteReminder removes a previously created reminder event
	DeleteReminder(ctx context.Context, eventID string) error
}
