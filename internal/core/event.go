package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	// defaultDeadlineTime is used when no clock time was extracted
	defaultDeadlineTime = "23:59"
	// createdByTag identifies events this system wrote, for later lookups
	createdByTag = "deadline-tracker"
	// deadlineColorID is Google Calendar's red; every surfaced deadline is
	// time-boxed, so they are all flagged urgent
	deadlineColorID = "11"
)

// actionTexts maps a deadline type to the action sentence embedded in the
// event description.
var actionTexts = map[DeadlineType]string{
	DeadlineApplication: "Submit your complete application with all required documents",
	DeadlineInterview:   "Confirm your interview attendance and prepare thoroughly",
	DeadlineAssessment:  "Complete the coding challenge or assessment test",
	DeadlineResponse:    "Send your response or confirmation as requested",
	DeadlineEvent:       "Register or attend the scheduled event",
	DeadlineOther:       "Take the required action as specified in the email",
}

// baseReminderOffsets apply to every deadline: 1 hour and 1 day before
var baseReminderOffsets = []int{60, 1440}

// EventBuilder turns an accepted (message, classification, deadline) triple
// into an event descriptor for the calendar-write collaborator. It is a pure
// transform with no error paths.
type EventBuilder struct {
	timezone string
	loc      *time.Location
}

// NewEventBuilder creates an event builder stamping descriptors with the
// given timezone identifier.
func NewEventBuilder(timezone string) *EventBuilder {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.Local
	}
	return &EventBuilder{timezone: timezone, loc: loc}
}

// Build creates the event descriptor for a deadline. Callers must only
// invoke it after the extractor found a deadline and the dedup guard
// returned novel.
func (b *EventBuilder) Build(msg *Message, deadline *DeadlineInfo) *EventDescriptor {
	start := b.startTime(deadline)

	return &EventDescriptor{
		Title:                  buildTitle(msg.Subject, deadline.Type),
		Description:            buildDescription(msg, deadline),
		Start:                  start,
		End:                    start,
		Timezone:               b.timezone,
		ReminderOffsetsMinutes: reminderOffsets(deadline.Type),
		PriorityTag:            "urgent",
		ColorID:                deadlineColorID,
		Metadata: EventMetadata{
			MessageID:      msg.ID,
			DeadlineType:   deadline.Type,
			CreatedBy:      createdByTag,
			OriginalSender: msg.Sender,
		},
	}
}

// startTime combines the deadline date with the extracted clock time,
// defaulting to end of day.
func (b *EventBuilder) startTime(deadline *DeadlineInfo) time.Time {
	tod := deadline.TimeOfDay
	if tod == "" {
		tod = defaultDeadlineTime
	}
	hour, minute, ok := parseClock(tod)
	if !ok {
		hour, minute = 23, 59
	}
	d := deadline.Date
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, b.loc)
}

func buildTitle(subject string, dt DeadlineType) string {
	if dt == DeadlineOther {
		return "DEADLINE: " + subject
	}
	return strings.ToUpper(string(dt)) + " DEADLINE: " + subject
}

func buildDescription(msg *Message, deadline *DeadlineInfo) string {
	var sb strings.Builder
	sb.WriteString("Job Deadline Reminder\n\n")
	fmt.Fprintf(&sb, "Subject: %s\n", msg.Subject)
	fmt.Fprintf(&sb, "From: %s\n", msg.Sender)
	fmt.Fprintf(&sb, "Received: %s\n", msg.ReceivedAt.Format(time.RFC1123))
	fmt.Fprintf(&sb, "Deadline Type: %s\n", deadline.Type)
	fmt.Fprintf(&sb, "Deadline Date: %s\n\n", deadline.Date.Format("2006-01-02"))
	fmt.Fprintf(&sb, "Extracted Text: %q\n", deadline.SourceText)
	fmt.Fprintf(&sb, "Action Required: %s\n\n", actionTexts[deadline.Type])
	sb.WriteString("Tips:\n")
	sb.WriteString("  - Set up your materials in advance\n")
	sb.WriteString("  - Double-check all requirements\n")
	sb.WriteString("  - Submit early to avoid technical issues\n")
	return sb.String()
}

// reminderOffsets returns the reminder schedule, in minutes before the
// deadline. Applications and assessments get long-range reminders (3 and 7
// days); interviews get short-range ones (3 hours and 2 days).
func reminderOffsets(dt DeadlineType) []int {
	offsets := make([]int, len(baseReminderOffsets))
	copy(offsets, baseReminderOffsets)
	switch dt {
	case DeadlineApplication, DeadlineAssessment:
		offsets = append(offsets, 4320, 10080)
	case DeadlineInterview:
		offsets = append(offsets, 180, 2880)
	}
	return offsets
}
