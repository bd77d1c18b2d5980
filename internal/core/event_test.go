package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildApplicationEvent(t *testing.T) {
	b := NewEventBuilder("UTC")

	msg := &Message{
		ID:         "msg-1",
		Subject:    "Software Engineer Application",
		Sender:     "careers@acme.com",
		Body:       "Apply by January 10, 2026",
		ReceivedAt: time.Date(2025, 12, 1, 9, 30, 0, 0, time.UTC),
	}
	deadline := &DeadlineInfo{
		HasDeadline: true,
		Date:        time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		Type:        DeadlineApplication,
		SourceText:  "January 10, 2026",
		Source:      SourceBody,
	}

	event := b.Build(msg, deadline)

	assert.Equal(t, "APPLICATION DEADLINE: Software Engineer Application", event.Title)
	assert.Equal(t, time.Date(2026, 1, 10, 23, 59, 0, 0, time.UTC), event.Start)
	assert.Equal(t, event.Start, event.End)
	assert.Equal(t, "UTC", event.Timezone)
	assert.Equal(t, []int{60, 1440, 4320, 10080}, event.ReminderOffsetsMinutes)
	assert.Equal(t, "urgent", event.PriorityTag)
	assert.Equal(t, "11", event.ColorID)

	assert.Equal(t, "msg-1", event.Metadata.MessageID)
	assert.Equal(t, DeadlineApplication, event.Metadata.DeadlineType)
	assert.Equal(t, "deadline-tracker", event.Metadata.CreatedBy)
	assert.Equal(t, "careers@acme.com", event.Metadata.OriginalSender)
}

func TestBuildUsesExtractedTime(t *testing.T) {
	b := NewEventBuilder("UTC")

	deadline := &DeadlineInfo{
		HasDeadline: true,
		Date:        time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		TimeOfDay:   "17:00",
		Type:        DeadlineInterview,
	}

	event := b.Build(&Message{ID: "msg-2", Subject: "Interview"}, deadline)

	assert.Equal(t, 17, event.Start.Hour())
	assert.Equal(t, 0, event.Start.Minute())
}

func TestBuildTitleForOtherType(t *testing.T) {
	b := NewEventBuilder("UTC")

	deadline := &DeadlineInfo{
		HasDeadline: true,
		Date:        time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		Type:        DeadlineOther,
	}

	event := b.Build(&Message{ID: "msg-3", Subject: "Final notice"}, deadline)
	assert.Equal(t, "DEADLINE: Final notice", event.Title)
}

func TestBuildDescriptionContents(t *testing.T) {
	b := NewEventBuilder("UTC")

	msg := &Message{
		ID:         "msg-4",
		Subject:    "Coding challenge",
		Sender:     "hr@acme.com",
		ReceivedAt: time.Date(2025, 12, 1, 9, 30, 0, 0, time.UTC),
	}
	deadline := &DeadlineInfo{
		HasDeadline: true,
		Date:        time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		Type:        DeadlineAssessment,
		SourceText:  "January 10, 2026",
	}

	event := b.Build(msg, deadline)

	assert.Contains(t, event.Description, "Subject: Coding challenge")
	assert.Contains(t, event.Description, "From: hr@acme.com")
	assert.Contains(t, event.Description, "Deadline Type: assessment")
	assert.Contains(t, event.Description, "Deadline Date: 2026-01-10")
	assert.Contains(t, event.Description, `"January 10, 2026"`)
	assert.Contains(t, event.Description, "Complete the coding challenge or assessment test")
	assert.True(t, strings.Contains(event.Description, "Tips:"))
}

func TestReminderOffsetsByType(t *testing.T) {
	tests := []struct {
		dt   DeadlineType
		want []int
	}{
		{DeadlineApplication, []int{60, 1440, 4320, 10080}},
		{DeadlineAssessment, []int{60, 1440, 4320, 10080}},
		{DeadlineInterview, []int{60, 1440, 180, 2880}},
		{DeadlineResponse, []int{60, 1440}},
		{DeadlineEvent, []int{60, 1440}},
		{DeadlineOther, []int{60, 1440}},
	}

	for _, tt := range tests {
		t.Run(string(tt.dt), func(t *testing.T) {
			assert.Equal(t, tt.want, reminderOffsets(tt.dt))
		})
	}
}

func TestBuildInvalidTimezoneFallsBack(t *testing.T) {
	b := NewEventBuilder("Not/AZone")
	require.NotNil(t, b)

	deadline := &DeadlineInfo{
		HasDeadline: true,
		Date:        time.Date(2026, 1, 10, 0, 0, 0, 0, time.Local),
		Type:        DeadlineOther,
	}
	event := b.Build(&Message{ID: "msg-5", Subject: "x"}, deadline)
	assert.Equal(t, 23, event.Start.Hour())
}
