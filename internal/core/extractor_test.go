package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestExtractor(now time.Time) *DeadlineExtractor {
	return NewDeadlineExtractor(newTestParser(now), zap.NewNop())
}

func TestExtractBodyDateWinsOverSubject(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	e := newTestExtractor(now)

	info := e.Extract(&Message{
		ID:      "m1",
		Subject: "Apply by July 1, 2025",
		Sender:  "careers@acme.com",
		Body:    "The application deadline: August 5, 2025. Good luck!",
	})

	require.True(t, info.HasDeadline)
	assert.Equal(t, SourceBody, info.Source)
	assert.Equal(t, time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC), info.Date)
	assert.Equal(t, "August 5, 2025", info.SourceText)
}

func TestExtractSubjectUsedWhenBodyHasNoDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	e := newTestExtractor(now)

	info := e.Extract(&Message{
		ID:      "m2",
		Subject: "Application deadline Jan 01, 2026",
		Sender:  "careers@acme.com",
		Body:    "Please see the subject line for details.",
	})

	require.True(t, info.HasDeadline)
	assert.Equal(t, SourceSubject, info.Source)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), info.Date)
}

func TestExtractEarliestDateWins(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	e := newTestExtractor(now)

	info := e.Extract(&Message{
		ID:      "m3",
		Subject: "Two rounds ahead",
		Sender:  "careers@acme.com",
		Body:    "Final interview on September 10, 2025. Submit the form by August 5, 2025.",
	})

	require.True(t, info.HasDeadline)
	assert.Equal(t, time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC), info.Date)
}

func TestExtractForwardedSubjectIgnored(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	e := newTestExtractor(now)

	info := e.Extract(&Message{
		ID:      "m4",
		Subject: "Fwd: deadline June 30, 2025",
		Sender:  "friend@example.com",
		Body:    "Thought this might interest you.",
	})

	assert.False(t, info.HasDeadline)
}

func TestExtractRepliedSubjectIgnored(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	e := newTestExtractor(now)

	info := e.Extract(&Message{
		ID:      "m5",
		Subject: "Re: apply by July 1, 2025",
		Sender:  "friend@example.com",
		Body:    "Sounds good to me.",
	})

	assert.False(t, info.HasDeadline)
}

func TestExtractForwardedBodyStillUsed(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	e := newTestExtractor(now)

	info := e.Extract(&Message{
		ID:      "m6",
		Subject: "Fwd: great opening",
		Sender:  "friend@example.com",
		Body:    "Check this out. Applications due July 1, 2025.",
	})

	require.True(t, info.HasDeadline)
	assert.Equal(t, SourceBody, info.Source)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), info.Date)
}

func TestExtractDatedCandidateBeatsTimeOnly(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	e := newTestExtractor(now)

	// A bare clock time anchored to today resolves earlier than the real
	// deadline date, but the dated candidate is the deadline.
	info := e.Extract(&Message{
		ID:      "m7",
		Subject: "Application window open",
		Sender:  "careers@acme.com",
		Body:    "Submit at 11:59 pm on the portal. Application deadline: January 10, 2026.",
	})

	require.True(t, info.HasDeadline)
	assert.Equal(t, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), info.Date)
	assert.Equal(t, DeadlineApplication, info.Type)
}

func TestExtractTimeOnlyFallback(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	e := newTestExtractor(now)

	info := e.Extract(&Message{
		ID:      "m8",
		Subject: "Last call",
		Sender:  "careers@acme.com",
		Body:    "The portal closes at 11:59 pm.",
	})

	require.True(t, info.HasDeadline)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), info.Date)
	assert.Equal(t, "23:59", info.TimeOfDay)
}

func TestExtractNoCandidates(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	e := newTestExtractor(now)

	info := e.Extract(&Message{
		ID:      "m9",
		Subject: "Checking in",
		Sender:  "friend@example.com",
		Body:    "How have you been?",
	})

	assert.False(t, info.HasDeadline)
	assert.True(t, info.Date.IsZero())
}

func TestInferDeadlineTypePrecedence(t *testing.T) {
	tests := []struct {
		text string
		want DeadlineType
	}{
		{"submit your application now", DeadlineApplication},
		{"apply before the window closes", DeadlineApplication},
		{"your interview is scheduled", DeadlineInterview},
		{"interview after you apply", DeadlineApplication},
		{"complete the coding challenge", DeadlineAssessment},
		{"please confirm your attendance", DeadlineResponse},
		{"the career fair opens soon", DeadlineEvent},
		{"something is happening", DeadlineOther},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, inferDeadlineType(tt.text))
		})
	}
}

func TestIsForwarded(t *testing.T) {
	assert.True(t, isForwarded("Fwd: job posting"))
	assert.True(t, isForwarded("FW: job posting"))
	assert.True(t, isForwarded("Re: interview"))
	assert.False(t, isForwarded("Forwarding address update"))
	assert.False(t, isForwarded("Reminder about your interview"))
}
