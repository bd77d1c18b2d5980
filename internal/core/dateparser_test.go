package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestParser(now time.Time) *DateParser {
	p := NewDateParser(zap.NewNop(), time.UTC)
	p.now = func() time.Time { return now }
	return p
}

func TestFindCandidatesExplicitYear(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	p := newTestParser(now)

	candidates := p.FindCandidates("Application deadline: January 10, 2026", SourceBody)
	require.NotEmpty(t, candidates)

	first := candidates[0]
	assert.Equal(t, "January 10, 2026", first.RawText)
	assert.Equal(t, 2026, first.ResolvedAt.Year())
	assert.Equal(t, time.January, first.ResolvedAt.Month())
	assert.Equal(t, 10, first.ResolvedAt.Day())
	assert.True(t, first.HasExplicitYear)
	assert.False(t, first.TimeOnly)
	assert.Equal(t, SourceBody, first.Source)
}

func TestFindCandidatesNumericDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	p := newTestParser(now)

	candidates := p.FindCandidates("Submit by 12/01/2025 at the latest", SourceBody)
	require.NotEmpty(t, candidates)
	assert.Equal(t, "12/01/2025", candidates[0].RawText)
	assert.Equal(t, 2025, candidates[0].ResolvedAt.Year())
	assert.True(t, candidates[0].HasExplicitYear)
}

func TestFindCandidatesIsoDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	p := newTestParser(now)

	candidates := p.FindCandidates("Closes 2025-09-30, apply early", SourceBody)
	require.NotEmpty(t, candidates)
	assert.Equal(t, "2025-09-30", candidates[0].RawText)
	assert.Equal(t, time.September, candidates[0].ResolvedAt.Month())
}

func TestFindCandidatesRecentPastRollsToNextYear(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	p := newTestParser(now)

	// June 1 with no year reads as two weeks ago; treat it as next year's
	// occurrence rather than a stale date.
	candidates := p.FindCandidates("Applications are due June 1", SourceBody)
	require.NotEmpty(t, candidates)
	assert.Equal(t, 2026, candidates[0].ResolvedAt.Year())
	assert.Equal(t, time.June, candidates[0].ResolvedAt.Month())
	assert.Equal(t, 1, candidates[0].ResolvedAt.Day())
	assert.False(t, candidates[0].HasExplicitYear)
}

func TestFindCandidatesDistantPastDiscarded(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	p := newTestParser(now)

	// March 3 is over three months gone: a description of a past event.
	candidates := p.FindCandidates("The results from March 3 are in", SourceBody)
	assert.Empty(t, candidates)
}

func TestFindCandidatesPastRollBoundary(t *testing.T) {
	now := time.Date(2025, 11, 20, 10, 0, 0, 0, time.UTC)
	p := newTestParser(now)

	// October 6 is exactly 45 days gone: still close enough to read as next
	// year's occurrence.
	candidates := p.FindCandidates("Deadline: October 6", SourceBody)
	require.NotEmpty(t, candidates)
	assert.Equal(t, 2026, candidates[0].ResolvedAt.Year())
	assert.Equal(t, time.October, candidates[0].ResolvedAt.Month())
	assert.Equal(t, 6, candidates[0].ResolvedAt.Day())

	// One day further back and the span is a past event, not a deadline.
	candidates = p.FindCandidates("Deadline: October 5", SourceBody)
	assert.Empty(t, candidates)
}

func TestFindCandidatesExplicitPastYearKept(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	p := newTestParser(now)

	// An explicit year is trusted, but a past date still fails the future
	// filter and yields no candidate.
	candidates := p.FindCandidates("Deadline: March 3, 2024", SourceBody)
	assert.Empty(t, candidates)
}

func TestFindCandidatesSubjectFarFutureSuspicious(t *testing.T) {
	now := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	p := newTestParser(now)

	candidates := p.FindCandidates("Deadline: December 31", SourceSubject)
	require.NotEmpty(t, candidates)
	assert.True(t, candidates[0].Suspicious)
	assert.Equal(t, 2025, candidates[0].ResolvedAt.Year())
}

func TestFindCandidatesBodyFarFutureNotSuspicious(t *testing.T) {
	now := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	p := newTestParser(now)

	candidates := p.FindCandidates("Deadline: December 31", SourceBody)
	require.NotEmpty(t, candidates)
	assert.False(t, candidates[0].Suspicious)
}

func TestFindCandidatesClockTimeAnchorsToToday(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	p := newTestParser(now)

	candidates := p.FindCandidates("Submit at 11:59 pm tonight", SourceBody)
	require.NotEmpty(t, candidates)

	c := candidates[0]
	assert.True(t, c.TimeOnly)
	assert.True(t, c.HasTime)
	assert.Equal(t, now.Day(), c.ResolvedAt.Day())
	assert.Equal(t, 23, c.ResolvedAt.Hour())
	assert.Equal(t, 59, c.ResolvedAt.Minute())
}

func TestFindCandidatesPastClockTimeDropped(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	p := newTestParser(now)

	candidates := p.FindCandidates("The call was at 9:00 am", SourceBody)
	assert.Empty(t, candidates)
}

func TestInferYearBoundaries(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		parsed     time.Time
		explicit   bool
		subject    bool
		wantOK     bool
		wantYear   int
	}{
		{
			name:     "explicit year trusted even in the past",
			parsed:   time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
			explicit: true,
			wantOK:   true,
			wantYear: 2024,
		},
		{
			name:     "45 days past rolls forward",
			parsed:   time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
			wantOK:   true,
			wantYear: 2026,
		},
		{
			name:   "46 days past rejected",
			parsed: time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
			wantOK: false,
		},
		{
			name:     "future date kept as-is",
			parsed:   time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
			wantOK:   true,
			wantYear: 2025,
		},
		{
			name:    "today with no time from subject rejected",
			parsed:  time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			subject: true,
			wantOK:  false,
		},
		{
			name:     "today with no time from body kept",
			parsed:   time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			wantOK:   true,
			wantYear: 2025,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, ok := InferYear(tt.parsed, now, tt.explicit, tt.subject)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantYear, resolved.Year())
				assert.Equal(t, tt.parsed.Month(), resolved.Month())
				assert.Equal(t, tt.parsed.Day(), resolved.Day())
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		raw        string
		hour, min  int
		ok         bool
	}{
		{"11:59 pm", 23, 59, true},
		{"12:00am", 0, 0, true},
		{"12:30 pm", 12, 30, true},
		{"7:05 pm", 19, 5, true},
		{"17:00", 17, 0, true},
		{"25:00", 0, 0, false},
		{"noon", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			h, m, ok := parseClock(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.hour, h)
				assert.Equal(t, tt.min, m)
			}
		})
	}
}
