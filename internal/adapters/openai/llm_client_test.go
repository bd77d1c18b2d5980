package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjun/deadline-tracker/internal/core"
)

func TestParseAnalysisResponse(t *testing.T) {
	resp, err := ParseAnalysisResponse(`{"is_job_related": true, "confidence": 0.92, "category": "interview", "urgency": "high", "reasoning": "Interview invitation with a scheduled slot"}`)
	require.NoError(t, err)

	assert.True(t, resp.IsJobRelated)
	assert.InDelta(t, 0.92, resp.Confidence, 0.001)
	assert.Equal(t, "interview", resp.Category)
	assert.Equal(t, "high", resp.Urgency)
}

func TestParseAnalysisResponseWithSurroundingProse(t *testing.T) {
	text := "Here is my analysis:\n```json\n{\"is_job_related\": false, \"confidence\": 0.8, \"category\": \"other\", \"urgency\": \"low\", \"reasoning\": \"Personal email\"}\n```\nLet me know if you need more."
	resp, err := ParseAnalysisResponse(text)
	require.NoError(t, err)

	assert.False(t, resp.IsJobRelated)
	assert.Equal(t, "other", resp.Category)
}

func TestParseAnalysisResponseNoJSON(t *testing.T) {
	_, err := ParseAnalysisResponse("I could not classify this email.")
	assert.Error(t, err)
}

func TestToClassificationMapping(t *testing.T) {
	tests := []struct {
		name         string
		category     string
		urgency      string
		wantCategory core.Category
		wantUrgency  core.Urgency
	}{
		{"interview high", "interview", "high", core.CategoryInterview, core.UrgencyHigh},
		{"deadline maps to application", "deadline", "medium", core.CategoryApplication, core.UrgencyMedium},
		{"case insensitive", "ASSESSMENT", "HIGH", core.CategoryAssessment, core.UrgencyHigh},
		{"unknown degrades", "spam", "critical", core.CategoryOther, core.UrgencyLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ToClassification(&JobAnalysisResponse{
				IsJobRelated: true,
				Confidence:   0.5,
				Category:     tt.category,
				Urgency:      tt.urgency,
				Reasoning:    "because",
			}, "gpt-4")

			assert.True(t, c.IsJobRelated)
			assert.Equal(t, tt.wantCategory, c.Category)
			assert.Equal(t, tt.wantUrgency, c.Urgency)
			assert.Equal(t, "because", c.Reason)
			assert.Equal(t, "gpt-4", c.ModelUsed)
		})
	}
}
