package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClassifier(extra ...string) *RuleClassifier {
	return NewRuleClassifier(zap.NewNop(), extra)
}

func TestClassifyIgnoresUnrelatedMail(t *testing.T) {
	c := newTestClassifier()

	result, err := c.Classify(context.Background(), &Message{
		ID:      "m1",
		Subject: "Lunch on Friday?",
		Sender:  "friend@example.com",
		Body:    "Want to grab lunch this week?",
	})
	require.NoError(t, err)

	assert.False(t, result.IsJobRelated)
	assert.Equal(t, CategoryOther, result.Category)
	assert.Equal(t, UrgencyLow, result.Urgency)
	assert.Equal(t, "No job keywords found", result.Reason)
}

func TestClassifySingleKeywordBelowThreshold(t *testing.T) {
	c := newTestClassifier()

	result, err := c.Classify(context.Background(), &Message{
		ID:      "m2",
		Subject: "Exciting opportunity",
		Sender:  "someone@example.com",
		Body:    "Thought you might like this.",
	})
	require.NoError(t, err)

	assert.False(t, result.IsJobRelated)
	assert.Equal(t, []string{"opportunity"}, result.MatchedKeywords)
}

func TestClassifyInterviewIsHighUrgency(t *testing.T) {
	c := newTestClassifier()

	result, err := c.Classify(context.Background(), &Message{
		ID:      "m3",
		Subject: "Interview invitation",
		Sender:  "someone@example.com",
		Body:    "We would like to schedule a technical interview next week.",
	})
	require.NoError(t, err)

	assert.True(t, result.IsJobRelated)
	assert.Equal(t, CategoryInterview, result.Category)
	assert.Equal(t, UrgencyHigh, result.Urgency)
	assert.Equal(t, "rules", result.ModelUsed)
}

func TestClassifyApplicationDeadline(t *testing.T) {
	c := newTestClassifier()

	result, err := c.Classify(context.Background(), &Message{
		ID:      "m4",
		Subject: "Application deadline approaching",
		Sender:  "someone@example.com",
		Body:    "Your application is due this Friday.",
	})
	require.NoError(t, err)

	assert.True(t, result.IsJobRelated)
	assert.Equal(t, CategoryApplication, result.Category)
	assert.Equal(t, UrgencyMedium, result.Urgency)
}

func TestClassifyInterviewBeatsApplication(t *testing.T) {
	c := newTestClassifier()

	// Both interview and application terms present: interview wins.
	result, err := c.Classify(context.Background(), &Message{
		ID:      "m5",
		Subject: "Interview for your application",
		Sender:  "someone@example.com",
		Body:    "Following up on your application, we would like to interview you.",
	})
	require.NoError(t, err)

	assert.True(t, result.IsJobRelated)
	assert.Equal(t, CategoryInterview, result.Category)
	assert.Equal(t, UrgencyHigh, result.Urgency)
}

func TestClassifyRecruitingSenderOverridesThreshold(t *testing.T) {
	c := newTestClassifier()

	// Only one lexicon hit (the sender marker itself), but a recruiting
	// address is authoritative.
	result, err := c.Classify(context.Background(), &Message{
		ID:      "m6",
		Subject: "Quick update",
		Sender:  "hr@acme.com",
		Body:    "Please see the attached note.",
	})
	require.NoError(t, err)

	assert.True(t, result.IsJobRelated)
	assert.Equal(t, UrgencyMedium, result.Urgency)
}

func TestClassifyRecruitingSenderKeepsHigherUrgency(t *testing.T) {
	c := newTestClassifier()

	result, err := c.Classify(context.Background(), &Message{
		ID:      "m7",
		Subject: "Interview invitation",
		Sender:  "careers@acme.com",
		Body:    "We would like to invite you to a technical interview.",
	})
	require.NoError(t, err)

	assert.True(t, result.IsJobRelated)
	assert.Equal(t, UrgencyHigh, result.Urgency)
}

func TestClassifyExtraKeywordsExtendLexicon(t *testing.T) {
	c := newTestClassifier("hackathon", " Stipend ")

	result, err := c.Classify(context.Background(), &Message{
		ID:      "m8",
		Subject: "Hackathon registration",
		Sender:  "someone@example.com",
		Body:    "A stipend is provided to all participants.",
	})
	require.NoError(t, err)

	assert.True(t, result.IsJobRelated)
	assert.Contains(t, result.MatchedKeywords, "hackathon")
	assert.Contains(t, result.MatchedKeywords, "stipend")
}

func TestClassifyReasonListsAtMostThreeKeywords(t *testing.T) {
	c := newTestClassifier()

	result, err := c.Classify(context.Background(), &Message{
		ID:      "m9",
		Subject: "Job opening: internship position",
		Sender:  "someone@example.com",
		Body:    "Apply now for this internship opportunity. Application deadline soon.",
	})
	require.NoError(t, err)

	require.True(t, result.IsJobRelated)
	assert.Greater(t, len(result.MatchedKeywords), 3)
	assert.Equal(t, "Matched keywords: job, position, internship", result.Reason)
}
