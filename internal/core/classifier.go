package core

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// defaultLexicon is the keyword lexicon used for relevance scoring. Matching
// is case-insensitive substring containment over subject, body and sender.
var defaultLexicon = []string{
	// Job/career terms
	"job", "career", "position", "role", "internship", "fellowship",
	"application", "apply", "hiring", "recruitment", "interview",
	"assessment", "coding challenge", "technical interview",
	"opportunity", "opening", "vacancy", "employment",

	// Deadline terms
	"deadline", "due", "expires", "closing date", "last date",
	"application due", "submit by", "deadline:", "due date",

	// Organizational sender markers
	"hr@", "careers@", "recruitment@", "jobs@", "hiring@",
	"noreply@company", ".edu", "university", "college",
}

// recruitingSenderMarkers force a message relevant regardless of keyword
// score when they appear in the sender address.
var recruitingSenderMarkers = []string{"careers@", "hr@", "recruitment@", "jobs@"}

const relevanceThreshold = 2

// RuleClassifier scores messages against a keyword lexicon and sender-domain
// signals. It is a pure function of the message: no I/O, no error paths.
type RuleClassifier struct {
	lexicon []string
	logger  *zap.Logger
}

// NewRuleClassifier creates a rule-based classifier. Extra keywords extend
// the built-in lexicon; they do not replace it.
func NewRuleClassifier(logger *zap.Logger, extraKeywords []string) *RuleClassifier {
	lexicon := make([]string, 0, len(defaultLexicon)+len(extraKeywords))
	lexicon = append(lexicon, defaultLexicon...)
	for _, kw := range extraKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lexicon = append(lexicon, kw)
		}
	}
	return &RuleClassifier{lexicon: lexicon, logger: logger}
}

// Classify scores the message and derives category and urgency
func (c *RuleClassifier) Classify(_ context.Context, msg *Message) (*Classification, error) {
	subject := strings.ToLower(msg.Subject)
	body := strings.ToLower(msg.Body)
	sender := strings.ToLower(msg.Sender)
	allText := subject + " " + body + " " + sender

	score := 0
	var matched []string
	for _, kw := range c.lexicon {
		if strings.Contains(allText, kw) {
			score++
			matched = append(matched, kw)
		}
	}

	result := &Classification{
		Category:        CategoryOther,
		Urgency:         UrgencyLow,
		MatchedKeywords: matched,
		ModelUsed:       "rules",
	}

	if score >= relevanceThreshold {
		result.IsJobRelated = true
		result.Category, result.Urgency = categorize(allText)
	}

	// A recruiting sender address is authoritative even below the keyword
	// threshold.
	for _, marker := range recruitingSenderMarkers {
		if strings.Contains(sender, marker) {
			result.IsJobRelated = true
			if result.Urgency == UrgencyLow {
				result.Urgency = UrgencyMedium
			}
			break
		}
	}

	if len(matched) > 0 {
		head := matched
		if len(head) > 3 {
			head = head[:3]
		}
		result.Reason = "Matched keywords: " + strings.Join(head, ", ")
	} else {
		result.Reason = "No job keywords found"
	}

	c.logger.Debug("Classified message",
		zap.String("message_id", msg.ID),
		zap.Bool("job_related", result.IsJobRelated),
		zap.String("category", string(result.Category)),
		zap.Int("score", score))

	return result, nil
}

// categorize applies the fixed category precedence: interview terms beat
// deadline/application terms beat assessment terms, else job posting.
func categorize(allText string) (Category, Urgency) {
	switch {
	case containsAny(allText, "interview", "interview invitation"):
		return CategoryInterview, UrgencyHigh
	case containsAny(allText, "deadline", "due", "application"):
		return CategoryApplication, UrgencyMedium
	case containsAny(allText, "assessment", "coding challenge", "test"):
		return CategoryAssessment, UrgencyHigh
	default:
		return CategoryJobPosting, UrgencyLow
	}
}

func containsAny(text string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

var _ Classifier = (*RuleClassifier)(nil)
