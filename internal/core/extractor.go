package core

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

var forwardPrefixes = []string{"fwd:", "fw:", "re:"}

// DeadlineExtractor orchestrates the date parser over a message's body and
// subject and arbitrates between the two sources.
type DeadlineExtractor struct {
	parser *DateParser
	logger *zap.Logger
}

// NewDeadlineExtractor creates a deadline extractor
func NewDeadlineExtractor(parser *DateParser, logger *zap.Logger) *DeadlineExtractor {
	return &DeadlineExtractor{parser: parser, logger: logger}
}

// Extract returns the one canonical deadline for a message, or a zero
// DeadlineInfo with HasDeadline=false when nothing survives filtering.
//
// Body candidates are authoritative: the subject is only consulted when the
// body yielded no date materially different from today, and never for
// forwarded or replied messages, whose subject dates describe the original
// thread rather than an actionable deadline.
func (e *DeadlineExtractor) Extract(msg *Message) DeadlineInfo {
	forwarded := isForwarded(msg.Subject)
	if forwarded {
		e.logger.Debug("Forwarded or replied message, subject dates excluded",
			zap.String("message_id", msg.ID),
			zap.String("subject", msg.Subject))
	}

	bodyCandidates := e.parser.FindCandidates(msg.Body, SourceBody)

	hasBodyDate := false
	for _, c := range bodyCandidates {
		if !c.TimeOnly {
			hasBodyDate = true
			break
		}
	}

	candidates := bodyCandidates
	if !hasBodyDate && !forwarded {
		candidates = append(candidates, e.parser.FindCandidates(msg.Subject, SourceSubject)...)
	}

	best := selectEarliest(candidates)
	if best == nil {
		return DeadlineInfo{}
	}

	info := DeadlineInfo{
		HasDeadline: true,
		Date:        dateOf(best.ResolvedAt),
		Type:        inferDeadlineType(msg.Subject + " " + msg.Body),
		SourceText:  best.RawText,
		Source:      best.Source,
	}
	if best.HasTime {
		info.TimeOfDay = best.ResolvedAt.Format("15:04")
	}
	info.Description = "Deadline for " + string(info.Type)

	e.logger.Debug("Selected deadline",
		zap.String("message_id", msg.ID),
		zap.Time("date", info.Date),
		zap.String("time", info.TimeOfDay),
		zap.String("source", string(info.Source)),
		zap.String("type", string(info.Type)))

	return info
}

// selectEarliest picks the earliest-dated candidate; equal dates keep list
// order, so body candidates win ties against subject candidates. Time-only
// candidates (a bare clock time anchored to today) are a fallback used only
// when no dated candidate exists at all.
func selectEarliest(candidates []DateCandidate) *DateCandidate {
	var best *DateCandidate
	for i := range candidates {
		c := &candidates[i]
		if c.TimeOnly {
			continue
		}
		if best == nil || c.ResolvedAt.Before(best.ResolvedAt) {
			best = c
		}
	}
	if best != nil {
		return best
	}
	for i := range candidates {
		c := &candidates[i]
		if best == nil || c.ResolvedAt.Before(best.ResolvedAt) {
			best = c
		}
	}
	return best
}

// inferDeadlineType scans the combined subject+body text with a fixed
// keyword precedence.
func inferDeadlineType(text string) DeadlineType {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "application", "apply"):
		return DeadlineApplication
	case containsAny(lower, "interview", "meeting"):
		return DeadlineInterview
	case containsAny(lower, "assessment", "test", "challenge"):
		return DeadlineAssessment
	case containsAny(lower, "response", "reply", "confirm"):
		return DeadlineResponse
	case containsAny(lower, "event", "conference", "fair"):
		return DeadlineEvent
	default:
		return DeadlineOther
	}
}

func isForwarded(subject string) bool {
	lower := strings.ToLower(subject)
	for _, prefix := range forwardPrefixes {
		if strings.Contains(lower, prefix) {
			return true
		}
	}
	return false
}

// dateOf truncates a timestamp to midnight of its calendar date
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
