package core

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DedupOutcome is the verdict of the idempotency check
type DedupOutcome string

const (
	// DedupNovel means no prior event exists; the message ID has been reserved
	DedupNovel DedupOutcome = "novel"
	// DedupDuplicate means this message or deadline already produced an event
	DedupDuplicate DedupOutcome = "duplicate"
	// DedupRejected means the deadline is today or past and must not produce
	// an event at all
	DedupRejected DedupOutcome = "rejected"
)

// DedupGuard prevents the same logical email or deadline from producing more
// than one downstream event. It keeps a process-lifetime identity set,
// optionally backed by a persistent registry, and can consult the
// calendar-write collaborator for events created in earlier runs.
//
// For any two concurrent calls with the same message ID, at most one
// observes DedupNovel.
type DedupGuard struct {
	mu       sync.Mutex
	seen     map[string]struct{}
	registry ProcessedRegistry
	logger   *zap.Logger
	now      func() time.Time
}

// NewDedupGuard creates a dedup guard. The registry may be nil, in which
// case only the in-process identity set is used.
func NewDedupGuard(registry ProcessedRegistry, logger *zap.Logger) *DedupGuard {
	return &DedupGuard{
		seen:     make(map[string]struct{}),
		registry: registry,
		logger:   logger,
		now:      time.Now,
	}
}

// CheckAndReserve decides whether a deadline for this message is novel.
// Check order is fixed: identity set, then past-deadline rejection, then the
// external lookup. Only the novel path mutates state, so a duplicate or
// rejected call never consumes an ID without producing a usable event.
func (g *DedupGuard) CheckAndReserve(ctx context.Context, msg *Message, deadlineDate time.Time, lookup ExistingEventLookup) (DedupOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := DedupKey(msg, deadlineDate)
	if _, ok := g.seen[key]; ok {
		g.logger.Debug("Duplicate: message already processed",
			zap.String("message_id", msg.ID))
		return DedupDuplicate, nil
	}

	if g.registry != nil {
		seen, err := g.registry.Seen(ctx, key)
		if err != nil {
			// A registry fault must not block processing; fall through to the
			// remaining checks.
			g.logger.Error("Processed registry lookup failed", zap.Error(err))
		} else if seen {
			g.logger.Debug("Duplicate: message found in registry",
				zap.String("message_id", msg.ID))
			return DedupDuplicate, nil
		}
	}

	// A deadline that is today or already past is non-actionable regardless
	// of any existing event; reject before the external lookup.
	if daysBetween(g.now(), deadlineDate) <= 0 {
		g.logger.Debug("Rejected: deadline is today or past",
			zap.String("message_id", msg.ID),
			zap.Time("deadline", deadlineDate))
		return DedupRejected, nil
	}

	if lookup != nil {
		exists, err := lookup(ctx, NormalizedSubjectPrefix(msg.Subject), deadlineDate)
		if err != nil {
			// Fail-safe: if the collaborator cannot be asked, assume novel
			g.logger.Warn("External event lookup failed, assuming novel",
				zap.Error(err))
		} else if exists {
			g.logger.Debug("Duplicate: matching event exists externally",
				zap.String("message_id", msg.ID))
			return DedupDuplicate, nil
		}
	}

	g.seen[key] = struct{}{}
	if g.registry != nil {
		if err := g.registry.Mark(ctx, key, deadlineDate); err != nil {
			g.logger.Error("Failed to record processed message", zap.Error(err))
		}
	}
	return DedupNovel, nil
}

// DedupKey derives the identity key for a message. The message ID is
// authoritative; messages without one fall back to a normalized subject
// prefix paired with the deadline date.
func DedupKey(msg *Message, deadlineDate time.Time) string {
	if msg.ID != "" {
		return msg.ID
	}
	return NormalizedSubjectPrefix(msg.Subject) + "|" + deadlineDate.Format("2006-01-02")
}

// NormalizedSubjectPrefix lowercases a subject, strips forward/reply
// prefixes and truncates it for duplicate matching.
func NormalizedSubjectPrefix(subject string) string {
	s := strings.ToLower(strings.TrimSpace(subject))
	for changed := true; changed; {
		changed = false
		for _, prefix := range forwardPrefixes {
			if strings.HasPrefix(s, prefix) {
				s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
				changed = true
			}
		}
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}
