package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EngineService runs messages through the full pipeline: relevance
// classification, deadline extraction, dedup check, event building. Every
// outcome is a return value; an irrelevant message or a message without a
// deadline is a normal result, not an error.
type EngineService struct {
	classifier Classifier
	fallback   *RuleClassifier
	extractor  *DeadlineExtractor
	guard      *DedupGuard
	builder    *EventBuilder
	writer     EventWriter
	logger     *zap.Logger
}

// NewEngineService creates the engine. The fallback classifier is consulted
// when the primary classifier fails (an LLM provider error); pass the
// primary itself as fallback when running pure rule-based. The writer may be
// nil, in which case descriptors are returned without a remote write and
// duplicate detection is limited to the identity set and registry.
func NewEngineService(
	classifier Classifier,
	fallback *RuleClassifier,
	extractor *DeadlineExtractor,
	guard *DedupGuard,
	builder *EventBuilder,
	writer EventWriter,
	logger *zap.Logger,
) *EngineService {
	return &EngineService{
		classifier: classifier,
		fallback:   fallback,
		extractor:  extractor,
		guard:      guard,
		builder:    builder,
		writer:     writer,
		logger:     logger,
	}
}

// ProcessMessage runs one message start to finish and returns its outcome
func (s *EngineService) ProcessMessage(ctx context.Context, msg *Message) (*ProcessResult, error) {
	result := &ProcessResult{
		ProcessingID: uuid.NewString(),
		ProcessedAt:  time.Now(),
	}

	classification, err := s.classifier.Classify(ctx, msg)
	if err != nil {
		s.logger.Warn("Primary classifier failed, falling back to rules",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		classification, err = s.fallback.Classify(ctx, msg)
		if err != nil {
			return nil, err
		}
	}
	result.Classification = classification

	if !classification.IsJobRelated {
		result.Status = OutcomeIrrelevant
		return result, nil
	}

	deadline := s.extractor.Extract(msg)
	if !deadline.HasDeadline {
		result.Status = OutcomeNoDeadline
		return result, nil
	}
	result.Deadline = &deadline

	var lookup ExistingEventLookup
	if s.writer != nil {
		lookup = s.writer.EventExists
	}
	verdict, err := s.guard.CheckAndReserve(ctx, msg, deadline.Date, lookup)
	if err != nil {
		return nil, err
	}
	switch verdict {
	case DedupRejected:
		result.Status = OutcomeRejected
		s.logger.Info("Deadline rejected as already past",
			zap.String("message_id", msg.ID),
			zap.Time("deadline", deadline.Date))
		return result, nil
	case DedupDuplicate:
		result.Status = OutcomeDuplicate
		s.logger.Info("Duplicate deadline skipped",
			zap.String("message_id", msg.ID))
		return result, nil
	}

	event := s.builder.Build(msg, &deadline)
	result.Event = event
	// The outcome reports descriptor construction; the remote write is
	// best-effort and a failure is logged, not surfaced in the status.
	result.Status = OutcomeCreated

	if s.writer != nil {
		remoteID, err := s.writer.CreateEvent(ctx, event)
		if err != nil {
			s.logger.Error("Calendar event creation failed",
				zap.String("message_id", msg.ID),
				zap.Error(err))
		} else {
			s.logger.Info("Calendar event created",
				zap.String("message_id", msg.ID),
				zap.String("event_id", remoteID),
				zap.Time("deadline", event.Start))
		}
	}

	return result, nil
}
