package core

import (
	"time"
)

// Message represents an incoming email message
type Message struct {
	ID         string
	Subject    string
	Sender     string
	Body       string
	ReceivedAt time.Time
}

// Category classifies what kind of job-related email a message is
type Category string

const (
	CategoryJobPosting  Category = "job_posting"
	CategoryApplication Category = "application"
	CategoryInterview   Category = "interview"
	CategoryAssessment  Category = "assessment"
	CategoryEvent       Category = "event"
	CategoryOther       Category = "other"
)

// Urgency indicates how quickly a message needs attention
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// DeadlineType classifies what action a deadline demands
type DeadlineType string

const (
	DeadlineApplication DeadlineType = "application"
	DeadlineInterview   DeadlineType = "interview"
	DeadlineAssessment  DeadlineType = "assessment"
	DeadlineResponse    DeadlineType = "response"
	DeadlineEvent       DeadlineType = "event"
	DeadlineOther       DeadlineType = "other"
)

// CandidateSource records which part of the message a date candidate came from
type CandidateSource string

const (
	SourceBody    CandidateSource = "body"
	SourceSubject CandidateSource = "subject"
)

// Classification represents the result of relevance classification
type Classification struct {
	IsJobRelated    bool
	Category        Category
	Urgency         Urgency
	Reason          string
	MatchedKeywords []string
	Confidence      float64
	ModelUsed       string
}

// DateCandidate is a text span provisionally recognized as date/time
// information, after year inference and recency filtering have been applied.
type DateCandidate struct {
	RawText         string
	ResolvedAt      time.Time
	Source          CandidateSource
	HasExplicitYear bool
	// HasTime is true when the candidate carried a clock time
	HasTime bool
	// TimeOnly is true for candidates that matched a pure time pattern and
	// were anchored to today's date
	TimeOnly bool
	// Suspicious marks a subject candidate more than 180 days out with no
	// explicit year. It is a warning signal, never a filter.
	Suspicious bool
}

// DeadlineInfo represents the canonical deadline extracted from a message
type DeadlineInfo struct {
	HasDeadline bool
	Date        time.Time
	// TimeOfDay is "HH:MM", empty when only a calendar date was extracted
	TimeOfDay   string
	Type        DeadlineType
	SourceText  string
	Source      CandidateSource
	Description string
}

// EventMetadata carries identity information into the remote calendar event
// so the collaborator can do its own duplicate lookups later.
type EventMetadata struct {
	MessageID      string
	DeadlineType   DeadlineType
	CreatedBy      string
	OriginalSender string
}

// EventDescriptor describes the calendar event to create for a deadline.
// Start and End are identical: the event is an instantaneous marker, not an
// interval.
type EventDescriptor struct {
	Title                  string
	Description            string
	Start                  time.Time
	End                    time.Time
	Timezone               string
	ReminderOffsetsMinutes []int
	PriorityTag            string
	ColorID                string
	Metadata               EventMetadata
}

// OutcomeStatus is the terminal status of processing one message
type OutcomeStatus string

const (
	OutcomeIrrelevant OutcomeStatus = "irrelevant"
	OutcomeNoDeadline OutcomeStatus = "no_deadline"
	OutcomeRejected   OutcomeStatus = "rejected"
	OutcomeDuplicate  OutcomeStatus = "duplicate"
	OutcomeCreated    OutcomeStatus = "created"
)

// ProcessResult represents the full result of running a message through the
// engine pipeline.
type ProcessResult struct {
	ProcessingID   string
	Status         OutcomeStatus
	Classification *Classification
	Deadline       *DeadlineInfo
	Event          *EventDescriptor
	ProcessedAt    time.Time
}
