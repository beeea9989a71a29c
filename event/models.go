package event

import (
	"encoding/json"
	"time"
)

// Status enumerates the lifecycle states an event moves through. Pending events
// are eligible for assignment, Assigned events carry a live lease, and
// Completed is terminal.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusAssigned  Status = "Assigned"
	StatusCompleted Status = "Completed"
)

// Decision is the reviewer's verdict recorded on completion.
type Decision string

const (
	DecisionApproved Decision = "Approved"
	DecisionRejected Decision = "Rejected"
)

// ValidDecision reports whether d is one of the two accepted verdicts.
func ValidDecision(d Decision) bool {
	return d == DecisionApproved || d == DecisionRejected
}

// Event mirrors the events table columns touched by the engine.
type Event struct {
	ID              string
	ExternalEventID *string
	Region          string
	Payload         json.RawMessage
	Status          Status
	AssignedUserID  *string
	AssignedAt      *time.Time
	CompletedAt     *time.Time
	ReviewUserID    *string
	ReviewedAt      *time.Time
	ReviewDecision  *Decision
	ReviewComment   *string
	IngestedAt      time.Time
}

// AssignedEvent is the slice of an event handed to a reviewer when a batch is
// claimed. The full record stays in the central store.
type AssignedEvent struct {
	EventID         string          `json:"eventId"`
	ExternalEventID *string         `json:"externalEventId"`
	Region          string          `json:"region"`
	Payload         json.RawMessage `json:"payload"`
}

// RequeueReport summarises one lease sweep. Processed counts leases that
// looked expired at scan time; Requeued counts rows actually returned to
// Pending. The two may differ when a review completes mid-sweep.
type RequeueReport struct {
	Processed int `json:"processed"`
	Requeued  int `json:"requeued"`
	Errors    int `json:"errors"`
}
