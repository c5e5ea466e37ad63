package models

import "time"

// EnforcementEventKind labels the events fanned out to the admin feed.
type EnforcementEventKind string

const (
	EventViolationRecorded EnforcementEventKind = "violation_recorded"
	EventAccountSuspended  EnforcementEventKind = "account_suspended"
	EventAccountReinstated EnforcementEventKind = "account_reinstated"
	EventAppealSubmitted   EnforcementEventKind = "appeal_submitted"
	EventAppealResolved    EnforcementEventKind = "appeal_resolved"
)

// EnforcementEvent is the ephemeral payload published on the enforcement
// pub/sub channel and streamed to admin dashboards. It is not persisted;
// the ledger, suspension and appeal tables are the durable record.
type EnforcementEvent struct {
	Kind      EnforcementEventKind `json:"kind"`
	AccountID string               `json:"account_id"`
	// Type and Severity are set for violation events.
	Type     ViolationType `json:"type,omitempty"`
	Severity Severity      `json:"severity,omitempty"`
	// Reason is set for suspension events.
	Reason SuspensionReason `json:"reason,omitempty"`
	// AppealID and Decision are set for appeal events.
	AppealID string       `json:"appeal_id,omitempty"`
	Decision AppealStatus `json:"decision,omitempty"`
	// Score is the reputation after the event, when relevant.
	Score     float64   `json:"score,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
