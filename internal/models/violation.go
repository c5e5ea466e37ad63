package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ViolationType is a closed set of policy-breaking behaviors. Each type
// carries a fixed reputation decrement; keeping the table on the type keeps
// the mapping exhaustive instead of scattered over free-form strings.
type ViolationType string

const (
	ViolationContactSharing       ViolationType = "contact_sharing"
	ViolationSpam                 ViolationType = "spam"
	ViolationInappropriateContent ViolationType = "inappropriate_content"
	ViolationNoShow               ViolationType = "no_show"
)

// Weight returns the reputation decrement applied once per recorded
// violation of this type. Unknown types weigh nothing.
func (t ViolationType) Weight() float64 {
	switch t {
	case ViolationContactSharing:
		return 0.5
	case ViolationInappropriateContent:
		return 0.4
	case ViolationSpam:
		return 0.3
	case ViolationNoShow:
		return 0.2
	}
	return 0
}

// Valid reports whether t is one of the known violation types.
func (t ViolationType) Valid() bool {
	return t.Weight() > 0
}

// SuspensionReason maps the violation type to the reason recorded when a
// single event of this type forces a suspension.
func (t ViolationType) SuspensionReason() SuspensionReason {
	switch t {
	case ViolationContactSharing:
		return ReasonContactSharing
	case ViolationSpam:
		return ReasonSpam
	case ViolationInappropriateContent:
		return ReasonInappropriate
	default:
		return ReasonOther
	}
}

// ViolationRecord is one append-only entry in an account's violation ledger.
// Records are never edited or deleted after creation; account owners get
// read-only access to their own history and no write path at all.
type ViolationRecord struct {
	ID        string        `gorm:"primaryKey" json:"id"`
	AccountID string        `gorm:"type:text;not null;index;uniqueIndex:idx_violation_dedup,priority:1" json:"account_id"`
	Type      ViolationType `gorm:"type:text;not null;uniqueIndex:idx_violation_dedup,priority:3" json:"type"`
	// Severity is the analyzer severity at detection time, frozen here for
	// audit even if the analyzer rules change later.
	Severity    Severity `gorm:"type:text" json:"severity"`
	Description string   `gorm:"type:text" json:"description"`
	// SourceReference points at the originating message (or booking, for
	// no-shows). It doubles as the deduplication key: a retried append after
	// an ambiguous persistence failure must not double-decrement.
	SourceReference *string `gorm:"type:text;uniqueIndex:idx_violation_dedup,priority:2" json:"source_reference,omitempty"`
	// MatchedCategories lists the analyzer categories that fired, when the
	// violation came out of message analysis.
	MatchedCategories pq.StringArray `gorm:"type:text[]" json:"matched_categories,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

// BeforeCreate generates the record ID if the caller did not set one.
func (v *ViolationRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return
}
