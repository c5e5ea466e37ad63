package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SuspensionReason records why an account was suspended.
type SuspensionReason string

const (
	ReasonLowReputation  SuspensionReason = "low_reputation"
	ReasonContactSharing SuspensionReason = "contact_sharing"
	ReasonSpam           SuspensionReason = "spam"
	ReasonInappropriate  SuspensionReason = "inappropriate"
	ReasonFraud          SuspensionReason = "fraud"
	ReasonOther          SuspensionReason = "other"
)

// SuspensionRecord is the audit record behind a suspended account. At most
// one record per account is active; reinstatement supersedes it instead of
// deleting it.
type SuspensionRecord struct {
	ID        string           `gorm:"primaryKey" json:"id"`
	AccountID string           `gorm:"type:text;not null;index" json:"account_id"`
	Reason    SuspensionReason `gorm:"type:text;not null" json:"reason"`
	Details   string           `gorm:"type:text" json:"details"`
	// SuspendedBy is the admin who applied a manual suspension, empty when
	// the score path triggered it.
	SuspendedBy string `gorm:"type:text" json:"suspended_by,omitempty"`
	CanAppeal   bool   `json:"can_appeal"`
	// Active is cleared (superseded) on reinstatement.
	Active       bool       `gorm:"index" json:"active"`
	SuspendedAt  time.Time  `json:"suspended_at"`
	SupersededAt *time.Time `json:"superseded_at,omitempty"`
}

func (s *SuspensionRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.SuspendedAt.IsZero() {
		s.SuspendedAt = time.Now()
	}
	return
}
