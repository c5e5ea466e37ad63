package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppealStatus is the lifecycle state of an appeal.
type AppealStatus string

const (
	AppealPending  AppealStatus = "pending"
	AppealApproved AppealStatus = "approved"
	AppealRejected AppealStatus = "rejected"
)

// Appeal is a one-shot request to reverse a suspension. An account may never
// hold two pending appeals, and only an admin actor moves an appeal out of
// pending.
type Appeal struct {
	ID        string `gorm:"primaryKey" json:"id"`
	AccountID string `gorm:"type:text;not null;index" json:"account_id"`
	// SuspensionID ties the appeal to the suspension lifecycle it contests.
	SuspensionID string       `gorm:"type:text" json:"suspension_id"`
	Message      string       `gorm:"type:text;not null" json:"message"`
	Status       AppealStatus `gorm:"type:text;not null;index" json:"status"`
	SubmittedAt  time.Time    `json:"submitted_at"`
	ResolvedAt   *time.Time   `json:"resolved_at,omitempty"`
	ResolvedBy   *string      `gorm:"type:text" json:"resolved_by,omitempty"`
	// ResolutionNotes is the admin's reason for the decision.
	ResolutionNotes string `gorm:"type:text" json:"resolution_notes,omitempty"`
}

func (a *Appeal) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Status == "" {
		a.Status = AppealPending
	}
	if a.SubmittedAt.IsZero() {
		a.SubmittedAt = time.Now()
	}
	return
}
