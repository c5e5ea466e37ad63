package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"weddinggo/backend/internal/config"
)

// AccountStatus is the authoritative standing of an account.
type AccountStatus string

const (
	StatusActive    AccountStatus = "active"
	StatusWarned    AccountStatus = "warned"
	StatusSuspended AccountStatus = "suspended"
)

// Account represents a marketplace account as seen by the enforcement engine.
// The account itself is owned by the registration service; this engine is the
// only writer of ReputationScore, Status and CanAppeal.
type Account struct {
	ID string `gorm:"primaryKey" json:"id"`
	// ReputationScore is bounded to [0.0, 5.0] and derived from the
	// violation ledger. Every account starts at 5.0.
	ReputationScore float64       `json:"reputation_score"`
	Status          AccountStatus `gorm:"type:text;index" json:"status"`
	// CanAppeal gates the appeal workflow while the account is suspended.
	CanAppeal bool      `json:"can_appeal"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate is a GORM hook that fills in the identity and the initial
// enforcement state for a freshly registered account.
func (a *Account) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Status == "" {
		a.Status = StatusActive
		a.ReputationScore = config.InitialReputation
	}
	return
}

// ScoreInRange reports whether the stored score is inside the legal bounds.
// An out-of-range score is a data integrity failure, not something to clamp
// silently.
func (a *Account) ScoreInRange() bool {
	return a.ReputationScore >= config.MinReputation && a.ReputationScore <= config.MaxReputation
}
