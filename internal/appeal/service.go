// Package appeal implements the bounded appeal/reinstatement workflow: one
// appeal per suspension lifecycle, submitted by the owner, resolved only by
// an admin actor.
package appeal

import (
	"fmt"
	"log"
	"strings"
	"time"

	"weddinggo/backend/internal/config"
	"weddinggo/backend/internal/enforcement"
	"weddinggo/backend/internal/models"
	"weddinggo/backend/internal/storage"
)

// Service handles appeal submission and resolution.
type Service struct {
	Storage     storage.Storage
	Enforcement *enforcement.Service
}

// NewService creates a new appeal service.
func NewService(s storage.Storage, e *enforcement.Service) *Service {
	return &Service{Storage: s, Enforcement: e}
}

// Submit files an appeal for a suspended account. Eligibility: the account
// is suspended, its appeal right is intact, and no pending appeal exists.
func (s *Service) Submit(accountID, message string) (*models.Appeal, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: appeal message is empty", enforcement.ErrValidation)
	}
	if len(message) > config.AppealMessageMaxLen {
		return nil, fmt.Errorf("%w: appeal message exceeds %d characters", enforcement.ErrValidation, config.AppealMessageMaxLen)
	}

	account, err := s.Storage.GetAccountByID(accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading account: %v", enforcement.ErrPersistence, err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: account %s not found", enforcement.ErrValidation, accountID)
	}
	if account.Status != models.StatusSuspended {
		return nil, fmt.Errorf("%w: account %s is not suspended", enforcement.ErrNotEligible, accountID)
	}
	if !account.CanAppeal {
		return nil, fmt.Errorf("%w: appeal right for account %s is exhausted", enforcement.ErrNotEligible, accountID)
	}

	pending, err := s.Storage.GetPendingAppealForAccount(accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: checking pending appeals: %v", enforcement.ErrPersistence, err)
	}
	if pending != nil {
		return nil, fmt.Errorf("%w: account %s already has a pending appeal", enforcement.ErrConflict, accountID)
	}

	appeal := &models.Appeal{
		AccountID: accountID,
		Message:   message,
		Status:    models.AppealPending,
	}
	if suspension, err := s.Storage.GetActiveSuspension(accountID); err == nil && suspension != nil {
		appeal.SuspensionID = suspension.ID
	}

	if err := s.Storage.SaveAppeal(appeal); err != nil {
		return nil, fmt.Errorf("%w: saving appeal: %v", enforcement.ErrPersistence, err)
	}

	if err := s.Storage.PublishEvent(models.EnforcementEvent{
		Kind:      models.EventAppealSubmitted,
		AccountID: accountID,
		AppealID:  appeal.ID,
		Timestamp: time.Now(),
	}); err != nil {
		log.Printf("ERROR: Failed to publish appeal event: %v", err)
	}
	return appeal, nil
}

// Resolve decides a pending appeal. Admin-only. Approval triggers
// reinstatement; rejection keeps the suspension and exhausts the appeal
// right so the loop is bounded to one appeal per suspension lifecycle.
// Resolution holds no account lock across the human wait: the single status
// update below is the only state it touches.
func (s *Service) Resolve(appealID string, decision models.AppealStatus, adminID, notes string) (*models.Appeal, error) {
	if adminID == "" {
		return nil, fmt.Errorf("%w: appeal resolution requires an admin actor", enforcement.ErrUnauthorized)
	}
	if decision != models.AppealApproved && decision != models.AppealRejected {
		return nil, fmt.Errorf("%w: decision must be approved or rejected", enforcement.ErrValidation)
	}

	appeal, err := s.Storage.GetAppealByID(appealID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading appeal: %v", enforcement.ErrPersistence, err)
	}
	if appeal == nil {
		return nil, fmt.Errorf("%w: appeal %s not found", enforcement.ErrValidation, appealID)
	}
	if appeal.Status != models.AppealPending {
		return nil, fmt.Errorf("%w: appeal %s is already %s", enforcement.ErrConflict, appealID, appeal.Status)
	}

	now := time.Now()
	appeal.Status = decision
	appeal.ResolvedAt = &now
	appeal.ResolvedBy = &adminID
	appeal.ResolutionNotes = notes
	if err := s.Storage.UpdateAppeal(appeal); err != nil {
		return nil, fmt.Errorf("%w: updating appeal: %v", enforcement.ErrPersistence, err)
	}

	switch decision {
	case models.AppealApproved:
		if err := s.Enforcement.Reinstate(appeal.AccountID, adminID); err != nil {
			return nil, err
		}
	case models.AppealRejected:
		if err := s.exhaustAppealRight(appeal.AccountID); err != nil {
			return nil, err
		}
	}

	if err := s.Storage.PublishEvent(models.EnforcementEvent{
		Kind:      models.EventAppealResolved,
		AccountID: appeal.AccountID,
		AppealID:  appeal.ID,
		Decision:  decision,
		Timestamp: now,
	}); err != nil {
		log.Printf("ERROR: Failed to publish appeal resolution event: %v", err)
	}
	log.Printf("INFO: Appeal %s %s by admin %s", appealID, decision, adminID)
	return appeal, nil
}

// exhaustAppealRight clears CanAppeal after a rejection, blocking any
// resubmission for this suspension lifecycle.
func (s *Service) exhaustAppealRight(accountID string) error {
	account, err := s.Storage.GetAccountByID(accountID)
	if err != nil {
		return fmt.Errorf("%w: loading account: %v", enforcement.ErrPersistence, err)
	}
	if account == nil {
		return fmt.Errorf("%w: account %s not found", enforcement.ErrValidation, accountID)
	}
	account.CanAppeal = false
	if err := s.Storage.SaveAccount(account); err != nil {
		return fmt.Errorf("%w: saving account: %v", enforcement.ErrPersistence, err)
	}
	return nil
}
