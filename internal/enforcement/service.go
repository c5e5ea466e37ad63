// Package enforcement owns the violation ledger, the reputation model and
// the suspension state machine. The three run as one synchronous sequence
// per recorded violation: append, recompute from the full ledger, evaluate
// thresholds. Violations for the same account serialize behind a per-account
// mutex; different accounts proceed fully in parallel.
package enforcement

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lib/pq"

	"weddinggo/backend/internal/config"
	"weddinggo/backend/internal/models"
	"weddinggo/backend/internal/storage"
)

// Service handles the business logic of the enforcement engine.
type Service struct {
	Storage storage.Storage

	// locks holds one mutex per account seen, keyed by account ID. Two
	// concurrent appends for one account must not both read a stale score
	// and miss a threshold crossing.
	locks sync.Map
}

// NewService creates a new enforcement service.
func NewService(s storage.Storage) *Service {
	return &Service{Storage: s}
}

func (s *Service) accountLock(accountID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(accountID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// RecordViolation appends a violation to the account's ledger, recomputes
// the reputation from the full ledger and drives the suspension state
// machine. The recompute always finishes before thresholds are evaluated.
// A retried append with a source reference already on the ledger is a no-op
// for the score (the recompute reads the ledger, not a running counter).
func (s *Service) RecordViolation(accountID string, vtype models.ViolationType, severity models.Severity, description string, sourceRef *string, categories []string) (*models.Account, error) {
	if !vtype.Valid() {
		return nil, fmt.Errorf("%w: unknown violation type %q", ErrValidation, vtype)
	}

	mu := s.accountLock(accountID)
	mu.Lock()
	defer mu.Unlock()

	account, err := s.loadAccount(accountID)
	if err != nil {
		return nil, err
	}

	record := &models.ViolationRecord{
		AccountID:         accountID,
		Type:              vtype,
		Severity:          severity,
		Description:       description,
		SourceReference:   sourceRef,
		MatchedCategories: pq.StringArray(categories),
	}

	created, err := s.appendWithRetry(record)
	if err != nil {
		return nil, err
	}
	if !created {
		log.Printf("INFO: Duplicate violation for account %s (source %v), ledger unchanged", accountID, sourceRef)
	}

	score, err := s.recomputeScore(accountID)
	if err != nil {
		return nil, err
	}
	account.ReputationScore = score

	if err := s.evaluate(account, vtype, severity); err != nil {
		return nil, err
	}

	if created {
		s.publish(models.EnforcementEvent{
			Kind:      models.EventViolationRecorded,
			AccountID: accountID,
			Type:      vtype,
			Severity:  severity,
			Score:     score,
			Timestamp: time.Now(),
		})
	}
	return account, nil
}

// CurrentReputation recomputes the bounded score from the ledger contents.
// It is a pure function of the ledger: repeated reads in any order return
// the same value.
func (s *Service) CurrentReputation(accountID string) (float64, error) {
	return s.recomputeScore(accountID)
}

// WarningLevel derives the display-only risk bucket from the current score
// and the ledger size. It is never persisted, so it cannot drift from the
// ledger.
func (s *Service) WarningLevel(accountID string) (models.WarningLevel, error) {
	violations, err := s.Storage.GetViolationsForAccount(accountID)
	if err != nil {
		return "", fmt.Errorf("%w: loading ledger: %v", ErrPersistence, err)
	}
	return warningLevelFor(scoreFromLedger(violations), len(violations)), nil
}

// SuspendManually applies an admin-initiated suspension regardless of the
// current reputation. CanAppeal is at the admin's discretion.
func (s *Service) SuspendManually(accountID string, reason models.SuspensionReason, details string, canAppeal bool, adminID string) error {
	if adminID == "" {
		return fmt.Errorf("%w: manual suspension requires an admin actor", ErrUnauthorized)
	}

	mu := s.accountLock(accountID)
	mu.Lock()
	defer mu.Unlock()

	account, err := s.loadAccount(accountID)
	if err != nil {
		return err
	}
	if account.Status == models.StatusSuspended {
		return fmt.Errorf("%w: account %s is already suspended", ErrConflict, accountID)
	}

	return s.suspend(account, reason, details, adminID, canAppeal)
}

// Reinstate lifts a suspension. Admin-only. The active suspension record is
// superseded, never deleted, and the reputation score is NOT reset: the
// account stays at its decayed score, so a single further violation can
// re-suspend it immediately.
func (s *Service) Reinstate(accountID, adminID string) error {
	if adminID == "" {
		return fmt.Errorf("%w: reinstatement requires an admin actor", ErrUnauthorized)
	}

	mu := s.accountLock(accountID)
	mu.Lock()
	defer mu.Unlock()

	account, err := s.loadAccount(accountID)
	if err != nil {
		return err
	}
	if account.Status != models.StatusSuspended {
		return fmt.Errorf("%w: account %s is not suspended", ErrNotEligible, accountID)
	}

	suspension, err := s.Storage.GetActiveSuspension(accountID)
	if err != nil {
		return fmt.Errorf("%w: loading suspension: %v", ErrPersistence, err)
	}
	if suspension != nil {
		if err := s.Storage.SupersedeSuspension(suspension.ID); err != nil {
			return fmt.Errorf("%w: superseding suspension: %v", ErrPersistence, err)
		}
	}

	account.Status = models.StatusActive
	if err := s.Storage.SaveAccount(account); err != nil {
		return fmt.Errorf("%w: saving account: %v", ErrPersistence, err)
	}

	if err := s.Storage.SetSuspendedFlag(accountID, false); err != nil {
		log.Printf("ERROR: Failed to clear suspended flag for %s: %v", accountID, err)
	}
	s.publish(models.EnforcementEvent{
		Kind:      models.EventAccountReinstated,
		AccountID: accountID,
		Score:     account.ReputationScore,
		Timestamp: time.Now(),
	})
	log.Printf("INFO: Account %s reinstated by admin %s (score stays at %.1f)", accountID, adminID, account.ReputationScore)
	return nil
}

// loadAccount fetches the account and flags out-of-range stored scores as a
// data integrity failure instead of clamping them silently.
func (s *Service) loadAccount(accountID string) (*models.Account, error) {
	account, err := s.Storage.GetAccountByID(accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading account: %v", ErrPersistence, err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: account %s not found", ErrValidation, accountID)
	}
	if !account.ScoreInRange() {
		log.Printf("ERROR: Account %s has out-of-range score %.2f", accountID, account.ReputationScore)
		return nil, fmt.Errorf("%w: account %s score %.2f outside [%.1f, %.1f]",
			ErrIntegrity, accountID, account.ReputationScore, config.MinReputation, config.MaxReputation)
	}
	return account, nil
}

// appendWithRetry wraps the ledger append in a bounded retry. The dedup key
// on the record makes a retry after an ambiguous failure safe: it can never
// double-decrement.
func (s *Service) appendWithRetry(record *models.ViolationRecord) (bool, error) {
	delay := config.LedgerAppendRetryDelay
	var lastErr error
	for attempt := 1; attempt <= config.LedgerAppendRetries; attempt++ {
		created, err := s.Storage.AppendViolation(record)
		if err == nil {
			return created, nil
		}
		lastErr = err
		log.Printf("ERROR: Ledger append attempt %d/%d failed for account %s: %v",
			attempt, config.LedgerAppendRetries, record.AccountID, err)
		if attempt < config.LedgerAppendRetries {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return false, fmt.Errorf("%w: appending violation: %v", ErrPersistence, lastErr)
}

func (s *Service) recomputeScore(accountID string) (float64, error) {
	violations, err := s.Storage.GetViolationsForAccount(accountID)
	if err != nil {
		return 0, fmt.Errorf("%w: loading ledger: %v", ErrPersistence, err)
	}
	return scoreFromLedger(violations), nil
}

// scoreFromLedger is the reputation model: clamp(5.0 - sum of weights).
func scoreFromLedger(violations []models.ViolationRecord) float64 {
	score := config.InitialReputation
	for _, v := range violations {
		score -= v.Type.Weight()
	}
	if score < config.MinReputation {
		score = config.MinReputation
	}
	if score > config.MaxReputation {
		score = config.MaxReputation
	}
	return score
}

func warningLevelFor(score float64, violationCount int) models.WarningLevel {
	switch {
	case score < config.SuspensionThreshold:
		return models.WarningCritical
	case score < config.WarningLevelHighScore || violationCount >= config.WarningLevelHighCount:
		return models.WarningHigh
	case score < config.WarningLevelMediumScore || violationCount >= config.WarningLevelMediumCount:
		return models.WarningMedium
	case score < config.WarningLevelLowScore || violationCount >= config.WarningLevelLowCount:
		return models.WarningLow
	default:
		return models.WarningNone
	}
}

// evaluate runs the suspension state machine after a recompute. Crossing the
// suspension threshold is terminal for normal usage until an admin
// reinstates; above it the status just tracks the score band.
func (s *Service) evaluate(account *models.Account, vtype models.ViolationType, severity models.Severity) error {
	if account.ReputationScore < config.SuspensionThreshold {
		if account.Status == models.StatusSuspended {
			if err := s.Storage.SaveAccount(account); err != nil {
				return fmt.Errorf("%w: saving account: %v", ErrPersistence, err)
			}
			return nil
		}
		// A high-severity event forcing the crossing names its own reason;
		// gradual decay is recorded as low reputation.
		reason := models.ReasonLowReputation
		if severity == models.SeverityHigh {
			reason = vtype.SuspensionReason()
		}
		details := fmt.Sprintf("reputation %.1f fell below %.1f", account.ReputationScore, config.SuspensionThreshold)
		return s.suspend(account, reason, details, "", true)
	}

	if account.ReputationScore < config.WarnedThreshold {
		account.Status = models.StatusWarned
	} else {
		account.Status = models.StatusActive
	}
	if err := s.Storage.SaveAccount(account); err != nil {
		return fmt.Errorf("%w: saving account: %v", ErrPersistence, err)
	}
	return nil
}

// suspend creates the audit record and flips the account in one pass. The
// caller holds the account lock.
func (s *Service) suspend(account *models.Account, reason models.SuspensionReason, details, adminID string, canAppeal bool) error {
	record := &models.SuspensionRecord{
		AccountID:   account.ID,
		Reason:      reason,
		Details:     details,
		SuspendedBy: adminID,
		CanAppeal:   canAppeal,
		Active:      true,
	}
	if err := s.Storage.SaveSuspension(record); err != nil {
		return fmt.Errorf("%w: saving suspension: %v", ErrPersistence, err)
	}

	account.Status = models.StatusSuspended
	account.CanAppeal = canAppeal
	if err := s.Storage.SaveAccount(account); err != nil {
		return fmt.Errorf("%w: saving account: %v", ErrPersistence, err)
	}

	if err := s.Storage.SetSuspendedFlag(account.ID, true); err != nil {
		log.Printf("ERROR: Failed to set suspended flag for %s: %v", account.ID, err)
	}
	s.publish(models.EnforcementEvent{
		Kind:      models.EventAccountSuspended,
		AccountID: account.ID,
		Reason:    reason,
		Score:     account.ReputationScore,
		Timestamp: time.Now(),
	})
	log.Printf("INFO: Account %s suspended (reason: %s, score: %.1f)", account.ID, reason, account.ReputationScore)
	return nil
}

// publish pushes an event to the feed. The feed is advisory; a publish
// failure is logged, not surfaced, because the durable tables already hold
// the truth.
func (s *Service) publish(event models.EnforcementEvent) {
	if err := s.Storage.PublishEvent(event); err != nil {
		log.Printf("ERROR: Failed to publish enforcement event: %v", err)
	}
}
