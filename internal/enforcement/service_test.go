package enforcement_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"weddinggo/backend/internal/enforcement"
	"weddinggo/backend/internal/models"
)

func strptr(s string) *string { return &s }

// TestReputationDecayToSuspension walks the documented decay sequence: six
// contact sharing violations at -0.5 each take a fresh account through
// 4.5, 4.0, 3.5, 3.0, 2.5, 2.0 and suspend it on the sixth.
func TestReputationDecayToSuspension(t *testing.T) {
	// Arrange
	store := newFakeStorage()
	store.addAccount("acc-1", 5.0)
	svc := enforcement.NewService(store)

	expected := []struct {
		score  float64
		status models.AccountStatus
	}{
		{4.5, models.StatusActive},
		{4.0, models.StatusActive},
		{3.5, models.StatusActive},
		{3.0, models.StatusWarned},
		{2.5, models.StatusWarned},
		{2.0, models.StatusSuspended},
	}

	// Act + Assert
	for i, want := range expected {
		account, err := svc.RecordViolation("acc-1", models.ViolationContactSharing,
			models.SeverityMedium, "off-platform attempt", nil, nil)

		assert.NoError(t, err, "violation %d", i+1)
		assert.InDelta(t, want.score, account.ReputationScore, 0.001, "score after violation %d", i+1)
		assert.Equal(t, want.status, account.Status, "status after violation %d", i+1)
	}

	// The suspension was driven by gradual decay, not a single high-severity
	// event, so the reason is low reputation.
	suspension, err := store.GetActiveSuspension("acc-1")
	assert.NoError(t, err)
	assert.NotNil(t, suspension)
	assert.Equal(t, models.ReasonLowReputation, suspension.Reason)
	assert.True(t, suspension.CanAppeal)

	// Suspension mirrors into the login fast path.
	flagged, _ := store.IsSuspended("acc-1")
	assert.True(t, flagged)
}

// TestHighSeverityEventNamesItsReason verifies that when a high-severity
// violation itself forces the crossing, the suspension reason is the
// violation type rather than low reputation.
func TestHighSeverityEventNamesItsReason(t *testing.T) {
	store := newFakeStorage()
	store.addAccount("acc-2", 5.0)
	svc := enforcement.NewService(store)

	// Five medium violations bring the score to 2.5 (warned).
	for i := 0; i < 5; i++ {
		_, err := svc.RecordViolation("acc-2", models.ViolationContactSharing,
			models.SeverityMedium, "repeated attempts", nil, nil)
		assert.NoError(t, err)
	}

	// The sixth is a blocked phone number share: high severity.
	account, err := svc.RecordViolation("acc-2", models.ViolationContactSharing,
		models.SeverityHigh, "phone number in message", strptr("msg-77"), []string{"phone_number"})
	assert.NoError(t, err)
	assert.Equal(t, models.StatusSuspended, account.Status)

	suspension, _ := store.GetActiveSuspension("acc-2")
	assert.NotNil(t, suspension)
	assert.Equal(t, models.ReasonContactSharing, suspension.Reason)
}

// TestDuplicateSourceReferenceDoesNotDoubleDecrement verifies the retry
// safety property: recording the same originating message twice leaves the
// ledger, and therefore the score, unchanged.
func TestDuplicateSourceReferenceDoesNotDoubleDecrement(t *testing.T) {
	store := newFakeStorage()
	store.addAccount("acc-3", 5.0)
	svc := enforcement.NewService(store)

	// Act - same dedup key twice
	first, err := svc.RecordViolation("acc-3", models.ViolationContactSharing,
		models.SeverityHigh, "phone share", strptr("msg-1"), nil)
	assert.NoError(t, err)
	assert.InDelta(t, 4.5, first.ReputationScore, 0.001)

	second, err := svc.RecordViolation("acc-3", models.ViolationContactSharing,
		models.SeverityHigh, "phone share (retry)", strptr("msg-1"), nil)
	assert.NoError(t, err)

	// Assert - no double application
	assert.InDelta(t, 4.5, second.ReputationScore, 0.001)
	violations, _ := store.GetViolationsForAccount("acc-3")
	assert.Len(t, violations, 1)
}

// TestCurrentReputationIsPure verifies repeated reads return identical
// values: the score is a function of the ledger, not of call order.
func TestCurrentReputationIsPure(t *testing.T) {
	store := newFakeStorage()
	store.addAccount("acc-4", 5.0)
	svc := enforcement.NewService(store)

	_, err := svc.RecordViolation("acc-4", models.ViolationSpam, models.SeverityMedium, "", nil, nil)
	assert.NoError(t, err)
	_, err = svc.RecordViolation("acc-4", models.ViolationNoShow, models.SeverityNone, "", nil, nil)
	assert.NoError(t, err)

	for i := 0; i < 5; i++ {
		score, err := svc.CurrentReputation("acc-4")
		assert.NoError(t, err)
		assert.InDelta(t, 4.5, score, 0.001) // 5.0 - 0.3 - 0.2
	}
}

// TestReputationMonotonicallyNonIncreasing verifies no sequence of recorded
// violations ever raises the score.
func TestReputationMonotonicallyNonIncreasing(t *testing.T) {
	store := newFakeStorage()
	store.addAccount("acc-5", 5.0)
	svc := enforcement.NewService(store)

	sequence := []models.ViolationType{
		models.ViolationNoShow,
		models.ViolationSpam,
		models.ViolationContactSharing,
		models.ViolationInappropriateContent,
		models.ViolationNoShow,
		models.ViolationContactSharing,
	}

	last := 5.0
	for _, vtype := range sequence {
		account, err := svc.RecordViolation("acc-5", vtype, models.SeverityMedium, "", nil, nil)
		assert.NoError(t, err)
		assert.LessOrEqual(t, account.ReputationScore, last)
		last = account.ReputationScore
	}
}

// TestScoreClampedAtZero verifies the lower bound holds no matter how long
// the ledger grows.
func TestScoreClampedAtZero(t *testing.T) {
	store := newFakeStorage()
	store.addAccount("acc-6", 5.0)
	svc := enforcement.NewService(store)

	var account *models.Account
	var err error
	for i := 0; i < 15; i++ {
		account, err = svc.RecordViolation("acc-6", models.ViolationContactSharing,
			models.SeverityMedium, "", nil, nil)
		assert.NoError(t, err)
	}
	assert.InDelta(t, 0.0, account.ReputationScore, 0.001)
	assert.Equal(t, models.StatusSuspended, account.Status)
}

// TestSuspensionIsTerminalUntilReinstatement verifies further activity never
// lifts a suspension and no second suspension record is created.
func TestSuspensionIsTerminalUntilReinstatement(t *testing.T) {
	store := newFakeStorage()
	store.addAccount("acc-7", 5.0)
	svc := enforcement.NewService(store)

	for i := 0; i < 6; i++ {
		_, err := svc.RecordViolation("acc-7", models.ViolationContactSharing,
			models.SeverityMedium, "", nil, nil)
		assert.NoError(t, err)
	}

	// Another violation while suspended: stays suspended, same record.
	account, err := svc.RecordViolation("acc-7", models.ViolationSpam, models.SeverityMedium, "", nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusSuspended, account.Status)

	active, _ := store.ListActiveSuspensions()
	assert.Len(t, active, 1)
}

// TestReinstatementDoesNotResetScore verifies the "no fresh start" policy:
// reinstatement clears the status only, and the decayed score means the next
// violation re-suspends immediately.
func TestReinstatementDoesNotResetScore(t *testing.T) {
	store := newFakeStorage()
	store.addAccount("acc-8", 5.0)
	svc := enforcement.NewService(store)

	for i := 0; i < 6; i++ {
		_, err := svc.RecordViolation("acc-8", models.ViolationContactSharing,
			models.SeverityMedium, "", nil, nil)
		assert.NoError(t, err)
	}

	// Act - admin reinstates
	err := svc.Reinstate("acc-8", "admin-1")
	assert.NoError(t, err)

	account, _ := store.GetAccountByID("acc-8")
	assert.Equal(t, models.StatusActive, account.Status)
	assert.InDelta(t, 2.0, account.ReputationScore, 0.001, "score must not reset")

	flagged, _ := store.IsSuspended("acc-8")
	assert.False(t, flagged, "login fast path cleared")

	suspension, _ := store.GetActiveSuspension("acc-8")
	assert.Nil(t, suspension, "record superseded, not active")

	// One further violation re-suspends immediately.
	account, err = svc.RecordViolation("acc-8", models.ViolationContactSharing,
		models.SeverityHigh, "", strptr("msg-9"), nil)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusSuspended, account.Status)
}

// TestReinstateRequiresAdminAndSuspension covers the gating around
// reinstatement.
func TestReinstateRequiresAdminAndSuspension(t *testing.T) {
	store := newFakeStorage()
	store.addAccount("acc-9", 5.0)
	svc := enforcement.NewService(store)

	err := svc.Reinstate("acc-9", "")
	assert.ErrorIs(t, err, enforcement.ErrUnauthorized)

	err = svc.Reinstate("acc-9", "admin-1")
	assert.ErrorIs(t, err, enforcement.ErrNotEligible, "active account cannot be reinstated")
}

// TestManualSuspension verifies the admin path bypasses the score entirely.
func TestManualSuspension(t *testing.T) {
	store := newFakeStorage()
	store.addAccount("acc-10", 5.0)
	svc := enforcement.NewService(store)

	// Act
	err := svc.SuspendManually("acc-10", models.ReasonFraud, "chargeback investigation", false, "admin-2")
	assert.NoError(t, err)

	account, _ := store.GetAccountByID("acc-10")
	assert.Equal(t, models.StatusSuspended, account.Status)
	assert.False(t, account.CanAppeal, "canAppeal follows admin discretion")
	assert.InDelta(t, 5.0, account.ReputationScore, 0.001, "score untouched by manual path")

	suspension, _ := store.GetActiveSuspension("acc-10")
	assert.Equal(t, models.ReasonFraud, suspension.Reason)
	assert.Equal(t, "admin-2", suspension.SuspendedBy)

	// A second manual suspension is a conflict.
	err = svc.SuspendManually("acc-10", models.ReasonOther, "", true, "admin-2")
	assert.ErrorIs(t, err, enforcement.ErrConflict)

	// And it needs an admin actor.
	err = svc.SuspendManually("acc-11", models.ReasonOther, "", true, "")
	assert.ErrorIs(t, err, enforcement.ErrUnauthorized)
}

// TestWarningLevels verifies the derived, display-only bucketing.
func TestWarningLevels(t *testing.T) {
	store := newFakeStorage()
	store.addAccount("acc-12", 5.0)
	svc := enforcement.NewService(store)

	level, err := svc.WarningLevel("acc-12")
	assert.NoError(t, err)
	assert.Equal(t, models.WarningNone, level)

	// One no-show: 4.8, one violation on record.
	_, err = svc.RecordViolation("acc-12", models.ViolationNoShow, models.SeverityNone, "", nil, nil)
	assert.NoError(t, err)
	level, _ = svc.WarningLevel("acc-12")
	assert.Equal(t, models.WarningLow, level)

	// Two contact sharing on top: 3.8, three violations.
	for i := 0; i < 2; i++ {
		_, err = svc.RecordViolation("acc-12", models.ViolationContactSharing, models.SeverityMedium, "", nil, nil)
		assert.NoError(t, err)
	}
	level, _ = svc.WarningLevel("acc-12")
	assert.Equal(t, models.WarningMedium, level)

	// Down to 2.8: high.
	for i := 0; i < 2; i++ {
		_, err = svc.RecordViolation("acc-12", models.ViolationContactSharing, models.SeverityMedium, "", nil, nil)
		assert.NoError(t, err)
	}
	level, _ = svc.WarningLevel("acc-12")
	assert.Equal(t, models.WarningHigh, level)

	// Below the suspension threshold: critical.
	_, err = svc.RecordViolation("acc-12", models.ViolationContactSharing, models.SeverityMedium, "", nil, nil)
	assert.NoError(t, err)
	level, _ = svc.WarningLevel("acc-12")
	assert.Equal(t, models.WarningCritical, level)
}

// TestOutOfRangeScoreIsFlagged verifies the integrity guard: a stored score
// outside [0, 5] is an error, not something to clamp silently.
func TestOutOfRangeScoreIsFlagged(t *testing.T) {
	store := newFakeStorage()
	store.addAccount("acc-13", 7.5)
	svc := enforcement.NewService(store)

	_, err := svc.RecordViolation("acc-13", models.ViolationSpam, models.SeverityMedium, "", nil, nil)
	assert.ErrorIs(t, err, enforcement.ErrIntegrity)
}

// TestRecordViolationValidation covers unknown types and missing accounts.
func TestRecordViolationValidation(t *testing.T) {
	store := newFakeStorage()
	svc := enforcement.NewService(store)

	_, err := svc.RecordViolation("acc-x", "jaywalking", models.SeverityLow, "", nil, nil)
	assert.ErrorIs(t, err, enforcement.ErrValidation)

	_, err = svc.RecordViolation("missing", models.ViolationSpam, models.SeverityLow, "", nil, nil)
	assert.ErrorIs(t, err, enforcement.ErrValidation)
}

// TestAppendRetrySucceedsAfterTransientFailure verifies the bounded retry
// around the ledger append.
func TestAppendRetrySucceedsAfterTransientFailure(t *testing.T) {
	store := newFakeStorage()
	store.addAccount("acc-14", 5.0)
	store.appendFailures = 2 // first two attempts fail
	svc := enforcement.NewService(store)

	account, err := svc.RecordViolation("acc-14", models.ViolationSpam, models.SeverityMedium, "", nil, nil)

	assert.NoError(t, err)
	assert.InDelta(t, 4.7, account.ReputationScore, 0.001)
	assert.Equal(t, 3, store.appendAttempts)
}

// TestAppendRetryExhaustionSurfaces verifies a persistent store failure is
// surfaced as ErrPersistence, never swallowed.
func TestAppendRetryExhaustionSurfaces(t *testing.T) {
	store := newFakeStorage()
	store.addAccount("acc-15", 5.0)
	store.appendFailures = 10
	svc := enforcement.NewService(store)

	_, err := svc.RecordViolation("acc-15", models.ViolationSpam, models.SeverityMedium, "", nil, nil)

	assert.ErrorIs(t, err, enforcement.ErrPersistence)
	violations, _ := store.GetViolationsForAccount("acc-15")
	assert.Empty(t, violations, "no partial ledger write")
}

// TestSaveFailureOnSuspendedAccountSurfacesAsPersistence verifies a store
// failure while updating an already-suspended account carries the
// persistence classification like every other store failure.
func TestSaveFailureOnSuspendedAccountSurfacesAsPersistence(t *testing.T) {
	store := newFakeStorage()
	store.addAccount("acc-17", 5.0)
	svc := enforcement.NewService(store)

	// Decay to suspension, then fail the store on a further violation while
	// suspended.
	for i := 0; i < 6; i++ {
		_, err := svc.RecordViolation("acc-17", models.ViolationContactSharing,
			models.SeverityMedium, "", nil, nil)
		assert.NoError(t, err)
	}
	store.saveAccountErr = errors.New("store unavailable")

	_, err := svc.RecordViolation("acc-17", models.ViolationSpam, models.SeverityMedium, "", nil, nil)

	assert.ErrorIs(t, err, enforcement.ErrPersistence)
}

// TestConcurrentViolationsSameAccount verifies per-account serialization:
// concurrent appends must not read stale scores and miss the threshold
// crossing.
func TestConcurrentViolationsSameAccount(t *testing.T) {
	store := newFakeStorage()
	store.addAccount("acc-16", 5.0)
	svc := enforcement.NewService(store)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordViolation("acc-16", models.ViolationContactSharing,
				models.SeverityMedium, "", nil, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// 8 * 0.5 = 4.0 decrement, exact regardless of interleaving.
	score, err := svc.CurrentReputation("acc-16")
	assert.NoError(t, err)
	assert.InDelta(t, 1.0, score, 0.001)

	account, _ := store.GetAccountByID("acc-16")
	assert.Equal(t, models.StatusSuspended, account.Status)
	active, _ := store.ListActiveSuspensions()
	assert.Len(t, active, 1, "exactly one suspension despite concurrency")
}
