package enforcement

import "errors"

// Sentinel errors for the enforcement engine. Callers classify failures with
// errors.Is; the HTTP layer maps each class to a status code and a localized
// message.
var (
	// ErrValidation covers malformed input and missing accounts.
	ErrValidation = errors.New("validation error")
	// ErrNotEligible marks an operation attempted outside its allowed state,
	// such as appealing while not suspended or after the appeal right is
	// exhausted.
	ErrNotEligible = errors.New("not eligible")
	// ErrConflict marks duplicate pending appeals and concurrent suspension
	// races.
	ErrConflict = errors.New("conflict")
	// ErrPersistence marks a backing store failure that survived the bounded
	// retry. It is never swallowed: a dropped violation silently weakens the
	// whole system.
	ErrPersistence = errors.New("persistence unavailable")
	// ErrUnauthorized marks a non-admin actor attempting an admin-only
	// operation.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrIntegrity marks an account observed with an out-of-range stored
	// score. The engine flags it instead of clamping silently.
	ErrIntegrity = errors.New("data integrity error")
)
