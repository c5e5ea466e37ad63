package config

import "time"

const (
	// Reputation
	InitialReputation = 5.0
	MaxReputation     = 5.0
	MinReputation     = 0.0

	// Status bands. An account is "warned" below WarnedThreshold and
	// suspended below SuspensionThreshold.
	WarnedThreshold     = 3.5
	SuspensionThreshold = 2.5

	// Warning level bucketing (derived on read, never persisted)
	WarningLevelLowScore    = 4.5
	WarningLevelMediumScore = 3.5
	WarningLevelHighScore   = 3.0
	WarningLevelLowCount    = 1
	WarningLevelMediumCount = 3
	WarningLevelHighCount   = 5

	// Appeal
	AppealMessageMaxLen = 1000

	// Ledger persistence retry
	LedgerAppendRetries    = 3
	LedgerAppendRetryDelay = 100 * time.Millisecond
)
