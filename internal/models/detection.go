package models

// Severity is the aggregate seriousness of a detection result.
type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// severityRank orders severities for max-aggregation.
var severityRank = map[Severity]int{
	SeverityNone:   0,
	SeverityLow:    1,
	SeverityMedium: 2,
	SeverityHigh:   3,
}

// AtLeast reports whether s is as severe as other.
func (s Severity) AtLeast(other Severity) bool {
	return severityRank[s] >= severityRank[other]
}

// Max returns the more severe of s and other.
func (s Severity) Max(other Severity) Severity {
	if severityRank[other] > severityRank[s] {
		return other
	}
	return s
}

// MatchCategory identifies which detection rule fired.
type MatchCategory string

const (
	CategoryPhoneNumber    MatchCategory = "phone_number"
	CategoryEmailAddress   MatchCategory = "email_address"
	CategoryRawURL         MatchCategory = "raw_url"
	CategoryMessengerApp   MatchCategory = "messenger_app"
	CategoryContactRequest MatchCategory = "contact_request"
	CategorySocialHandle   MatchCategory = "social_handle"
	// CategoryInternal marks a fail-closed result produced when the analyzer
	// itself failed.
	CategoryInternal MatchCategory = "internal"
)

// PatternMatch is one matched span inside an analyzed message.
type PatternMatch struct {
	Category MatchCategory `json:"category"`
	Severity Severity      `json:"severity"`
	Text     string        `json:"text"`
	Start    int           `json:"start"`
	End      int           `json:"end"`
}

// DetectionResult is the ephemeral outcome of analyzing one message. It is
// never persisted; the caller decides whether to record a violation.
type DetectionResult struct {
	HasViolation bool           `json:"has_violation"`
	Matches      []PatternMatch `json:"matches"`
	Severity     Severity       `json:"severity"`
}

// ShouldBlockMessage reports whether the message must be rejected outright.
// High severity is a hard gate, not a warning.
func (r DetectionResult) ShouldBlockMessage() bool {
	return r.Severity == SeverityHigh
}

// ShouldWarnUser reports whether the sender should see a confirmation step
// before the message goes out. Low severity delivers silently and exists for
// analytics only.
func (r DetectionResult) ShouldWarnUser() bool {
	return r.Severity == SeverityMedium
}

// Categories returns the matched category names, for the violation record's
// audit trail.
func (r DetectionResult) Categories() []string {
	out := make([]string, 0, len(r.Matches))
	seen := make(map[MatchCategory]bool)
	for _, m := range r.Matches {
		if seen[m.Category] {
			continue
		}
		seen[m.Category] = true
		out = append(out, string(m.Category))
	}
	return out
}

// WarningLevel is a read-only bucketing of current risk for display. It is
// derived from the score and the ledger size, never stored, so it cannot
// drift from the ledger.
type WarningLevel string

const (
	WarningNone     WarningLevel = "none"
	WarningLow      WarningLevel = "low"
	WarningMedium   WarningLevel = "medium"
	WarningHigh     WarningLevel = "high"
	WarningCritical WarningLevel = "critical"
)
