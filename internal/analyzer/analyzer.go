// Package analyzer classifies free-text messages for attempts to move
// communication off the platform. Analyze is pure and deterministic: no
// state, no I/O, safe for unlimited parallel invocation and for redundant
// re-analysis during audits. The matching strategy (regular expressions
// today) is an implementation detail hidden behind Analyze, so it can be
// swapped without touching the ledger or the suspension logic.
package analyzer

import (
	"log"
	"regexp"
	"strings"

	"weddinggo/backend/internal/models"
)

const minPhoneDigits = 7

var (
	// phoneCandidateRe finds digit runs with optional separators and an
	// optional country-code prefix. Candidates still have to pass the digit
	// count and the token-adjacency checks below.
	phoneCandidateRe = regexp.MustCompile(`\+?\d[\d ().\-]{4,}\d`)

	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	urlRe = regexp.MustCompile(`(?i)(?:https?://|www\.)[^\s]+`)

	// Common chat apps by name or abbreviation. "zap" and "wpp" are the
	// usual Brazilian/Portuguese shorthands for WhatsApp.
	messengerRe = regexp.MustCompile(`(?i)\b(?:whats ?app|wpp|zap ?zap|zap|telegram|signal|viber|wechat|skype|discord|imessage|messenger)\b`)

	// Off-platform contact request phrasings, English and Portuguese.
	contactPhraseRe = regexp.MustCompile(`(?i)\b(?:` + strings.Join(contactPhrases, "|") + `)\b`)

	handleRe         = regexp.MustCompile(`@[A-Za-z0-9._]{2,}`)
	socialPlatformRe = regexp.MustCompile(`(?i)\b(?:instagram|insta|facebook|fb|tiktok|twitter|snapchat|snap|x\.com)\b`)
)

var contactPhrases = []string{
	"call me",
	"text me",
	"give me your (?:number|phone)",
	"send me your number",
	"what'?s your number",
	"liga[- ]me",
	"me liga",
	"liga para mim",
	"chama[- ]?(?:me|no)",
	"me chama",
	"manda mensagem",
	"meu n[úu]mero",
	"seu n[úu]mero",
	"passa (?:o|teu|seu) n[úu]mero",
	"fala comigo",
}

// Analyze inspects a message and returns the union of all matched detection
// categories, one match per category, with the aggregate severity set to the
// maximum across categories. Any internal failure fails closed: the message
// is reported as high severity and blocked, never delivered unchecked.
func Analyze(text string) (result models.DetectionResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: analyzer panic, failing closed: %v", r)
			result = models.DetectionResult{
				HasViolation: true,
				Severity:     models.SeverityHigh,
				Matches: []models.PatternMatch{{
					Category: models.CategoryInternal,
					Severity: models.SeverityHigh,
				}},
			}
		}
	}()

	result.Severity = models.SeverityNone

	// Evaluation order is fixed; every category is evaluated independently
	// and the first match per category wins.
	if m, ok := matchPhone(text); ok {
		addMatch(&result, m)
	}
	if m, ok := matchFirst(text, emailRe, models.CategoryEmailAddress, models.SeverityHigh); ok {
		addMatch(&result, m)
	}
	if m, ok := matchFirst(text, urlRe, models.CategoryRawURL, models.SeverityLow); ok {
		addMatch(&result, m)
	}
	if m, ok := matchFirst(text, messengerRe, models.CategoryMessengerApp, models.SeverityMedium); ok {
		addMatch(&result, m)
	}
	if m, ok := matchFirst(text, contactPhraseRe, models.CategoryContactRequest, models.SeverityMedium); ok {
		addMatch(&result, m)
	}
	if m, ok := matchSocialHandle(text); ok {
		addMatch(&result, m)
	}

	return result
}

func addMatch(r *models.DetectionResult, m models.PatternMatch) {
	r.HasViolation = true
	r.Matches = append(r.Matches, m)
	r.Severity = r.Severity.Max(m.Severity)
}

func matchFirst(text string, re *regexp.Regexp, category models.MatchCategory, severity models.Severity) (models.PatternMatch, bool) {
	loc := re.FindStringIndex(text)
	if loc == nil {
		return models.PatternMatch{}, false
	}
	return models.PatternMatch{
		Category: category,
		Severity: severity,
		Text:     text[loc[0]:loc[1]],
		Start:    loc[0],
		End:      loc[1],
	}, true
}

// matchPhone accepts the first candidate digit run that carries at least
// minPhoneDigits digits and is not glued to other alphanumeric characters.
// The adjacency rule keeps order IDs and similar tokens out; everything else
// resolves permissively toward matching, because a missed phone number
// undermines the whole off-platform gate.
func matchPhone(text string) (models.PatternMatch, bool) {
	for _, loc := range phoneCandidateRe.FindAllStringIndex(text, -1) {
		candidate := text[loc[0]:loc[1]]
		if digitCount(candidate) < minPhoneDigits {
			continue
		}
		if adjacentAlnum(text, loc[0], loc[1]) {
			continue
		}
		return models.PatternMatch{
			Category: models.CategoryPhoneNumber,
			Severity: models.SeverityHigh,
			Text:     candidate,
			Start:    loc[0],
			End:      loc[1],
		}, true
	}
	return models.PatternMatch{}, false
}

// matchSocialHandle fires only when an @handle appears together with a named
// social platform; a bare handle on its own is too ambiguous to report.
func matchSocialHandle(text string) (models.PatternMatch, bool) {
	if !socialPlatformRe.MatchString(text) {
		return models.PatternMatch{}, false
	}
	for _, loc := range handleRe.FindAllStringIndex(text, -1) {
		// An @ inside an email address belongs to the email category.
		if emailLoc := emailRe.FindStringIndex(text); emailLoc != nil &&
			loc[0] >= emailLoc[0] && loc[1] <= emailLoc[1] {
			continue
		}
		return models.PatternMatch{
			Category: models.CategorySocialHandle,
			Severity: models.SeverityLow,
			Text:     text[loc[0]:loc[1]],
			Start:    loc[0],
			End:      loc[1],
		}, true
	}
	return models.PatternMatch{}, false
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// adjacentAlnum reports whether the span [start,end) touches an alphanumeric
// character on either side, which marks it as part of a larger token.
func adjacentAlnum(text string, start, end int) bool {
	if start > 0 && isAlnum(text[start-1]) {
		return true
	}
	if end < len(text) && isAlnum(text[end]) {
		return true
	}
	return false
}

func isAlnum(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
