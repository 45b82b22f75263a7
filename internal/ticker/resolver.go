// Package ticker resolves user-supplied ticker strings into the symbol
// variants worth trying against upstream market data providers.
//
// Tickers arrive in many shapes: plain US symbols ("AAPL"), exchange-suffixed
// European listings ("ENEL.MI"), and broker exports that prefix the symbol
// with a numeric quantity ("1INTC", "2ENEL.MI"). Resolution produces an
// ordered candidate list so callers can probe each variant until one returns
// data.
package ticker

import (
	"regexp"
	"strings"
)

var (
	digitPrefixedRe = regexp.MustCompile(`^\d+[A-Z]{1,6}(\.[A-Z]{1,3})?$`)
	bareDigitRe     = regexp.MustCompile(`^\d+[A-Z]{1,6}$`)
	leadingDigitsRe = regexp.MustCompile(`^\d+`)
)

// clean uppercases the input and strips whitespace.
func clean(raw string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(raw)), " ", "")
}

// Normalize strips a leading numeric quantity from digit-prefixed symbols.
// "2ENEL.MI" becomes "ENEL.MI"; inputs that do not match the quantity-prefix
// shape pass through unchanged.
func Normalize(raw string) string {
	if raw == "" {
		return raw
	}
	t := clean(raw)
	if digitPrefixedRe.MatchString(t) {
		t = leadingDigitsRe.ReplaceAllString(t, "")
	}
	return t
}

// Candidates returns the ordered symbol variants to try for price data.
// A digit-prefixed symbol without an exchange suffix tries the Milan listing
// first, since quantity-prefixed exports most often come from Borsa Italiana.
func Candidates(raw string) []string {
	rawUp := clean(raw)
	norm := Normalize(rawUp)

	var candidates []string
	if rawUp != "" && !strings.Contains(rawUp, ".") && bareDigitRe.MatchString(rawUp) {
		candidates = append(candidates, rawUp+".MI")
	}
	for _, t := range []string{rawUp, norm} {
		if t != "" && !contains(candidates, t) {
			candidates = append(candidates, t)
		}
	}
	return candidates
}

// FundamentalsCandidates returns the ordered symbol variants to try for
// fundamentals lookups. Fundamentals providers often key company data on the
// primary (usually US) listing, so suffix-stripped bases are included after
// the exact variants.
func FundamentalsCandidates(raw string) []string {
	rawUp := clean(raw)
	norm := Normalize(rawUp)

	var candidates []string
	add := func(v string) {
		if v != "" && !contains(candidates, v) {
			candidates = append(candidates, v)
		}
	}

	add(rawUp)
	add(norm)

	// Exchange-suffix stripped variant (INTC.MI -> INTC)
	if norm != "" && strings.Contains(norm, ".") {
		add(strings.SplitN(norm, ".", 2)[0])
	}

	// Digit-prefixed inputs also try the base without digits or suffix
	noDigits := rawUp
	if rawUp != "" {
		noDigits = leadingDigitsRe.ReplaceAllString(rawUp, "")
	}
	add(noDigits)
	if noDigits != "" && strings.Contains(noDigits, ".") {
		add(strings.SplitN(noDigits, ".", 2)[0])
	}

	return candidates
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
