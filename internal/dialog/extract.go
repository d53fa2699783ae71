package dialog

import (
	"regexp"
	"strings"
)

// Russian-format phone: optional +7/7/8 prefix, then ten digits optionally
// grouped with spaces, hyphens or parentheses.
var phoneRegexp = regexp.MustCompile(`(\+?7|8)?[\s\-]?\(?[0-9]{3}\)?[\s\-]?[0-9]{3}[\s\-]?[0-9]{2}[\s\-]?[0-9]{2}`)

var phoneCleaner = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

// ExtractPhone returns the first phone-shaped digit run in text, with
// spaces, hyphens and parentheses stripped. Empty string when none found.
// The shape match is the only validation; false positives are accepted.
func ExtractPhone(text string) string {
	match := phoneRegexp.FindString(text)
	if match == "" {
		return ""
	}
	return phoneCleaner.Replace(match)
}

// StripPhone removes the first phone-shaped run from text, so that a bare
// phone number is not mistaken for a single-word name.
func StripPhone(text string) string {
	match := phoneRegexp.FindString(text)
	if match == "" {
		return text
	}
	return strings.Replace(text, match, "", 1)
}

// ExtractName takes the first two whitespace-separated tokens as a name,
// or a single token when it is longer than two characters. Purely a
// heuristic, no semantic validation.
func ExtractName(text string) string {
	words := strings.Fields(text)
	switch {
	case len(words) >= 2:
		return words[0] + " " + words[1]
	case len(words) == 1 && len([]rune(words[0])) > 2:
		return words[0]
	default:
		return ""
	}
}
