package format

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// UnknownOrganization is shown when a result has no title.
const UnknownOrganization = "Unknown Organization"

var (
	phonePattern    = regexp.MustCompile(`(?:\+?1[-.]?)?(?:\d{3}-\d{3}-\d{4}|\d{3}\.\d{3}\.\d{4}|\d{10})`)
	coveragePattern = regexp.MustCompile(`Coverage Area: ([^\r\n]+)`)
	spacePattern    = regexp.MustCompile(`\s+`)
)

var titleSeparators = []string{" | ", " - "}

// OrganizationName takes the part of a result title before the first " | " or " - ".
func OrganizationName(title *string) string {
	if title == nil {
		return UnknownOrganization
	}
	t := strings.TrimSpace(*title)
	if t == "" {
		return UnknownOrganization
	}

	cut := -1
	for _, sep := range titleSeparators {
		if i := strings.Index(t, sep); i >= 0 && (cut < 0 || i < cut) {
			cut = i
		}
	}
	if cut < 0 {
		return t
	}
	if name := strings.TrimSpace(t[:cut]); name != "" {
		return name
	}
	return t
}

// Phone returns the first phone number in text, verbatim, or "".
// Recognized layouts: NNN-NNN-NNNN, NNN.NNN.NNNN, NNNNNNNNNN, each with an
// optional "1", "1-", "1." or "+1" country prefix kept in the result.
// A match must not be glued to further digits ("123-456-78901" is not a phone),
// but letters may follow directly ("4082792962x12").
func Phone(text string) string {
	for _, loc := range phonePattern.FindAllStringIndex(text, -1) {
		if digitRunBefore(text, loc[0]) || digitRunAfter(text, loc[1]) {
			continue
		}
		return text[loc[0]:loc[1]]
	}
	return ""
}

// digitRunBefore reports whether the match at start continues a longer number:
// a digit right before it, or a "-"/"." separator preceded by a digit.
func digitRunBefore(text string, start int) bool {
	if start == 0 {
		return false
	}
	c := text[start-1]
	if isDigit(c) {
		return true
	}
	return (c == '-' || c == '.') && start >= 2 && isDigit(text[start-2])
}

func digitRunAfter(text string, end int) bool {
	if end >= len(text) {
		return false
	}
	c := text[end]
	if isDigit(c) {
		return true
	}
	return (c == '-' || c == '.') && end+1 < len(text) && isDigit(text[end+1])
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// Coverage returns the text after a literal "Coverage Area: " label, up to end of line, or "".
func Coverage(text string) string {
	m := coveragePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Description returns the first meaningful line of content, whitespace-collapsed
// and cut to maxRunes. The coverage line is skipped.
func Description(content string, maxRunes int) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(spacePattern.ReplaceAllString(line, " "))
		if line == "" || strings.HasPrefix(line, "Coverage Area:") {
			continue
		}
		return truncate(line, maxRunes)
	}
	return ""
}

func truncate(s string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:maxRunes])) + "..."
}
