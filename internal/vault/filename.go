package vault

import (
	"regexp"
	"strings"
)

const (
	maxStemTitleLen = 36
	wordBoundaryMin = 18
)

// Runs of anything that isn't a letter, digit or dash become a single dash.
// This subsumes the filesystem-reserved set (\ / : * ? " < > |) and
// whitespace, and keeps the result stable under re-sanitizing.
var invalidRun = regexp.MustCompile(`[^\pL\pN-]+`)
var dashRun = regexp.MustCompile(`-+`)

// SanitizeTitle converts an arbitrary title into a path-safe, length-bounded
// identifier. The function is pure and idempotent.
func SanitizeTitle(title string) string {
	s := invalidRun.ReplaceAllString(title, "-")
	s = dashRun.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	runes := []rune(s)
	if len(runes) <= maxStemTitleLen {
		return s
	}
	runes = runes[:maxStemTitleLen]

	// Prefer cutting at a word boundary past the halfway mark instead of
	// hard-truncating mid-word.
	cut := -1
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == '-' {
			cut = i
			break
		}
	}
	if cut > wordBoundaryMin {
		runes = runes[:cut]
	}
	return strings.TrimRight(string(runes), "-")
}

// FileStem builds the deterministic document stem {YYYY-MM-DD}-{title} from a
// resolved title and the bookmark's ISO-8601 creation timestamp.
func FileStem(title, createdAt string) string {
	date, _, _ := strings.Cut(createdAt, "T")
	return date + "-" + SanitizeTitle(title)
}
