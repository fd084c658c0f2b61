package research

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const truncationMarker = "\n[...truncated]"

var (
	urlPattern        = regexp.MustCompile(`https?://[^\s<>"'})\]]+`)
	blankLinesPattern = regexp.MustCompile(`\n{3,}`)
)

// ExtractURLs returns every http(s) URL in text, in order of appearance.
func ExtractURLs(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

// truncateRunes cuts s to at most max characters and reports whether it did.
func truncateRunes(s string, max int) (string, bool) {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s, false
	}
	runes := []rune(s)
	return string(runes[:max]), true
}

func collapseBlankLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return blankLinesPattern.ReplaceAllString(s, "\n\n")
}

func cleanWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
