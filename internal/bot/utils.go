package bot

import (
	"regexp"
	"slices"
	"strings"
)

// PostbackSplitChar is the delimiter used to separate fields in postback data.
// Example: "orders$pick$101" where "$" is the split character.
const PostbackSplitChar = "$"

// BuildKeywordRegex creates a regex pattern matching keywords at the START of text.
// Keywords are sorted by length (longest first) to prevent partial matches.
// Panics if keywords is empty.
//
// Keywords must be followed by a space or be the entire text, so "заказы"
// does not trigger on "заказынет".
func BuildKeywordRegex(keywords []string) *regexp.Regexp {
	if len(keywords) == 0 {
		panic("BuildKeywordRegex: keywords cannot be empty")
	}

	sorted := make([]string, len(keywords))
	copy(sorted, keywords)

	slices.SortFunc(sorted, func(a, b string) int {
		return len(b) - len(a)
	})

	for i, k := range sorted {
		sorted[i] = regexp.QuoteMeta(k)
	}

	pattern := "(?i)^(" + strings.Join(sorted, "|") + ")(?:\\s|$)"
	return regexp.MustCompile(pattern)
}

// MatchKeyword returns the matched keyword from text using the given regex.
// Returns empty string if no match. The keyword is returned without trailing space.
func MatchKeyword(regex *regexp.Regexp, text string) string {
	match := regex.FindStringSubmatch(text)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

// ExtractSearchTerm extracts the argument by removing the matched keyword.
// Handles keyword at beginning, end, or middle of text. Returns trimmed result.
func ExtractSearchTerm(text, keyword string) string {
	if keyword == "" {
		return strings.TrimSpace(text)
	}

	text = strings.TrimSpace(text)

	switch {
	case strings.HasPrefix(text, keyword):
		return strings.TrimSpace(strings.TrimPrefix(text, keyword))
	case strings.HasSuffix(text, keyword):
		return strings.TrimSpace(strings.TrimSuffix(text, keyword))
	default:
		return strings.TrimSpace(strings.Replace(text, keyword, "", 1))
	}
}

// normalizeWhitespace collapses runs of whitespace into single spaces.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
