package identify

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	leadingThe = regexp.MustCompile(`^the\s+`)
	nonWord    = regexp.MustCompile(`[^\w\s]`)
	spaceRuns  = regexp.MustCompile(`\s+`)
)

// NormalizeTitle reduces a title to its comparable canonical form:
// lower-cased, a single leading "the " stripped, punctuation removed, and
// whitespace collapsed. The result is only ever compared, never displayed
// or persisted.
func NormalizeTitle(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	t = leadingThe.ReplaceAllString(t, "")
	t = nonWord.ReplaceAllString(t, "")
	t = spaceRuns.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

var titleCaser = cases.Title(language.Und)

// DisplayTitle title-cases a cleaned product string for use as a candidate
// title when no metadata lookup produced a better one.
func DisplayTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return title
	}
	return titleCaser.String(strings.ToLower(title))
}
