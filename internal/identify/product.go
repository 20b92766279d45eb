package identify

import (
	"regexp"
	"strings"

	"discshelf/internal/collection"
)

// productFormatRules is evaluated first match wins against a lowered retail
// product title. Retail listings spell formats many ways; anything without
// a recognizable keyword is assumed to be a DVD.
var productFormatRules = []struct {
	keywords []string
	format   collection.Format
}{
	{[]string{"4k"}, collection.Format4K},
	{[]string{"ultra hd"}, collection.Format4K},
	{[]string{"uhd"}, collection.Format4K},
	{[]string{"blu-ray"}, collection.FormatBluray},
	{[]string{"bluray"}, collection.FormatBluray},
}

// DetectFormat reads the disc format out of a retail product title.
func DetectFormat(productTitle string) collection.Format {
	lowered := strings.ToLower(productTitle)
	for _, rule := range productFormatRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.format
			}
		}
	}
	return collection.FormatDVD
}

// editionNames are matched verbatim against product titles, first match
// wins.
var editionNames = []string{
	"Special Edition",
	"Collector's Edition",
	"Director's Cut",
	"Extended Edition",
	"Limited Edition",
	"Anniversary Edition",
	"Criterion Collection",
}

// ExtractEdition returns the edition name present in a product title, or
// an empty string.
func ExtractEdition(productTitle string) string {
	for _, edition := range editionNames {
		if strings.Contains(productTitle, edition) {
			return edition
		}
	}
	return ""
}

var (
	parenthetical = regexp.MustCompile(`\([^)]*\)`)
	bracketed     = regexp.MustCompile(`\[[^\]]*\]`)
	packagingTerm = regexp.MustCompile(`(?i)\b(DVD|Blu-ray|BluRay|4K|Ultra HD|UHD|Digital Copy|Digital HD|HDX)\b`)
	editionTerm   = regexp.MustCompile(`(?i)\b(Special Edition|Collector's Edition|Director's Cut|Extended Edition|Limited Edition|Anniversary Edition|Criterion Collection)\b`)
	publisherName = regexp.MustCompile(`(?i)\b(Sony Pictures|Warner Bros|Universal|Paramount|Disney|Fox|MGM|Lionsgate)\b`)
	joinerSymbols = regexp.MustCompile(`[+\-:]`)
)

// CleanProductTitle strips packaging noise from a retail product title so
// metadata searches see just the movie name: parenthetical and bracketed
// content, format and edition terms, publisher names, and joiner symbols
// all go, and whitespace collapses.
func CleanProductTitle(productTitle string) string {
	t := parenthetical.ReplaceAllString(productTitle, "")
	t = bracketed.ReplaceAllString(t, "")
	t = packagingTerm.ReplaceAllString(t, "")
	t = editionTerm.ReplaceAllString(t, "")
	t = publisherName.ReplaceAllString(t, "")
	t = joinerSymbols.ReplaceAllString(t, " ")
	t = spaceRuns.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}
