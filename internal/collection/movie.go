package collection

import (
	"regexp"
	"strings"
	"time"
)

// Format is the storage medium of a cataloged disc.
type Format string

const (
	FormatDVD      Format = "dvd"
	FormatBluray   Format = "bluray"
	Format4K       Format = "4k"
	FormatMixed    Format = "mixed"
	FormatBluray4K Format = "bluray_4k"
)

// Source tags how a record entered the collection.
type Source string

const (
	SourceManual      Source = "manual"
	SourceCSVImport   Source = "csv_import"
	SourcePhotoImport Source = "photo_import"
)

// Hard input limits. Exceeding either rejects the write; everything else
// coerces rather than rejects.
const (
	MaxTitleLength = 500
	MaxNotesLength = 2000
)

// Movie is one cataloged disc.
type Movie struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Format        Format    `json:"format"`
	Notes         string    `json:"notes"`
	Genre         string    `json:"genre"`
	ReleaseDate   string    `json:"releaseDate"`
	Actors        string    `json:"actors"`
	WantToUpgrade bool      `json:"wantToUpgrade"`
	UpgradeTarget string    `json:"upgradeTarget,omitempty"`
	DateAdded     time.Time `json:"dateAdded"`
	DateModified  time.Time `json:"dateModified"`
	Source        Source    `json:"source"`
	SourceFile    string    `json:"sourceFile,omitempty"`
}

// NewMovie carries incoming field values for Create and BulkCreate. Zero
// values fall back to record defaults.
type NewMovie struct {
	Title         string
	Format        string
	Notes         string
	Genre         string
	ReleaseDate   string
	Actors        string
	WantToUpgrade bool
	UpgradeTarget string
	Source        Source
	SourceFile    string
}

// Changes carries a partial update; nil pointers leave the field untouched.
type Changes struct {
	Title         *string
	Format        *string
	Notes         *string
	Genre         *string
	ReleaseDate   *string
	Actors        *string
	WantToUpgrade *bool
	UpgradeTarget *string
}

// formatRules maps keyword combinations to formats, evaluated first match
// wins. Combo formats sit above their single-keyword components so
// "4K+Blu-ray Combo" lands on bluray_4k instead of bare 4k.
var formatRules = []struct {
	keywords []string
	format   Format
}{
	{[]string{"4k", "blu"}, FormatBluray4K},
	{[]string{"dvd", "blu"}, FormatMixed},
	{[]string{"4k"}, Format4K},
	{[]string{"blu"}, FormatBluray},
	{[]string{"dvd"}, FormatDVD},
}

// ParseFormat coerces arbitrary input onto the closed format set. Input is
// never rejected; unrecognized values collapse to dvd.
func ParseFormat(value string) Format {
	lowered := strings.ToLower(strings.TrimSpace(value))
	if lowered == "" {
		return FormatDVD
	}
	for _, f := range []Format{FormatDVD, FormatBluray, Format4K, FormatMixed, FormatBluray4K} {
		if lowered == string(f) {
			return f
		}
	}
	for _, rule := range formatRules {
		matched := true
		for _, keyword := range rule.keywords {
			if !strings.Contains(lowered, keyword) {
				matched = false
				break
			}
		}
		if matched {
			return rule.format
		}
	}
	return FormatDVD
}

// upgradeTargets is the closed set of valid upgrade targets; empty means
// no target.
var upgradeTargets = map[string]struct{}{
	"":       {},
	"4k":     {},
	"bluray": {},
}

// coerceUpgradeTarget returns candidate when it is a member of the closed
// set, otherwise the previous value.
func coerceUpgradeTarget(previous, candidate string) string {
	if _, ok := upgradeTargets[candidate]; ok {
		return candidate
	}
	return previous
}

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// coerceReleaseDate keeps a strict 4-digit year and discards anything else.
func coerceReleaseDate(value string) string {
	if yearPattern.MatchString(value) {
		return value
	}
	return ""
}
