package identify

import (
	"strings"

	"discshelf/internal/collection"
)

// substringMinLength guards the containment rule: both normalized titles
// must be longer than this before a substring counts as a match.
const substringMinLength = 3

// FindDuplicate returns the first existing record whose normalized title
// either equals the candidate's or contains/is contained by it when both
// sides exceed substringMinLength characters.
//
// The containment rule deliberately catches "Lion King" against "The Lion
// King (Special Edition)" at the cost of false positives on short generic
// titles inside longer ones; that trade-off is accepted, and the first
// match wins with no ranking across candidates.
func FindDuplicate(candidateTitle string, existing []collection.Movie) (collection.Movie, bool) {
	normalized := NormalizeTitle(candidateTitle)

	for _, record := range existing {
		other := NormalizeTitle(record.Title)

		if normalized == other {
			return record, true
		}
		if len(normalized) > substringMinLength && len(other) > substringMinLength {
			if strings.Contains(normalized, other) || strings.Contains(other, normalized) {
				return record, true
			}
		}
	}
	return collection.Movie{}, false
}
