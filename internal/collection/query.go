package collection

import (
	"sort"
	"strings"
)

// Filters narrows and orders GetAll results. Zero values mean "no filter".
type Filters struct {
	// Search matches case-insensitively against titles only.
	Search string
	// Formats keeps records whose stored format exactly matches any entry.
	Formats []string
	// WantToUpgrade filters on upgrade status when non-nil.
	WantToUpgrade *bool
	// SortBy must be an allowed field name; anything else falls back to
	// title. SortOrder "desc" reverses, everything else sorts ascending.
	SortBy    string
	SortOrder string
}

// sortFields is the allowlist of sortable fields. Unknown values (including
// hostile ones like "__proto__") silently sort by title.
var sortFields = map[string]struct{}{
	"title":        {},
	"format":       {},
	"genre":        {},
	"releaseDate":  {},
	"actors":       {},
	"notes":        {},
	"dateAdded":    {},
	"dateModified": {},
}

// GetAll returns the filtered, sorted collection.
func (s *Store) GetAll(filters Filters) ([]Movie, error) {
	s.mu.Lock()
	doc, err := s.loadLocked()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	movies := make([]Movie, len(doc.Movies))
	copy(movies, doc.Movies)
	s.mu.Unlock()

	if search := strings.ToLower(strings.TrimSpace(filters.Search)); search != "" {
		movies = keep(movies, func(m Movie) bool {
			return strings.Contains(strings.ToLower(m.Title), search)
		})
	}

	if len(filters.Formats) > 0 {
		allowed := make(map[string]struct{}, len(filters.Formats))
		for _, f := range filters.Formats {
			allowed[f] = struct{}{}
		}
		movies = keep(movies, func(m Movie) bool {
			_, ok := allowed[string(m.Format)]
			return ok
		})
	}

	if filters.WantToUpgrade != nil {
		want := *filters.WantToUpgrade
		movies = keep(movies, func(m Movie) bool {
			return m.WantToUpgrade == want
		})
	}

	sortMovies(movies, filters.SortBy, filters.SortOrder)
	return movies, nil
}

func keep(movies []Movie, pred func(Movie) bool) []Movie {
	filtered := movies[:0]
	for _, m := range movies {
		if pred(m) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

func sortMovies(movies []Movie, sortBy, sortOrder string) {
	if _, ok := sortFields[sortBy]; !ok {
		sortBy = "title"
	}
	descending := sortOrder == "desc"

	sort.SliceStable(movies, func(i, j int) bool {
		cmp := compareField(movies[i], movies[j], sortBy)
		if descending {
			return cmp > 0
		}
		return cmp < 0
	})
}

// compareField lower-cases string fields before comparing; timestamp fields
// compare chronologically.
func compareField(a, b Movie, field string) int {
	switch field {
	case "dateAdded":
		return a.DateAdded.Compare(b.DateAdded)
	case "dateModified":
		return a.DateModified.Compare(b.DateModified)
	default:
		return strings.Compare(
			strings.ToLower(stringField(a, field)),
			strings.ToLower(stringField(b, field)),
		)
	}
}

func stringField(m Movie, field string) string {
	switch field {
	case "format":
		return string(m.Format)
	case "genre":
		return m.Genre
	case "releaseDate":
		return m.ReleaseDate
	case "actors":
		return m.Actors
	case "notes":
		return m.Notes
	default:
		return m.Title
	}
}
