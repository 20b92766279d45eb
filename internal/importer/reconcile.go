package importer

import (
	"discshelf/internal/collection"
	"discshelf/internal/identify"
	"discshelf/internal/services/vision"
)

// ReviewItem is a detected candidate annotated for human review. Skip is
// set by the reviewer on the confirm round trip; everything else is filled
// by Reconcile.
type ReviewItem struct {
	vision.Candidate
	IsDuplicate   bool   `json:"isDuplicate"`
	ExistingTitle string `json:"existingTitle,omitempty"`
	Skip          bool   `json:"skip,omitempty"`
}

// Reconcile annotates candidates against the existing collection. It never
// drops or modifies a candidate; flagged duplicates stay in the batch so
// the reviewer sees what matched.
func Reconcile(candidates []vision.Candidate, existing []collection.Movie) []ReviewItem {
	items := make([]ReviewItem, 0, len(candidates))
	for _, candidate := range candidates {
		item := ReviewItem{Candidate: candidate}
		if match, ok := identify.FindDuplicate(candidate.Title, existing); ok {
			item.IsDuplicate = true
			item.ExistingTitle = match.Title
		}
		items = append(items, item)
	}
	return items
}
