package importer

import (
	"fmt"
	"math"
	"strings"

	"discshelf/internal/collection"
	"discshelf/internal/fileutil"
	"discshelf/internal/identify"
	"discshelf/internal/services/vision"
)

// autoCommitThreshold is the confidence below which an automatically
// committed record gets a review marker appended to its notes.
const autoCommitThreshold = 0.9

// Confirm persists a reviewed batch. Items the reviewer flagged with Skip
// are dropped; the rest land in one bulk write, so a single over-limit
// title or notes field rejects the whole batch. The source photo is
// archived afterwards.
func (im *Importer) Confirm(items []ReviewItem, fileName string) ([]collection.Movie, error) {
	inputs := make([]collection.NewMovie, 0, len(items))
	for _, item := range items {
		if item.Skip {
			continue
		}
		inputs = append(inputs, collection.NewMovie{
			Title:       item.Title,
			Format:      item.Format,
			Notes:       item.Notes,
			Genre:       item.Genre,
			ReleaseDate: item.ReleaseDate,
			Actors:      item.Actors,
			Source:      collection.SourcePhotoImport,
			SourceFile:  fileutil.SanitizeFileName(fileName),
		})
	}

	var added []collection.Movie
	if len(inputs) > 0 {
		var err error
		added, err = im.store.BulkCreate(inputs)
		if err != nil {
			return nil, err
		}
	}

	if err := im.ArchivePhoto(fileName); err != nil {
		im.logger.Warn("archive after confirm failed", "file", fileName, "error", err)
	}
	return added, nil
}

// SkippedItem records a candidate AutoCommit declined, and why.
type SkippedItem struct {
	vision.Candidate
	Reason        string `json:"reason"`
	ExistingTitle string `json:"existingTitle,omitempty"`
}

// AutoCommitResult summarizes an unattended batch commit.
type AutoCommitResult struct {
	Added   []collection.Movie
	Skipped []SkippedItem
}

// AutoCommit persists a detected batch without review. Duplicates are
// skipped, including duplicates of earlier candidates in the same batch.
// Candidates below the confidence threshold are still added, with a
// review marker appended to their notes. The batch lands in one bulk
// write and the source photo is archived on success.
func (im *Importer) AutoCommit(candidates []vision.Candidate, fileName string) (AutoCommitResult, error) {
	existing, err := im.store.GetAll(collection.Filters{})
	if err != nil {
		return AutoCommitResult{}, err
	}

	var result AutoCommitResult
	inputs := make([]collection.NewMovie, 0, len(candidates))
	for _, candidate := range candidates {
		if match, ok := identify.FindDuplicate(candidate.Title, existing); ok {
			result.Skipped = append(result.Skipped, SkippedItem{
				Candidate:     candidate,
				Reason:        "duplicate",
				ExistingTitle: match.Title,
			})
			continue
		}

		notes := candidate.Notes
		if candidate.Confidence < autoCommitThreshold {
			notes = strings.TrimSpace(fmt.Sprintf("%s [Confidence: %d%%]",
				notes, int(math.Round(candidate.Confidence*100))))
		}

		inputs = append(inputs, collection.NewMovie{
			Title:       candidate.Title,
			Format:      candidate.Format,
			Notes:       notes,
			Genre:       candidate.Genre,
			ReleaseDate: candidate.ReleaseDate,
			Actors:      candidate.Actors,
			Source:      collection.SourcePhotoImport,
			SourceFile:  fileutil.SanitizeFileName(fileName),
		})
		// Accepted candidates join the duplicate pool so a photo with the
		// same title twice only lands once.
		existing = append(existing, collection.Movie{Title: candidate.Title})
	}

	if len(inputs) > 0 {
		result.Added, err = im.store.BulkCreate(inputs)
		if err != nil {
			return AutoCommitResult{}, err
		}
	}

	if err := im.ArchivePhoto(fileName); err != nil {
		im.logger.Warn("archive after auto-commit failed", "file", fileName, "error", err)
	}
	return result, nil
}
