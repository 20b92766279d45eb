package importer_test

import (
	"testing"

	"discshelf/internal/collection"
	"discshelf/internal/importer"
	"discshelf/internal/services/vision"
)

func TestReconcileAnnotatesDuplicates(t *testing.T) {
	existing := []collection.Movie{
		{Title: "The Matrix"},
		{Title: "Casablanca"},
	}
	candidates := []vision.Candidate{
		{Title: "Matrix", Format: "Blu-ray", Confidence: 0.95},
		{Title: "Unseen Film", Format: "DVD", Confidence: 0.8},
	}

	items := importer.Reconcile(candidates, existing)
	if len(items) != 2 {
		t.Fatalf("expected all candidates kept, got %d", len(items))
	}

	if !items[0].IsDuplicate {
		t.Error("expected Matrix flagged as duplicate")
	}
	if items[0].ExistingTitle != "The Matrix" {
		t.Errorf("expected existing title surfaced, got %q", items[0].ExistingTitle)
	}
	if items[0].Title != "Matrix" || items[0].Confidence != 0.95 {
		t.Errorf("expected candidate fields preserved, got %+v", items[0])
	}

	if items[1].IsDuplicate {
		t.Error("expected Unseen Film not flagged")
	}
	if items[1].ExistingTitle != "" {
		t.Errorf("expected no existing title, got %q", items[1].ExistingTitle)
	}
}

func TestReconcileEmptyCollection(t *testing.T) {
	items := importer.Reconcile([]vision.Candidate{{Title: "Heat"}}, nil)
	if len(items) != 1 || items[0].IsDuplicate {
		t.Fatalf("expected single clean item, got %+v", items)
	}
}
