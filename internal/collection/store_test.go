package collection_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"discshelf/internal/collection"
	"discshelf/internal/logging"
	"discshelf/internal/testsupport"
)

func countBackups(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read backups dir: %v", err)
	}
	count := 0
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "movies-") && strings.HasSuffix(entry.Name(), ".json") {
			count++
		}
	}
	return count
}

func TestCreateAssignsIDAndCoerces(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	movie, err := store.Create(collection.NewMovie{
		Title:         "  The Matrix  ",
		Format:        "4K Ultra HD",
		ReleaseDate:   "1999",
		UpgradeTarget: "betamax",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if movie.ID == "" {
		t.Fatal("expected id to be assigned")
	}
	if movie.Title != "The Matrix" {
		t.Fatalf("expected trimmed title, got %q", movie.Title)
	}
	if movie.Format != collection.Format4K {
		t.Fatalf("expected 4k format, got %q", movie.Format)
	}
	if movie.UpgradeTarget != "" {
		t.Fatalf("expected invalid upgrade target discarded, got %q", movie.UpgradeTarget)
	}
	if movie.Source != collection.SourceManual {
		t.Fatalf("expected manual source default, got %q", movie.Source)
	}
	if movie.DateAdded.IsZero() || !movie.DateAdded.Equal(movie.DateModified) {
		t.Fatalf("expected matching creation timestamps, got %v / %v", movie.DateAdded, movie.DateModified)
	}

	fetched, err := store.GetByID(movie.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Title != movie.Title {
		t.Fatalf("unexpected fetched record: %+v", fetched)
	}
}

func TestCreateRejectsHardLimits(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.Create(collection.NewMovie{Title: "   "}); !errors.Is(err, collection.ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}
	if _, err := store.Create(collection.NewMovie{Title: strings.Repeat("x", 501)}); !errors.Is(err, collection.ErrTitleTooLong) {
		t.Fatalf("expected ErrTitleTooLong, got %v", err)
	}
	if _, err := store.Create(collection.NewMovie{Title: "Alien", Notes: strings.Repeat("n", 2001)}); !errors.Is(err, collection.ErrNotesTooLong) {
		t.Fatalf("expected ErrNotesTooLong, got %v", err)
	}
}

func TestReleaseDateCoercion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	for _, bad := range []string{"199", "19999", "next year", "1999-05-12"} {
		movie, err := store.Create(collection.NewMovie{Title: "Year " + bad, ReleaseDate: bad})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if movie.ReleaseDate != "" {
			t.Fatalf("expected %q discarded, got %q", bad, movie.ReleaseDate)
		}
	}

	movie, err := store.Create(collection.NewMovie{Title: "Good Year", ReleaseDate: "1986"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if movie.ReleaseDate != "1986" {
		t.Fatalf("expected 4-digit year kept, got %q", movie.ReleaseDate)
	}
}

func TestUpdatePartialAndCoercion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	movie, err := store.Create(collection.NewMovie{Title: "Heat", Format: "dvd", Genre: "Crime"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	format := "Blu-ray"
	target := "4k"
	updated, err := store.Update(movie.ID, collection.Changes{
		Format:        &format,
		UpgradeTarget: &target,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Format != collection.FormatBluray {
		t.Fatalf("expected bluray, got %q", updated.Format)
	}
	if updated.UpgradeTarget != "4k" {
		t.Fatalf("expected upgrade target 4k, got %q", updated.UpgradeTarget)
	}
	if updated.Genre != "Crime" {
		t.Fatalf("expected untouched genre, got %q", updated.Genre)
	}
	if !updated.DateModified.After(updated.DateAdded) && !updated.DateModified.Equal(updated.DateAdded) {
		t.Fatal("expected dateModified to advance")
	}

	// An out-of-set target keeps the previous value rather than erroring.
	bogus := "vhs"
	updated, err = store.Update(movie.ID, collection.Changes{UpgradeTarget: &bogus})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.UpgradeTarget != "4k" {
		t.Fatalf("expected retained upgrade target, got %q", updated.UpgradeTarget)
	}

	if _, err := store.Update("no-such-id", collection.Changes{}); !errors.Is(err, collection.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	movie, err := store.Create(collection.NewMovie{Title: "Jaws"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	removed, err := store.Remove(movie.ID)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !removed {
		t.Fatal("expected first remove to report true")
	}

	removed, err = store.Remove(movie.ID)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if removed {
		t.Fatal("expected second remove to report false")
	}
}

func TestBulkCreateSingleBackup(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	// Seed one record so the primary document exists and later saves back
	// it up.
	if _, err := store.Create(collection.NewMovie{Title: "Seed"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	before := countBackups(t, cfg.BackupsDir())

	inputs := []collection.NewMovie{
		{Title: "Alien", Format: "dvd"},
		{Title: "Aliens", Format: "Blu-ray"},
		{Title: "Alien 3", Format: "garbage"},
	}
	created, err := store.BulkCreate(inputs)
	if err != nil {
		t.Fatalf("BulkCreate failed: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("expected 3 created, got %d", len(created))
	}

	seen := map[string]struct{}{}
	for _, movie := range created {
		if _, dup := seen[movie.ID]; dup {
			t.Fatalf("duplicate id %s", movie.ID)
		}
		seen[movie.ID] = struct{}{}
	}
	if created[2].Format != collection.FormatDVD {
		t.Fatalf("expected garbage format coerced to dvd, got %q", created[2].Format)
	}

	if got := countBackups(t, cfg.BackupsDir()); got != before+1 {
		t.Fatalf("expected exactly one backup for the batch, got %d new", got-before)
	}

	all, err := store.GetAll(collection.Filters{})
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 records, got %d", len(all))
	}
}

func TestBulkCreateAllOrNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	_, err := store.BulkCreate([]collection.NewMovie{
		{Title: "Valid"},
		{Title: ""},
	})
	if !errors.Is(err, collection.ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}

	all, err := store.GetAll(collection.Filters{})
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected nothing committed, got %d records", len(all))
	}
}

func TestBackupRetention(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMaxBackups(3))
	store := testsupport.MustOpenStore(t, cfg)

	for i := 0; i < 8; i++ {
		if _, err := store.Create(collection.NewMovie{Title: "Movie " + string(rune('A'+i))}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	if got := countBackups(t, cfg.BackupsDir()); got > 3 {
		t.Fatalf("expected at most 3 backups retained, got %d", got)
	}
}

func TestReloadPicksUpExternalEdits(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.Create(collection.NewMovie{Title: "Original"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Simulate an out-of-band edit to the document.
	data, err := os.ReadFile(cfg.CollectionPath())
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	edited := strings.Replace(string(data), "Original", "Edited", 1)
	if err := os.WriteFile(cfg.CollectionPath(), []byte(edited), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}

	store.Reload()
	all, err := store.GetAll(collection.Filters{})
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 1 || all[0].Title != "Edited" {
		t.Fatalf("expected reloaded record, got %+v", all)
	}
}

func TestOpenFailsOnMalformedDocument(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	if err := os.WriteFile(cfg.CollectionPath(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}

	if _, err := collection.Open(cfg, logging.NewNop()); err == nil {
		t.Fatal("expected malformed document to fail Open")
	}
}

func TestOpenSynthesizesEmptyDocument(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	all, err := store.GetAll(collection.Filters{})
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected empty collection, got %d records", len(all))
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.DataDir, "movies.json")); !os.IsNotExist(err) {
		t.Fatal("expected no document written before the first mutation")
	}
}
