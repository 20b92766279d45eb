package collection_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"discshelf/internal/collection"
	"discshelf/internal/testsupport"
)

func seedQueryFixture(t *testing.T) *collection.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedMovies(t, store,
		collection.NewMovie{Title: "alien", Format: "dvd", Genre: "Sci-Fi", WantToUpgrade: true},
		collection.NewMovie{Title: "Blade Runner", Format: "Blu-ray", Genre: "Sci-Fi"},
		collection.NewMovie{Title: "Casablanca", Format: "dvd", Genre: "Drama"},
		collection.NewMovie{Title: "The Alienist", Format: "4k", Genre: "Crime", WantToUpgrade: true},
	)
	return store
}

func titles(movies []collection.Movie) []string {
	out := make([]string, len(movies))
	for i, m := range movies {
		out[i] = m.Title
	}
	return out
}

func TestGetAllSearchIsTitleOnly(t *testing.T) {
	store := seedQueryFixture(t)

	movies, err := store.GetAll(collection.Filters{Search: "ALIEN"})
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	got := titles(movies)
	if len(got) != 2 || got[0] != "alien" || got[1] != "The Alienist" {
		t.Fatalf("unexpected search result: %v", got)
	}

	// Genre text must not match the title-only search.
	movies, err = store.GetAll(collection.Filters{Search: "sci-fi"})
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(movies) != 0 {
		t.Fatalf("expected no title match for genre text, got %v", titles(movies))
	}
}

func TestGetAllFormatFilter(t *testing.T) {
	store := seedQueryFixture(t)

	movies, err := store.GetAll(collection.Filters{Formats: []string{"dvd", "4k"}})
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	got := titles(movies)
	want := []string{"alien", "Casablanca", "The Alienist"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected format filter result: %v", got)
		}
	}
}

func TestGetAllUpgradeFilter(t *testing.T) {
	store := seedQueryFixture(t)

	want := true
	movies, err := store.GetAll(collection.Filters{WantToUpgrade: &want})
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("expected 2 upgrade candidates, got %v", titles(movies))
	}

	// Absent pointer means no filter at all.
	movies, err = store.GetAll(collection.Filters{})
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(movies) != 4 {
		t.Fatalf("expected 4 records without filter, got %d", len(movies))
	}
}

func TestGetAllSortDescCaseInsensitive(t *testing.T) {
	store := seedQueryFixture(t)

	movies, err := store.GetAll(collection.Filters{SortBy: "title", SortOrder: "desc"})
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	got := titles(movies)
	want := []string{"The Alienist", "Casablanca", "Blade Runner", "alien"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected desc order: %v", got)
		}
	}
}

func TestGetAllUnknownSortFieldFallsBackToTitle(t *testing.T) {
	store := seedQueryFixture(t)

	movies, err := store.GetAll(collection.Filters{SortBy: "__proto__"})
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	got := titles(movies)
	want := []string{"alien", "Blade Runner", "Casablanca", "The Alienist"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected title fallback order, got %v", got)
		}
	}
}

func TestStatsMatchesGetAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedMovies(t, store,
		collection.NewMovie{Title: "A", Format: "dvd"},
		collection.NewMovie{Title: "B", Format: "bluray", WantToUpgrade: true},
		collection.NewMovie{Title: "C", Format: "4k"},
		collection.NewMovie{Title: "D", Format: "mixed"},
		collection.NewMovie{Title: "E", Format: "bluray_4k"},
	)

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	all, err := store.GetAll(collection.Filters{})
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if stats.Total != len(all) {
		t.Fatalf("expected total %d, got %d", len(all), stats.Total)
	}
	if stats.WantToUpgrade != 1 {
		t.Fatalf("expected 1 upgrade candidate, got %d", stats.WantToUpgrade)
	}

	// bluray_4k contributes to Total but no byFormat bucket.
	bucketSum := stats.ByFormat.DVD + stats.ByFormat.Bluray + stats.ByFormat.FourK + stats.ByFormat.Mixed
	if bucketSum != stats.Total-1 {
		t.Fatalf("expected bucket sum %d, got %d", stats.Total-1, bucketSum)
	}
}

func TestWriteCSV(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedMovies(t, store,
		collection.NewMovie{Title: "Up", Format: "bluray", Genre: "Animation"},
	)

	var buf bytes.Buffer
	if err := store.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse exported csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus one row, got %d", len(records))
	}
	if records[1][0] != "Up" || records[1][1] != "bluray" {
		t.Fatalf("unexpected row: %v", records[1])
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedMovies(t, store, collection.NewMovie{Title: "Dune", Format: "4k"})

	var buf bytes.Buffer
	if err := store.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"version": "1.0"`) || !strings.Contains(out, `"Dune"`) {
		t.Fatalf("unexpected export payload: %s", out)
	}
}
