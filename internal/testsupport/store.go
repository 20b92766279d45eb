package testsupport

import (
	"testing"

	"discshelf/internal/collection"
	"discshelf/internal/config"
	"discshelf/internal/logging"
)

// MustOpenStore opens a collection store against the test config, failing
// the test on error.
func MustOpenStore(t testing.TB, cfg *config.Config) *collection.Store {
	t.Helper()

	store, err := collection.Open(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("open collection store: %v", err)
	}
	return store
}

// SeedMovies bulk-creates the given records and returns them.
func SeedMovies(t testing.TB, store *collection.Store, inputs ...collection.NewMovie) []collection.Movie {
	t.Helper()

	created, err := store.BulkCreate(inputs)
	if err != nil {
		t.Fatalf("seed movies: %v", err)
	}
	return created
}
