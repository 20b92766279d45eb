package tmdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"discshelf/internal/services"
	"discshelf/internal/services/tmdb"
	"discshelf/internal/testsupport"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *tmdb.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t)
	cfg.Lookup.TMDBAPIKey = "test-key"
	cfg.Lookup.TMDBBaseURL = server.URL
	return tmdb.NewClient(cfg)
}

func TestSearchMovieReturnsEnrichedMetadata(t *testing.T) {
	var searchQuery, detailsAppend string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/movie":
			searchQuery = r.URL.Query().Get("query")
			w.Write([]byte(`{"results": [{"id": 603, "title": "The Matrix"}, {"id": 604, "title": "The Matrix Reloaded"}]}`))
		case "/movie/603":
			detailsAppend = r.URL.Query().Get("append_to_response")
			w.Write([]byte(`{
				"title": "The Matrix",
				"release_date": "1999-03-31",
				"overview": "A computer hacker learns the truth.",
				"genres": [{"name": "Action"}, {"name": "Science Fiction"}],
				"credits": {"cast": [
					{"name": "Keanu Reeves"},
					{"name": "Laurence Fishburne"},
					{"name": "Carrie-Anne Moss"},
					{"name": "Hugo Weaving"}
				]}
			}`))
		default:
			t.Errorf("unexpected request path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	})

	meta, err := client.SearchMovie(context.Background(), "The Matrix", "1999")
	if err != nil {
		t.Fatalf("SearchMovie failed: %v", err)
	}
	if searchQuery != "The Matrix" {
		t.Errorf("expected query passed through, got %q", searchQuery)
	}
	if detailsAppend != "credits" {
		t.Errorf("expected credits appended to details request, got %q", detailsAppend)
	}
	if meta.Title != "The Matrix" {
		t.Errorf("unexpected title %q", meta.Title)
	}
	if meta.ReleaseDate != "1999" {
		t.Errorf("expected release year 1999, got %q", meta.ReleaseDate)
	}
	if meta.Genre != "Action, Science Fiction" {
		t.Errorf("unexpected genre %q", meta.Genre)
	}
	if meta.Actors != "Keanu Reeves, Laurence Fishburne, Carrie-Anne Moss" {
		t.Errorf("expected top three actors, got %q", meta.Actors)
	}
}

func TestSearchMovieIgnoresInvalidYear(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search/movie" {
			if got := r.URL.Query().Get("year"); got != "" {
				t.Errorf("expected no year parameter, got %q", got)
			}
			w.Write([]byte(`{"results": [{"id": 11, "title": "Star Wars"}]}`))
			return
		}
		w.Write([]byte(`{"title": "Star Wars", "release_date": "1977-05-25"}`))
	})

	if _, err := client.SearchMovie(context.Background(), "Star Wars", "late 70s"); err != nil {
		t.Fatalf("SearchMovie failed: %v", err)
	}
}

func TestSearchMovieNoResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	})

	_, err := client.SearchMovie(context.Background(), "Nonexistent Movie", "")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchMovieEmptyTitle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty title")
	})

	_, err := client.SearchMovie(context.Background(), "   ", "")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSearchMovieNotConfigured(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Lookup.TMDBAPIKey = ""
	client := tmdb.NewClient(cfg)

	_, err := client.SearchMovie(context.Background(), "Heat", "")
	if !errors.Is(err, services.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSearchMovieUpstreamFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := client.SearchMovie(context.Background(), "Heat", "")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
}
