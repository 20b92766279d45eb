package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"discshelf/internal/collection"
	"discshelf/internal/testsupport"
)

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

func postJSON(t *testing.T, url string, body any, out any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

func TestListMoviesFiltered(t *testing.T) {
	ts := newTestServer(t, &fakeDetector{}, &fakeBarcodes{})
	testsupport.SeedMovies(t, ts.store,
		collection.NewMovie{Title: "The Matrix", Format: "bluray"},
		collection.NewMovie{Title: "Casablanca", Format: "dvd"},
		collection.NewMovie{Title: "Blade Runner", Format: "4k", WantToUpgrade: false},
	)

	var got struct {
		Movies []collection.Movie `json:"movies"`
		Count  int                `json:"count"`
	}
	resp := getJSON(t, ts.server.URL+"/api/movies/?format=dvd,bluray&sortBy=title", &got)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got.Count != 2 {
		t.Fatalf("expected 2 movies, got %d", got.Count)
	}
	if got.Movies[0].Title != "Casablanca" || got.Movies[1].Title != "The Matrix" {
		t.Fatalf("unexpected order: %+v", got.Movies)
	}
}

func TestCreateMovie(t *testing.T) {
	ts := newTestServer(t, &fakeDetector{}, &fakeBarcodes{})

	var created collection.Movie
	resp := postJSON(t, ts.server.URL+"/api/movies/", map[string]any{
		"title":         "  Heat  ",
		"format":        "Blu-ray",
		"wantToUpgrade": true,
		"upgradeTarget": "4k",
	}, &created)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if created.Title != "Heat" || created.Format != collection.FormatBluray {
		t.Fatalf("unexpected movie: %+v", created)
	}
	if created.ID == "" || created.Source != collection.SourceManual {
		t.Fatalf("expected id and manual source, got %+v", created)
	}
	if created.UpgradeTarget != "4k" {
		t.Errorf("expected upgrade target kept, got %q", created.UpgradeTarget)
	}
}

func TestCreateMovieValidation(t *testing.T) {
	ts := newTestServer(t, &fakeDetector{}, &fakeBarcodes{})

	resp := postJSON(t, ts.server.URL+"/api/movies/", map[string]any{"title": "   "}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank title, got %d", resp.StatusCode)
	}

	resp = postJSON(t, ts.server.URL+"/api/movies/", map[string]any{
		"title": strings.Repeat("x", collection.MaxTitleLength+1),
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized title, got %d", resp.StatusCode)
	}
}

func TestGetMovie(t *testing.T) {
	ts := newTestServer(t, &fakeDetector{}, &fakeBarcodes{})
	seeded := testsupport.SeedMovies(t, ts.store, collection.NewMovie{Title: "Alien"})

	var got collection.Movie
	resp := getJSON(t, ts.server.URL+"/api/movies/"+seeded[0].ID, &got)
	if resp.StatusCode != http.StatusOK || got.Title != "Alien" {
		t.Fatalf("unexpected response %d %+v", resp.StatusCode, got)
	}

	resp = getJSON(t, ts.server.URL+"/api/movies/no-such-id", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestUpdateMovie(t *testing.T) {
	ts := newTestServer(t, &fakeDetector{}, &fakeBarcodes{})
	seeded := testsupport.SeedMovies(t, ts.store, collection.NewMovie{Title: "Alien", Format: "dvd"})

	var updated collection.Movie
	resp := doJSON(t, http.MethodPut, ts.server.URL+"/api/movies/"+seeded[0].ID, map[string]any{
		"wantToUpgrade": true,
		"upgradeTarget": "bluray",
	}, &updated)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !updated.WantToUpgrade || updated.UpgradeTarget != "bluray" {
		t.Fatalf("unexpected update: %+v", updated)
	}
	if updated.Title != "Alien" {
		t.Errorf("expected untouched fields preserved, got %q", updated.Title)
	}

	resp = doJSON(t, http.MethodPut, ts.server.URL+"/api/movies/no-such-id", map[string]any{"title": "X"}, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestDeleteMovie(t *testing.T) {
	ts := newTestServer(t, &fakeDetector{}, &fakeBarcodes{})
	seeded := testsupport.SeedMovies(t, ts.store, collection.NewMovie{Title: "Alien"})

	resp := doJSON(t, http.MethodDelete, ts.server.URL+"/api/movies/"+seeded[0].ID, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete, ts.server.URL+"/api/movies/"+seeded[0].ID, nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", resp.StatusCode)
	}
}

func TestStats(t *testing.T) {
	ts := newTestServer(t, &fakeDetector{}, &fakeBarcodes{})
	testsupport.SeedMovies(t, ts.store,
		collection.NewMovie{Title: "A", Format: "dvd"},
		collection.NewMovie{Title: "B", Format: "bluray", WantToUpgrade: true},
		collection.NewMovie{Title: "C", Format: "bluray_4k"},
	)

	var stats collection.Stats
	resp := getJSON(t, ts.server.URL+"/api/movies/stats", &stats)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if stats.Total != 3 || stats.ByFormat.DVD != 1 || stats.ByFormat.Bluray != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.WantToUpgrade != 1 {
		t.Errorf("expected 1 upgrade candidate, got %d", stats.WantToUpgrade)
	}
}

func TestExport(t *testing.T) {
	ts := newTestServer(t, &fakeDetector{}, &fakeBarcodes{})
	testsupport.SeedMovies(t, ts.store, collection.NewMovie{Title: "Heat", Format: "dvd"})

	resp := getJSON(t, ts.server.URL+"/api/movies/export?format=csv", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("expected attachment disposition, got %q", cd)
	}

	resp = getJSON(t, ts.server.URL+"/api/movies/export?format=xml", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown format, got %d", resp.StatusCode)
	}
}

func TestProductionScrubsInternalErrors(t *testing.T) {
	ts := newTestServer(t, &fakeDetector{}, &fakeBarcodes{})
	ts.cfg.Production = true

	// Corrupt the document on disk and force a reload so the next read fails.
	testsupport.WriteFile(t, ts.store.Path(), []byte("{not json"))
	ts.store.Reload()

	var body struct {
		Error string `json:"error"`
	}
	resp := getJSON(t, ts.server.URL+"/api/movies/", &body)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if body.Error != "Internal server error" {
		t.Fatalf("expected scrubbed message, got %q", body.Error)
	}
}
