package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"discshelf/internal/api"
	"discshelf/internal/collection"
	"discshelf/internal/config"
	"discshelf/internal/importer"
	"discshelf/internal/logging"
	"discshelf/internal/pipeline"
	"discshelf/internal/services/barcode"
	"discshelf/internal/services/vision"
	"discshelf/internal/testsupport"
)

type fakeDetector struct {
	configured bool
	candidates []vision.Candidate
	err        error
}

func (d *fakeDetector) Configured() bool { return d.configured }

func (d *fakeDetector) IdentifyMovies(ctx context.Context, imagePath string) ([]vision.Candidate, error) {
	return d.candidates, d.err
}

type fakeBarcodes struct {
	configured bool
	result     barcode.Result
	err        error
}

func (b *fakeBarcodes) Configured() bool { return b.configured }

func (b *fakeBarcodes) Lookup(ctx context.Context, imagePath string) (barcode.Result, error) {
	return b.result, b.err
}

type testServer struct {
	cfg    *config.Config
	store  *collection.Store
	server *httptest.Server
}

func newTestServer(t *testing.T, detector *fakeDetector, barcodes *fakeBarcodes) testServer {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	jobs, err := pipeline.OpenJobStore(cfg)
	if err != nil {
		t.Fatalf("OpenJobStore failed: %v", err)
	}
	t.Cleanup(func() { _ = jobs.Close() })

	im := importer.New(cfg, store, logging.NewNop())
	pipe := pipeline.New(cfg, jobs, im, detector, barcodes, nil, logging.NewNop())

	handler := api.NewServer(cfg, store, im, pipe, detector, barcodes, logging.NewNop())
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return testServer{cfg: cfg, store: store, server: server}
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &fakeDetector{}, &fakeBarcodes{})

	resp, err := http.Get(ts.server.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
