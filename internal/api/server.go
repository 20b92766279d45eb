package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"discshelf/internal/collection"
	"discshelf/internal/config"
	"discshelf/internal/importer"
	"discshelf/internal/pipeline"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	cfg      *config.Config
	store    *collection.Store
	importer *importer.Importer
	pipe     *pipeline.Pipeline
	detector pipeline.Detector
	barcodes pipeline.BarcodeResolver
	router   *chi.Mux
	logger   *slog.Logger
}

// NewServer creates the HTTP server with all routes configured.
func NewServer(cfg *config.Config, store *collection.Store, im *importer.Importer, pipe *pipeline.Pipeline, detector pipeline.Detector, barcodes pipeline.BarcodeResolver, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(127)}))
	}
	s := &Server{
		cfg:      cfg,
		store:    store,
		importer: im,
		pipe:     pipe,
		detector: detector,
		barcodes: barcodes,
		router:   chi.NewRouter(),
		logger:   logger,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/movies", func(r chi.Router) {
		r.Get("/", s.handleListMovies)
		r.Post("/", s.handleCreateMovie)
		r.Get("/stats", s.handleStats)
		r.Get("/export", s.handleExport)
		r.Get("/{id}", s.handleGetMovie)
		r.Put("/{id}", s.handleUpdateMovie)
		r.Delete("/{id}", s.handleDeleteMovie)
	})

	s.router.Route("/api/import", func(r chi.Router) {
		r.Post("/csv", s.handleImportCSV)
		r.Get("/status", s.handleImportStatus)
		r.Get("/pending", s.handleImportPending)
		r.Post("/upload", s.handleImportUpload)
		r.Post("/confirm", s.handleImportConfirm)
		r.Post("/barcode", s.handleImportBarcode)
		r.Post("/photo", s.handleImportPhoto)
	})

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
