package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"discshelf/internal/collection"
)

type listMoviesResponse struct {
	Movies []collection.Movie `json:"movies"`
	Count  int                `json:"count"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filters := collection.Filters{
		Search:    query.Get("search"),
		SortBy:    query.Get("sortBy"),
		SortOrder: query.Get("sortOrder"),
	}
	if format := strings.TrimSpace(query.Get("format")); format != "" {
		for _, f := range strings.Split(format, ",") {
			if f = strings.TrimSpace(f); f != "" {
				filters.Formats = append(filters.Formats, f)
			}
		}
	}
	if want := query.Get("wantToUpgrade"); want != "" {
		value := want == "true"
		filters.WantToUpgrade = &value
	}

	movies, err := s.store.GetAll(filters)
	if err != nil {
		s.handleError(w, err, "listing movies")
		return
	}
	s.writeJSON(w, http.StatusOK, listMoviesResponse{Movies: movies, Count: len(movies)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats()
	if err != nil {
		s.handleError(w, err, "getting stats")
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "json"
	}
	date := time.Now().Format("2006-01-02")

	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", "movie-collection-"+date+".json"))
		if err := s.store.WriteJSON(w); err != nil {
			s.logger.Error("export json", "error", err)
		}
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", "movie-collection-"+date+".csv"))
		if err := s.store.WriteCSV(w); err != nil {
			s.logger.Error("export csv", "error", err)
		}
	default:
		s.writeError(w, http.StatusBadRequest, "format must be json or csv")
	}
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := s.store.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		s.handleError(w, err, "getting movie")
		return
	}
	s.writeJSON(w, http.StatusOK, movie)
}

type createMovieRequest struct {
	Title         string `json:"title"`
	Format        string `json:"format"`
	Notes         string `json:"notes"`
	Genre         string `json:"genre"`
	ReleaseDate   string `json:"releaseDate"`
	Actors        string `json:"actors"`
	WantToUpgrade bool   `json:"wantToUpgrade"`
	UpgradeTarget string `json:"upgradeTarget"`
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	var req createMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	movie, err := s.store.Create(collection.NewMovie{
		Title:         req.Title,
		Format:        req.Format,
		Notes:         req.Notes,
		Genre:         req.Genre,
		ReleaseDate:   req.ReleaseDate,
		Actors:        req.Actors,
		WantToUpgrade: req.WantToUpgrade,
		UpgradeTarget: req.UpgradeTarget,
		Source:        collection.SourceManual,
	})
	if err != nil {
		s.handleError(w, err, "creating movie")
		return
	}
	s.writeJSON(w, http.StatusCreated, movie)
}

type updateMovieRequest struct {
	Title         *string `json:"title"`
	Format        *string `json:"format"`
	Notes         *string `json:"notes"`
	Genre         *string `json:"genre"`
	ReleaseDate   *string `json:"releaseDate"`
	Actors        *string `json:"actors"`
	WantToUpgrade *bool   `json:"wantToUpgrade"`
	UpgradeTarget *string `json:"upgradeTarget"`
}

func (s *Server) handleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	var req updateMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	movie, err := s.store.Update(chi.URLParam(r, "id"), collection.Changes{
		Title:         req.Title,
		Format:        req.Format,
		Notes:         req.Notes,
		Genre:         req.Genre,
		ReleaseDate:   req.ReleaseDate,
		Actors:        req.Actors,
		WantToUpgrade: req.WantToUpgrade,
		UpgradeTarget: req.UpgradeTarget,
	})
	if err != nil {
		s.handleError(w, err, "updating movie")
		return
	}
	s.writeJSON(w, http.StatusOK, movie)
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.store.Remove(chi.URLParam(r, "id"))
	if err != nil {
		s.handleError(w, err, "deleting movie")
		return
	}
	if !deleted {
		s.writeError(w, http.StatusNotFound, "Movie not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
