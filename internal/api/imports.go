package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"discshelf/internal/collection"
	"discshelf/internal/fileutil"
	"discshelf/internal/importer"
	"discshelf/internal/pipeline"
	"discshelf/internal/services/vision"
)

const (
	maxUploadBytes   = 20 << 20 // 20MB
	defaultCSVImport = "Movie-List-Cabinet-Photos.csv"
)

var allowedUploadTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

type importCSVRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	var req importCSVRequest
	if r.Body != nil {
		// An empty body means "use the default file".
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			s.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	name := defaultCSVImport
	if req.Path != "" {
		name = fileutil.SanitizeFileName(req.Path)
		if !strings.EqualFold(filepath.Ext(name), ".csv") {
			s.writeError(w, http.StatusBadRequest, "Only CSV files are allowed")
			return
		}
	}
	csvPath := filepath.Join(s.cfg.Paths.SourcesDir, name)
	if !fileutil.WithinDirectory(csvPath, s.cfg.Paths.SourcesDir) {
		s.writeError(w, http.StatusBadRequest, "Invalid file path")
		return
	}

	result, err := s.importer.ImportCSV(csvPath)
	if err != nil {
		s.handleError(w, err, "importing CSV")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Imported %d movies", result.Imported),
		"count":   result.Imported,
	})
}

func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.pipe.Status(r.Context())
	if err != nil {
		s.handleError(w, err, "getting import status")
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleImportPending(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.cfg.Paths.SourcesDir)
	if err != nil {
		s.handleError(w, err, "listing pending files")
		return
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !fileutil.IsImageFile(entry.Name()) {
			continue
		}
		files = append(files, entry.Name())
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"files": files})
}

// saveUpload stores the "photo" form file into the sources directory under
// a timestamped name and returns the stored path and file name.
func (s *Server) saveUpload(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("photo")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "No photo uploaded")
		return "", "", false
	}
	defer file.Close()

	if !allowedUpload(header) {
		s.writeError(w, http.StatusBadRequest, "Invalid file type. Only JPEG, PNG, GIF, and WebP are allowed.")
		return "", "", false
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	fileName := fmt.Sprintf("upload-%d%s", time.Now().UnixMilli(), ext)
	path := filepath.Join(s.cfg.Paths.SourcesDir, fileName)

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		s.handleError(w, err, "storing upload")
		return "", "", false
	}
	if _, err := io.Copy(out, file); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		s.handleError(w, err, "storing upload")
		return "", "", false
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		s.handleError(w, err, "storing upload")
		return "", "", false
	}
	return path, fileName, true
}

func allowedUpload(header *multipart.FileHeader) bool {
	contentType := header.Header.Get("Content-Type")
	if _, ok := allowedUploadTypes[contentType]; ok {
		return true
	}
	// Some clients omit the part content type; fall back to the extension.
	return contentType == "" && fileutil.IsImageFile(header.Filename)
}

type uploadResponse struct {
	Success  bool                  `json:"success"`
	FileName string                `json:"fileName"`
	Movies   []importer.ReviewItem `json:"movies"`
	Count    int                   `json:"count"`
}

func (s *Server) handleImportUpload(w http.ResponseWriter, r *http.Request) {
	path, fileName, ok := s.saveUpload(w, r)
	if !ok {
		return
	}

	if !s.detector.Configured() {
		_ = os.Remove(path)
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:      "AI vision not configured. Set the Anthropic API key in the config file or ANTHROPIC_API_KEY.",
			NeedsSetup: true,
		})
		return
	}

	candidates, err := s.detector.IdentifyMovies(r.Context(), path)
	if err != nil {
		_ = os.Remove(path)
		s.handleError(w, err, "processing upload")
		return
	}

	existing, err := s.store.GetAll(collection.Filters{})
	if err != nil {
		_ = os.Remove(path)
		s.handleError(w, err, "processing upload")
		return
	}

	items := importer.Reconcile(candidates, existing)
	// The stored file stays in sources until the batch is confirmed.
	s.writeJSON(w, http.StatusOK, uploadResponse{
		Success:  true,
		FileName: fileName,
		Movies:   items,
		Count:    len(items),
	})
}

type confirmRequest struct {
	Movies   []importer.ReviewItem `json:"movies"`
	FileName string                `json:"fileName"`
}

func (s *Server) handleImportConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Movies == nil {
		s.writeError(w, http.StatusBadRequest, "Movies array is required")
		return
	}

	added, err := s.importer.Confirm(req.Movies, req.FileName)
	if err != nil {
		s.handleError(w, err, "confirming import")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"added":   len(added),
		"movies":  added,
	})
}

func (s *Server) handleImportBarcode(w http.ResponseWriter, r *http.Request) {
	path, _, ok := s.saveUpload(w, r)
	if !ok {
		return
	}
	// Barcode photos are transient; nothing archives them.
	defer os.Remove(path)

	if s.barcodes == nil || !s.barcodes.Configured() {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:      "AI vision not configured. Set the Anthropic API key in the config file or ANTHROPIC_API_KEY.",
			NeedsSetup: true,
		})
		return
	}

	result, err := s.barcodes.Lookup(r.Context(), path)
	if err != nil {
		s.handleError(w, err, "processing barcode")
		return
	}
	if !result.Success {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   result.Error,
			"barcode": result.Barcode,
		})
		return
	}

	existing, err := s.store.GetAll(collection.Filters{})
	if err != nil {
		s.handleError(w, err, "processing barcode")
		return
	}
	movie := importer.Reconcile([]vision.Candidate{*result.Movie}, existing)[0]

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"barcode":     result.Barcode,
		"barcodeType": result.BarcodeType,
		"productInfo": result.Product,
		"movie":       movie,
	})
}

type importPhotoRequest struct {
	Filename string `json:"filename"`
}

func (s *Server) handleImportPhoto(w http.ResponseWriter, r *http.Request) {
	var req importPhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Filename) == "" {
		s.writeError(w, http.StatusBadRequest, "Filename is required")
		return
	}

	name := fileutil.SanitizeFileName(req.Filename)
	if !fileutil.IsImageFile(name) {
		s.writeError(w, http.StatusBadRequest, "Invalid file type")
		return
	}
	path := filepath.Join(s.cfg.Paths.SourcesDir, name)
	if !fileutil.WithinDirectory(path, s.cfg.Paths.SourcesDir) {
		s.writeError(w, http.StatusBadRequest, "Invalid file path")
		return
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.writeError(w, http.StatusNotFound, "Image file not found")
			return
		}
		s.handleError(w, err, "processing photo")
		return
	}

	outcome, err := s.pipe.Process(r.Context(), path, pipeline.TriggerManual)
	if err != nil {
		s.handleError(w, err, "processing photo")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"file":    outcome.Job.FileName,
		"status":  outcome.Job.Status,
		"movies":  outcome.Detected,
		"added":   outcome.Added,
		"skipped": outcome.Skipped,
	})
}
