package barcode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"discshelf/internal/config"
	"discshelf/internal/identify"
	"discshelf/internal/services"
	"discshelf/internal/services/tmdb"
	"discshelf/internal/services/vision"
)

const defaultHTTPTimeout = 15 * time.Second

// UPC and EAN numbers are 8 to 14 digits; anything else never reaches the
// product database.
var barcodeNumber = regexp.MustCompile(`^\d{8,14}$`)

// ProductInfo is the UPCitemdb record for a scanned barcode.
type ProductInfo struct {
	Title       string `json:"title"`
	Brand       string `json:"brand"`
	Description string `json:"description"`
	Category    string `json:"category"`
	UPC         string `json:"upc"`
}

// Result is the outcome of a barcode lookup. A failed lookup is still a
// valid result: Success is false and Error says what went wrong, so callers
// can show it without treating it as a fault.
type Result struct {
	Success     bool              `json:"success"`
	Error       string            `json:"error,omitempty"`
	Barcode     string            `json:"barcode,omitempty"`
	BarcodeType string            `json:"barcodeType,omitempty"`
	Product     *ProductInfo      `json:"productInfo,omitempty"`
	Movie       *vision.Candidate `json:"movie,omitempty"`
}

// Service resolves barcode photos into movie candidates.
type Service struct {
	vision     *vision.Client
	tmdb       *tmdb.Client
	upcBaseURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithHTTPClient overrides the HTTP client used for product lookups.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// NewService constructs a barcode lookup service.
func NewService(cfg *config.Config, visionClient *vision.Client, tmdbClient *tmdb.Client, logger *slog.Logger, opts ...Option) *Service {
	service := &Service{
		vision:     visionClient,
		tmdb:       tmdbClient,
		upcBaseURL: strings.TrimRight(cfg.Lookup.UPCBaseURL, "/"),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Configured reports whether barcode lookups can run at all.
func (s *Service) Configured() bool {
	return s != nil && s.vision.Configured()
}

// Lookup reads the barcode out of imagePath and resolves it to a movie
// candidate. Unreadable barcodes and unknown products come back as
// unsuccessful results rather than errors; errors are reserved for missing
// configuration, bad input, and upstream faults.
func (s *Service) Lookup(ctx context.Context, imagePath string) (Result, error) {
	reading, err := s.vision.ExtractBarcode(ctx, imagePath)
	if err != nil {
		return Result{}, err
	}
	if reading.Barcode == "" {
		message := reading.Error
		if message == "" {
			message = "No barcode detected in image"
		}
		return Result{Success: false, Error: message}, nil
	}

	product := s.lookupProduct(ctx, reading.Barcode)
	if product == nil {
		return Result{
			Success: false,
			Error:   "Barcode found but product not in UPC database",
			Barcode: reading.Barcode,
		}, nil
	}

	movie := s.buildCandidate(ctx, product)
	return Result{
		Success:     true,
		Barcode:     reading.Barcode,
		BarcodeType: reading.Type,
		Product:     product,
		Movie:       movie,
	}, nil
}

// lookupProduct queries UPCitemdb. Invalid numbers, lookup failures, and
// empty result sets all read as product-not-found.
func (s *Service) lookupProduct(ctx context.Context, barcode string) *ProductInfo {
	if !barcodeNumber.MatchString(barcode) {
		s.logger.Warn("invalid barcode format", "barcode", barcode)
		return nil
	}

	endpoint, err := url.Parse(s.upcBaseURL + "/lookup")
	if err != nil {
		s.logger.Warn("upc lookup url invalid", "error", err)
		return nil
	}
	params := url.Values{}
	params.Set("upc", barcode)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		s.logger.Warn("upc lookup request build failed", "error", err)
		return nil
	}
	req.Header.Set("User-Agent", "discshelf/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("upc lookup failed", "barcode", barcode, "error", err)
		return nil
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || resp.StatusCode != http.StatusOK {
		s.logger.Warn("upc lookup unavailable", "barcode", barcode, "status", resp.StatusCode)
		return nil
	}

	var decoded struct {
		Items []struct {
			Title       string `json:"title"`
			Brand       string `json:"brand"`
			Description string `json:"description"`
			Category    string `json:"category"`
		} `json:"items"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil || len(decoded.Items) == 0 {
		return nil
	}

	item := decoded.Items[0]
	return &ProductInfo{
		Title:       item.Title,
		Brand:       item.Brand,
		Description: item.Description,
		Category:    item.Category,
		UPC:         barcode,
	}
}

// buildCandidate shapes a product record into a movie candidate. The format
// and edition come off the retail title; TMDB fills in the rest when it
// recognizes the cleaned name.
func (s *Service) buildCandidate(ctx context.Context, product *ProductInfo) *vision.Candidate {
	cleaned := identify.CleanProductTitle(product.Title)

	candidate := &vision.Candidate{
		Title:      cleaned,
		Format:     string(identify.DetectFormat(product.Title)),
		Notes:      identify.ExtractEdition(product.Title),
		Confidence: 1.0,
	}

	meta, err := s.tmdb.SearchMovie(ctx, cleaned, "")
	if err != nil {
		if !services.NeedsSetup(err) {
			s.logger.Debug("tmdb enrichment skipped", "title", cleaned, "error", err)
		}
		return candidate
	}

	if meta.Title != "" {
		candidate.Title = meta.Title
	}
	candidate.Genre = meta.Genre
	candidate.ReleaseDate = meta.ReleaseDate
	candidate.Actors = meta.Actors
	return candidate
}

// ValidateBarcode reports whether a barcode string is a plausible UPC/EAN
// number.
func ValidateBarcode(barcode string) error {
	if !barcodeNumber.MatchString(barcode) {
		return services.Wrap(services.ErrValidation, "barcode", "validate",
			fmt.Sprintf("barcode %q is not an 8-14 digit number", barcode), nil)
	}
	return nil
}
