package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"discshelf/internal/config"
	"discshelf/internal/services"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	topBilledActors    = 3
)

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// Metadata is the enrichment payload for a single movie.
type Metadata struct {
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	ReleaseDate string `json:"releaseDate"`
	Actors      string `json:"actors"`
	Overview    string `json:"overview"`
}

// Client provides access to the TMDB API for movie metadata.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a TMDB client from application config.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	client := &Client{
		apiKey:     strings.TrimSpace(cfg.Lookup.TMDBAPIKey),
		baseURL:    strings.TrimRight(cfg.Lookup.TMDBBaseURL, "/"),
		language:   strings.TrimSpace(cfg.Lookup.TMDBLanguage),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Configured reports whether the client holds an API key.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// SearchMovie searches TMDB for the supplied title and returns metadata for
// the best match, including its top billed cast. A non-four-digit year is
// ignored rather than rejected. Returns ErrNotFound when nothing matches.
func (c *Client) SearchMovie(ctx context.Context, title, year string) (*Metadata, error) {
	if !c.Configured() {
		return nil, services.Wrap(services.ErrNotConfigured, "tmdb", "search", "api key missing", nil)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, services.Wrap(services.ErrValidation, "tmdb", "search", "title must not be empty", nil)
	}

	params := url.Values{}
	params.Set("query", title)
	if yearPattern.MatchString(year) {
		params.Set("year", year)
	}

	var search searchResponse
	if err := c.get(ctx, "/search/movie", params, &search); err != nil {
		return nil, err
	}
	if len(search.Results) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "tmdb", "search",
			fmt.Sprintf("no results for %q", title), nil)
	}

	// The first result is TMDB's best match.
	return c.movieDetails(ctx, search.Results[0].ID)
}

// movieDetails fetches full movie metadata with credits appended so the
// cast comes back in one request.
func (c *Client) movieDetails(ctx context.Context, movieID int64) (*Metadata, error) {
	params := url.Values{}
	params.Set("append_to_response", "credits")

	var details detailsResponse
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", movieID), params, &details); err != nil {
		return nil, err
	}

	genres := make([]string, 0, len(details.Genres))
	for _, g := range details.Genres {
		genres = append(genres, g.Name)
	}

	actors := make([]string, 0, topBilledActors)
	for _, member := range details.Credits.Cast {
		actors = append(actors, member.Name)
		if len(actors) == topBilledActors {
			break
		}
	}

	releaseYear := ""
	if len(details.ReleaseDate) >= 4 {
		releaseYear = details.ReleaseDate[:4]
	}

	return &Metadata{
		Title:       details.Title,
		Genre:       strings.Join(genres, ", "),
		ReleaseDate: releaseYear,
		Actors:      strings.Join(actors, ", "),
		Overview:    details.Overview,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return services.Wrap(services.ErrTransient, "tmdb", "request", "parse url", err)
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return services.Wrap(services.ErrTransient, "tmdb", "request", "build request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "tmdb", "request", "execute request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrTransient, "tmdb", "request",
			fmt.Sprintf("unexpected status %d for %s", resp.StatusCode, path), nil)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrTransient, "tmdb", "request", "decode response", err)
	}
	return nil
}

type searchResponse struct {
	Results []struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	} `json:"results"`
}

type detailsResponse struct {
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	Overview    string `json:"overview"`
	Genres      []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Credits struct {
		Cast []struct {
			Name string `json:"name"`
		} `json:"cast"`
	} `json:"credits"`
}
