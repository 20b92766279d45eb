package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"discshelf/internal/config"
	"discshelf/internal/services"
)

const (
	apiVersion         = "2023-06-01"
	defaultHTTPTimeout = 60 * time.Second
	identifyMaxTokens  = 4096
	barcodeMaxTokens   = 1024
)

// Candidate is a single movie detection from a photo. Barcode lookups and
// CSV rows are mapped onto the same shape before reconciliation.
type Candidate struct {
	Title       string  `json:"title"`
	Format      string  `json:"format"`
	Notes       string  `json:"notes"`
	Genre       string  `json:"genre"`
	ReleaseDate string  `json:"releaseDate"`
	Actors      string  `json:"actors"`
	Confidence  float64 `json:"confidence"`
}

// Client wraps the Claude messages API for photo analysis.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option customizes the vision client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a vision client from application config.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	timeout := time.Duration(cfg.Vision.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	client := &Client{
		apiKey:     strings.TrimSpace(cfg.Vision.APIKey),
		baseURL:    strings.TrimRight(cfg.Vision.BaseURL, "/"),
		model:      cfg.Vision.Model,
		httpClient: &http.Client{Timeout: timeout},
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

// IdentifyMovies analyzes a photo of disc cases and returns candidate
// records. An image without recognizable cases yields an empty slice.
func (c *Client) IdentifyMovies(ctx context.Context, imagePath string) ([]Candidate, error) {
	text, err := c.analyze(ctx, "identify", imagePath, shelfPrompt, identifyMaxTokens)
	if err != nil {
		return nil, err
	}
	return parseCandidates(text), nil
}

// BarcodeReading is the raw result of reading a barcode photo.
type BarcodeReading struct {
	Barcode string `json:"barcode"`
	Type    string `json:"type"`
	Error   string `json:"error"`
}

// ExtractBarcode reads a UPC/EAN/ISBN number out of a product photo.
func (c *Client) ExtractBarcode(ctx context.Context, imagePath string) (BarcodeReading, error) {
	text, err := c.analyze(ctx, "barcode", imagePath, barcodePrompt, barcodeMaxTokens)
	if err != nil {
		return BarcodeReading{}, err
	}
	return parseBarcode(text), nil
}

func (c *Client) analyze(ctx context.Context, operation, imagePath, prompt string, maxTokens int) (string, error) {
	if !c.Configured() {
		return "", services.Wrap(services.ErrNotConfigured, "vision", operation, "api key missing", nil)
	}

	image, err := os.ReadFile(imagePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", services.Wrap(services.ErrValidation, "vision", operation,
				fmt.Sprintf("image file not found: %s", imagePath), nil)
		}
		return "", services.Wrap(services.ErrValidation, "vision", operation, "read image", err)
	}

	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				{
					Type: "image",
					Source: &imageSource{
						Type:      "base64",
						MediaType: mediaType(imagePath),
						Data:      base64.StdEncoding.EncodeToString(image),
					},
				},
				{Type: "text", Text: prompt},
			},
		}},
	})
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "vision", operation, "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "vision", operation, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "vision", operation, "request failed", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "vision", operation, "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrTransient, "vision", operation,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var decoded messagesResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", services.Wrap(services.ErrTransient, "vision", operation, "decode response", err)
	}
	for _, block := range decoded.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}

func mediaType(imagePath string) string {
	switch strings.ToLower(filepath.Ext(imagePath)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}
