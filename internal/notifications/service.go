package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"discshelf/internal/config"
)

const userAgent = "discshelf/1.0"

// Service defines the notification surface exposed to the import pipeline.
type Service interface {
	NotifyImportCompleted(ctx context.Context, fileName string, added, skipped int) error
	NotifyNoMoviesFound(ctx context.Context, fileName string) error
	NotifyImportFailed(ctx context.Context, fileName string, cause error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyImportCompleted(ctx context.Context, fileName string, added, skipped int) error {
	fileName = strings.TrimSpace(fileName)
	message := fmt.Sprintf("Imported %d movies from %s", added, fileName)
	if skipped > 0 {
		message = fmt.Sprintf("%s (%d duplicates skipped)", message, skipped)
	}
	data := payload{
		title:   "Discshelf - Import Complete",
		message: message,
		tags:    []string{"discshelf", "import", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyNoMoviesFound(ctx context.Context, fileName string) error {
	fileName = strings.TrimSpace(fileName)
	data := payload{
		title:   "Discshelf - No Movies Found",
		message: fmt.Sprintf("No movie cases recognized in %s", fileName),
		tags:    []string{"discshelf", "import", "empty"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyImportFailed(ctx context.Context, fileName string, cause error) error {
	var builder strings.Builder
	builder.WriteString("Import failed")
	if fileName = strings.TrimSpace(fileName); fileName != "" {
		builder.WriteString(" for ")
		builder.WriteString(fileName)
	}
	builder.WriteString(": ")
	if cause != nil {
		builder.WriteString(strings.TrimSpace(cause.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Discshelf - Import Error",
		message:  builder.String(),
		tags:     []string{"discshelf", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Discshelf - Test",
		message:  "Notification system test",
		tags:     []string{"discshelf", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyImportCompleted(context.Context, string, int, int) error { return nil }
func (noopService) NotifyNoMoviesFound(context.Context, string) error             { return nil }
func (noopService) NotifyImportFailed(context.Context, string, error) error       { return nil }
func (noopService) TestNotification(context.Context) error                        { return nil }
