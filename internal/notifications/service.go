package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mediaorg/internal/config"
)

const userAgent = "mediaorg/0.1.0"

// Event identifies a notification kind.
type Event string

const (
	EventFileImported    Event = "file_imported"
	EventImportCompleted Event = "import_completed"
	EventUploadCompleted Event = "upload_completed"
	EventError           Event = "error"
	EventTest            Event = "test"
)

// Payload carries the values interpolated into a notification.
type Payload map[string]any

// Service publishes notifications.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notify.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notify.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func format(event Event, payload Payload) (message, bool) {
	switch event {
	case EventFileImported:
		body := fmt.Sprintf("📷 Imported: %s", text(payload, "source"))
		if dest := text(payload, "destination"); dest != "" {
			body = fmt.Sprintf("%s\nTo: %s", body, dest)
		}
		return message{
			title: "mediaorg - Imported",
			body:  body,
			tags:  []string{"mediaorg", "import", "file"},
		}, true
	case EventImportCompleted:
		imported := number(payload, "imported")
		failed := number(payload, "failed")
		duration := text(payload, "duration")
		if failed == 0 {
			return message{
				title: "mediaorg - Import Complete",
				body:  fmt.Sprintf("Import complete: %d files imported in %s", imported, duration),
				tags:  []string{"mediaorg", "import", "completed"},
			}, true
		}
		return message{
			title: "mediaorg - Import Complete (with errors)",
			body:  fmt.Sprintf("Import complete: %d imported, %d failed in %s", imported, failed, duration),
			tags:  []string{"mediaorg", "import", "completed"},
		}, true
	case EventUploadCompleted:
		return message{
			title: "mediaorg - Upload Complete",
			body:  fmt.Sprintf("☁️ Uploaded %d files, %d failed", number(payload, "uploaded"), number(payload, "failed")),
			tags:  []string{"mediaorg", "upload", "completed"},
		}, true
	case EventError:
		var b strings.Builder
		b.WriteString("❌ Error")
		if label := text(payload, "context"); label != "" {
			b.WriteString(" with ")
			b.WriteString(label)
		}
		b.WriteString(": ")
		if errText := text(payload, "error"); errText != "" {
			b.WriteString(errText)
		} else {
			b.WriteString("unknown")
		}
		return message{
			title:    "mediaorg - Error",
			body:     b.String(),
			tags:     []string{"mediaorg", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "mediaorg - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"mediaorg", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func text(payload Payload, key string) string {
	value, ok := payload[key]
	if !ok || value == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

func number(payload Payload, key string) int {
	switch v := payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
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

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
