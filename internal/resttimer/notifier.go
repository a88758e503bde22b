package resttimer

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// NopNotifier discards all publications. Used when no external presentation
// surface is configured.
type NopNotifier struct{}

func (NopNotifier) Publish(time.Time) {}
func (NopNotifier) Clear()            {}

// WebhookNotifier pushes the countdown end instant to an external
// presentation surface over HTTP. The receiver derives its own remaining
// display from the instant; a null end_time means stop rendering now.
type WebhookNotifier struct {
	url    string
	client *http.Client
	log    *slog.Logger
}

// NewWebhookNotifier creates a notifier posting to the given URL.
func NewWebhookNotifier(url string, log *slog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log,
	}
}

func (n *WebhookNotifier) Publish(endTime time.Time) {
	n.post(map[string]any{"end_time": endTime.Format(time.RFC3339Nano)})
}

func (n *WebhookNotifier) Clear() {
	n.post(map[string]any{"end_time": nil})
}

// post fires and forgets; presentation failures never affect the engine.
func (n *WebhookNotifier) post(payload map[string]any) {
	body, err := json.Marshal(payload)
	if err != nil {
		n.log.Error("encoding timer notification", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		n.log.Error("creating timer notification request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Warn("timer notification failed", "error", err)
		return
	}
	resp.Body.Close()
}
