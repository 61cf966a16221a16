// Package delivery sends a finished briefing to wherever the user's
// profile says it should go: a webhook endpoint they control, or an
// email address via the briefing service's transactional mail provider.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/alexroessner/newsfeed/internal/briefing/enrichment"
	"github.com/alexroessner/newsfeed/internal/models"
)

// WebhookSender posts a DeliveryPayload as JSON to a user-configured URL.
// It reuses the enrichment package's SSRF-safe dialer, since a webhook URL
// is just as untrusted as an RSS-sourced article link.
type WebhookSender struct {
	client *http.Client
}

// NewWebhookSender builds a WebhookSender whose client refuses to dial
// private or loopback addresses.
func NewWebhookSender(timeout time.Duration) *WebhookSender {
	transport := &http.Transport{DialContext: enrichment.SafeDialContext(timeout)}
	return &WebhookSender{client: &http.Client{Timeout: timeout, Transport: transport}}
}

// Deliver POSTs payload to webhookURL as JSON. A non-2xx response is
// returned as an error so the caller can log or retry.
func (s *WebhookSender) Deliver(ctx context.Context, webhookURL string, payload models.DeliveryPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal delivery payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "newsfeed-briefing-delivery/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery to %s: %w", webhookURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s returned status %d", webhookURL, resp.StatusCode)
	}
	return nil
}
