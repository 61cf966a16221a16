package delivery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alexroessner/newsfeed/internal/models"
)

// Dispatcher chooses a delivery channel from the user's profile and sends
// the finished briefing. Webhook takes priority over email when a profile
// configures both, since a webhook implies an automated consumer that
// should not also get a duplicate email.
type Dispatcher struct {
	webhook *WebhookSender
	email   *EmailSender
	log     *slog.Logger
}

// NewDispatcher builds a Dispatcher. Either sender may be nil, in which
// case deliveries requiring it are skipped.
func NewDispatcher(webhook *WebhookSender, email *EmailSender, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{webhook: webhook, email: email, log: logger}
}

// Deliver sends payload to profile's configured channel, if any. It never
// returns an error to the caller: delivery failures are logged, not
// propagated, since a failed push must not fail the briefing request that
// already succeeded.
func (d *Dispatcher) Deliver(ctx context.Context, profile *models.UserProfile, payload models.DeliveryPayload) {
	switch {
	case profile.WebhookURL != "" && d.webhook != nil:
		if err := d.webhook.Deliver(ctx, profile.WebhookURL, payload); err != nil {
			d.log.Warn("webhook delivery failed", "user_id", profile.UserID, "error", err)
		}
	case profile.Email != "" && d.email != nil:
		if err := d.email.Deliver(ctx, profile.Email, payload); err != nil {
			d.log.Warn("email delivery failed", "user_id", profile.UserID, "error", err)
		}
	default:
		d.log.Debug("no delivery channel configured", "user_id", profile.UserID, "hint", fmt.Sprintf("%d items undelivered", len(payload.Items)))
	}
}
