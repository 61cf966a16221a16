package delivery

import (
	"context"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v3"

	"github.com/alexroessner/newsfeed/internal/models"
)

// emailService is the subset of resend.Client.Emails this package calls,
// narrowed so tests can substitute a stub instead of hitting the real API.
type emailService interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// EmailSender renders a DeliveryPayload as an HTML email and sends it
// through the transactional mail provider.
type EmailSender struct {
	svc       emailService
	fromEmail string
}

// NewEmailSender builds an EmailSender backed by the Resend API.
func NewEmailSender(apiKey, fromEmail string) *EmailSender {
	client := resend.NewClient(apiKey)
	return &EmailSender{svc: client.Emails, fromEmail: fromEmail}
}

// Deliver renders payload and sends it to toEmail.
func (s *EmailSender) Deliver(ctx context.Context, toEmail string, payload models.DeliveryPayload) error {
	subject := emailSubject(payload)
	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{toEmail},
		Subject: subject,
		Html:    renderBriefingHTML(subject, payload),
		Text:    renderBriefingText(subject, payload),
	}

	if _, err := s.svc.Send(params); err != nil {
		return fmt.Errorf("send briefing email to %s: %w", toEmail, err)
	}
	return nil
}

func emailSubject(payload models.DeliveryPayload) string {
	if len(payload.Items) == 0 {
		return "Your briefing: no new items"
	}
	return fmt.Sprintf("Your briefing: %d items (%s)", len(payload.Items), payload.BriefingType)
}

func renderBriefingHTML(subject string, payload models.DeliveryPayload) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><body style=\"font-family: -apple-system, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;\">")
	fmt.Fprintf(&b, "<h1 style=\"color: #333;\">%s</h1>", subject)
	for _, item := range payload.Items {
		fmt.Fprintf(&b, `<div style="margin-bottom: 24px; padding-bottom: 16px; border-bottom: 1px solid #eee;">
  <h2 style="font-size: 16px;"><a href="%s">%s</a></h2>
  <p style="color: #555;">%s</p>
  <p style="color: #888; font-size: 13px;">%s</p>
</div>`, item.Candidate.URL, item.Candidate.Title, item.WhyItMatters, item.Candidate.Source)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func renderBriefingText(subject string, payload models.DeliveryPayload) string {
	var b strings.Builder
	b.WriteString(subject + "\n\n")
	for _, item := range payload.Items {
		fmt.Fprintf(&b, "- %s (%s)\n  %s\n  %s\n\n", item.Candidate.Title, item.Candidate.Source, item.WhyItMatters, item.Candidate.URL)
	}
	return b.String()
}
