// Path: internal/report/mailer.go
package report

import (
	"context"
	"fmt"

	"gh-trending/internal/config"
	"gh-trending/internal/domain"
	"gh-trending/internal/events"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Mailer delivers rendered trend reports through the Resend API.
type Mailer struct {
	client *resend.Client
	cfg    config.ReportConfig
	log    *zap.SugaredLogger
}

// NewMailer creates a new mail sender. Returns nil when email delivery is
// not configured (missing API key or recipient), which callers treat as
// "email disabled".
func NewMailer(cfg config.ReportConfig, log *zap.SugaredLogger) *Mailer {
	if cfg.ResendAPIKey == "" || cfg.To == "" {
		return nil
	}
	return &Mailer{
		client: resend.NewClient(cfg.ResendAPIKey),
		cfg:    cfg,
		log:    log,
	}
}

// Send renders and delivers one report.
func (m *Mailer) Send(ctx context.Context, report *domain.TrendReport) error {
	html, err := RenderEmail(report, m.cfg.SiteTitle)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    m.cfg.From,
		To:      []string{m.cfg.To},
		Subject: fmt.Sprintf("%s - %s", m.cfg.SiteTitle, report.Date),
		Html:    html,
	}
	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}
	m.log.Infow("report email sent", "id", sent.Id, "date", report.Date)
	return nil
}

// Listen consumes report-ready events until the context is cancelled.
// Delivery failures are logged, never fatal: the report is already durably
// derivable from the store.
func (m *Mailer) Listen(ctx context.Context, ch <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			report, ok := event.Data.(*domain.TrendReport)
			if !ok {
				continue
			}
			if err := m.Send(ctx, report); err != nil {
				m.log.Errorw("failed to deliver report email", "date", report.Date, "error", err)
			}
		}
	}
}
