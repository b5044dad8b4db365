// Package notify renders notification emails and hands them to the email provider.
package notify

import (
	"context"
	"log/slog"
)

// Email is a rendered message ready for delivery.
type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
	// IdempotencyKey lets the provider drop duplicate sends of one job.
	IdempotencyKey string
}

// Mailer delivers emails.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// LogMailer records emails in the log instead of sending them.
// Used when no provider key is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the email and reports success.
func (m *LogMailer) Send(_ context.Context, email Email) error {
	m.logger.Info("email delivery disabled, logging instead",
		"to", email.To,
		"subject", email.Subject)
	return nil
}
