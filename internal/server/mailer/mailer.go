// Package mailer defines the outbound-email collaborator. This service only
// produces verification token strings; embedding them in a link and
// delivering the message is the mailer's job.
package mailer

import (
	"context"

	"contactsvc/internal/logging"
)

// Mailer delivers an email-verification token to the given address.
type Mailer interface {
	SendVerification(ctx context.Context, email, username, token string) error
}

// LogMailer is a development stand-in that records the verification token in
// the log instead of delivering mail.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(l logging.Logger) *LogMailer {
	return &LogMailer{logger: l.With("module", "mailer")}
}

func (m *LogMailer) SendVerification(ctx context.Context, email, username, token string) error {
	m.logger.Info(ctx, "verification mail", "email", email, "username", username, "token", token)
	return nil
}
