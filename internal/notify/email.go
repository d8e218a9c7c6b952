package notify

import (
	"context"

	"github.com/wolfman30/lifecoach-booking/pkg/logging"
)

const defaultFromName = "Life Coach"

// EmailSender delivers a single message. Resend, SendGrid, SES and the stub
// sender all satisfy it, so the booking notifier never knows which is wired.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is one outgoing email. Body is the plain-text part; HTML is
// sent alongside it when set.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string
	HTML    string
}

// StubEmailSender only logs. It is selected when no provider is configured
// so bookings still succeed in local development.
type StubEmailSender struct {
	logger *logging.Logger
}

func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

func (s *StubEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info("email not sent (stub provider)", "to", msg.To, "subject", msg.Subject, "html", msg.HTML != "")
	return nil
}

var _ EmailSender = (*StubEmailSender)(nil)
