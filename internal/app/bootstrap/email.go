package bootstrap

import (
	"strings"

	appconfig "github.com/wolfman30/lifecoach-booking/internal/config"
	"github.com/wolfman30/lifecoach-booking/internal/notify"
	"github.com/wolfman30/lifecoach-booking/internal/observability/metrics"
	"github.com/wolfman30/lifecoach-booking/pkg/logging"
)

// Supported EMAIL_PROVIDER values.
const (
	EmailProviderAuto     = "auto"
	EmailProviderResend   = "resend"
	EmailProviderSendGrid = "sendgrid"
	EmailProviderSES      = "ses"
	EmailProviderStub     = "stub"
)

// BuildEmailSender picks the email provider. "auto" prefers Resend, then
// SendGrid, and falls back to the logging stub; SES is only used when asked
// for explicitly and ses is non-nil. It returns the sender, the provider
// name and, when it had to fall back, the reason.
func BuildEmailSender(cfg *appconfig.Config, ses notify.SESAPI, logger *logging.Logger) (notify.EmailSender, string, string) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		return notify.NewStubEmailSender(logger), EmailProviderStub, "missing config"
	}

	resendSender := func() notify.EmailSender {
		if s := notify.NewResendSender(notify.ResendConfig{
			APIKey:    cfg.ResendAPIKey,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger); s != nil {
			return s
		}
		return nil
	}
	sendGridSender := func() notify.EmailSender {
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger); s != nil {
			return s
		}
		return nil
	}

	preference := strings.ToLower(strings.TrimSpace(cfg.EmailProvider))
	switch preference {
	case EmailProviderResend:
		if s := resendSender(); s != nil {
			return s, EmailProviderResend, ""
		}
		return notify.NewStubEmailSender(logger), EmailProviderStub, "RESEND_API_KEY not set"
	case EmailProviderSendGrid:
		if s := sendGridSender(); s != nil {
			return s, EmailProviderSendGrid, ""
		}
		return notify.NewStubEmailSender(logger), EmailProviderStub, "SENDGRID_API_KEY not set"
	case EmailProviderSES:
		if s := notify.NewSESSender(ses, notify.SESConfig{
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger); s != nil {
			return s, EmailProviderSES, ""
		}
		return notify.NewStubEmailSender(logger), EmailProviderStub, "SES client unavailable"
	case EmailProviderStub:
		return notify.NewStubEmailSender(logger), EmailProviderStub, ""
	case "", EmailProviderAuto:
		if s := resendSender(); s != nil {
			return s, EmailProviderResend, ""
		}
		if s := sendGridSender(); s != nil {
			return s, EmailProviderSendGrid, ""
		}
		return notify.NewStubEmailSender(logger), EmailProviderStub, "no email provider configured"
	default:
		return notify.NewStubEmailSender(logger), EmailProviderStub, "unknown email provider " + preference
	}
}

// BuildNotifier wires the booking notifier around sender.
func BuildNotifier(cfg *appconfig.Config, sender notify.EmailSender, m *metrics.BookingMetrics, logger *logging.Logger) *notify.BookingNotifier {
	nc := notify.BookingNotifierConfig{}
	if cfg != nil {
		nc.CoachEmail = cfg.CoachEmail
		nc.Brand = cfg.EmailFromName
		nc.Timeout = cfg.EmailTimeout
	}
	if nc.CoachEmail == "" {
		if logger == nil {
			logger = logging.Default()
		}
		logger.Warn("COACH_EMAIL not set; coach notifications disabled")
	}
	return notify.NewBookingNotifier(sender, nc, m, logger)
}
