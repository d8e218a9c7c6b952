package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/wolfman30/lifecoach-booking/internal/bookings"
	"github.com/wolfman30/lifecoach-booking/internal/observability/metrics"
	"github.com/wolfman30/lifecoach-booking/pkg/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

var emailTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	defaultBrand           = "Life Coach"
	defaultWhatsAppURL     = "https://wa.me/33769941881"
	defaultWhatsAppDisplay = "+33 7 69 94 18 81"
	defaultEmailTimeout    = 10 * time.Second

	recipientClient = "client"
	recipientCoach  = "coach"
)

// BookingNotifierConfig configures the confirmation emails.
type BookingNotifierConfig struct {
	CoachEmail      string
	Brand           string
	CoachSignature  string
	WhatsAppURL     string
	WhatsAppDisplay string
	// Timeout bounds each individual send.
	Timeout time.Duration
}

// BookingNotifier sends the client confirmation and the coach notification
// for a newly created booking.
type BookingNotifier struct {
	sender  EmailSender
	cfg     BookingNotifierConfig
	metrics *metrics.BookingMetrics
	logger  *logging.Logger
}

// NewBookingNotifier wires an EmailSender into a booking notifier.
func NewBookingNotifier(sender EmailSender, cfg BookingNotifierConfig, m *metrics.BookingMetrics, logger *logging.Logger) *BookingNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Brand == "" {
		cfg.Brand = defaultBrand
	}
	if cfg.CoachSignature == "" {
		cfg.CoachSignature = cfg.Brand
	}
	if cfg.WhatsAppURL == "" {
		cfg.WhatsAppURL = defaultWhatsAppURL
	}
	if cfg.WhatsAppDisplay == "" {
		cfg.WhatsAppDisplay = defaultWhatsAppDisplay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultEmailTimeout
	}
	return &BookingNotifier{sender: sender, cfg: cfg, metrics: m, logger: logger}
}

// NotifyBooking emails the client first, then the coach. A client failure
// stops before the coach email is attempted.
func (n *BookingNotifier) NotifyBooking(ctx context.Context, b *bookings.Booking) error {
	if n == nil || n.sender == nil {
		return fmt.Errorf("notify: email sender not configured")
	}
	if b == nil {
		return fmt.Errorf("notify: booking required")
	}

	clientMsg, err := n.clientMessage(b)
	if err != nil {
		return err
	}
	if err := n.send(ctx, recipientClient, clientMsg); err != nil {
		return fmt.Errorf("notify: client confirmation for %s: %w", b.ID, err)
	}

	if n.cfg.CoachEmail == "" {
		n.logger.Warn("coach email not configured, skipping notification", "booking_id", b.ID)
		return nil
	}
	coachMsg, err := n.coachMessage(b)
	if err != nil {
		return err
	}
	if err := n.send(ctx, recipientCoach, coachMsg); err != nil {
		return fmt.Errorf("notify: coach notification for %s: %w", b.ID, err)
	}
	return nil
}

func (n *BookingNotifier) send(ctx context.Context, recipient string, msg EmailMessage) error {
	sendCtx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	start := time.Now()
	err := n.sender.Send(sendCtx, msg)
	n.metrics.ObserveEmail(recipient, err == nil, time.Since(start).Seconds())
	if err != nil {
		n.logger.Error("booking email failed", "recipient", recipient, "to", msg.To, "error", err)
	}
	return err
}

type clientEmailData struct {
	Brand            string
	CoachSignature   string
	FirstName        string
	Date             string
	Time             string
	Duration         string
	Location         string
	Address          string
	Objective        string
	ObjectiveDetails string
	Level            string
	Price            int
	WhatsAppURL      string
	WhatsAppDisplay  string
}

type coachEmailData struct {
	BookingID        string
	FullName         string
	Email            string
	Phone            string
	Age              string
	Gender           string
	Height           string
	Weight           string
	Date             string
	Time             string
	Location         string
	Address          string
	Objective        string
	ObjectiveDetails string
	Level            string
	HealthIssues     string
}

// ClientSubject is the subject line of the client confirmation.
func ClientSubject(b *bookings.Booking) string {
	return fmt.Sprintf("Confirmation de ta séance - %s à %s", formatSelectedDate(b.SelectedDate), b.SelectedTime)
}

// CoachSubject is the subject line of the coach notification.
func CoachSubject(b *bookings.Booking) string {
	return fmt.Sprintf("Nouvelle réservation - %s %s - %s", b.FirstName, b.LastName, formatSelectedDate(b.SelectedDate))
}

func (n *BookingNotifier) clientMessage(b *bookings.Booking) (EmailMessage, error) {
	data := clientEmailData{
		Brand:            n.cfg.Brand,
		CoachSignature:   n.cfg.CoachSignature,
		FirstName:        b.FirstName,
		Date:             formatSelectedDate(b.SelectedDate),
		Time:             b.SelectedTime,
		Duration:         formatDuration(bookings.SessionDuration),
		Location:         b.Location.Label(),
		Address:          b.Address,
		Objective:        b.Objective.Label(),
		ObjectiveDetails: b.ObjectiveDetails,
		Level:            b.FitnessLevel.Label(),
		Price:            bookings.SessionPriceEUR,
		WhatsAppURL:      n.cfg.WhatsAppURL,
		WhatsAppDisplay:  n.cfg.WhatsAppDisplay,
	}
	html, err := render("client_confirmation.html", data)
	if err != nil {
		return EmailMessage{}, err
	}
	return EmailMessage{
		To:      b.Email,
		ToName:  b.FullName(),
		Subject: ClientSubject(b),
		Body:    clientText(data),
		HTML:    html,
	}, nil
}

func (n *BookingNotifier) coachMessage(b *bookings.Booking) (EmailMessage, error) {
	data := coachEmailData{
		BookingID:        b.ID,
		FullName:         b.FullName(),
		Email:            b.Email,
		Phone:            b.Phone,
		Age:              b.Age.String(),
		Gender:           b.Gender.Label(),
		Height:           b.Height.String(),
		Weight:           b.Weight.String(),
		Date:             formatSelectedDate(b.SelectedDate),
		Time:             b.SelectedTime,
		Location:         b.Location.Label(),
		Address:          b.Address,
		Objective:        b.Objective.Label(),
		ObjectiveDetails: b.ObjectiveDetails,
		Level:            b.FitnessLevel.Label(),
		HealthIssues:     b.HealthIssues,
	}
	html, err := render("coach_notification.html", data)
	if err != nil {
		return EmailMessage{}, err
	}
	return EmailMessage{
		To:      n.cfg.CoachEmail,
		Subject: CoachSubject(b),
		Body:    coachText(data),
		HTML:    html,
	}, nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("notify: render %s: %w", name, err)
	}
	return buf.String(), nil
}

func clientText(d clientEmailData) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Bonjour %s,\n\n", d.FirstName)
	sb.WriteString("Ta séance de coaching sportif est confirmée !\n\n")
	fmt.Fprintf(&sb, "Date : %s\nHeure : %s\nDurée : %s\nLieu : %s\n", d.Date, d.Time, d.Duration, d.Location)
	if d.Address != "" {
		fmt.Fprintf(&sb, "Adresse : %s\n", d.Address)
	}
	fmt.Fprintf(&sb, "\nObjectif : %s\n", d.Objective)
	if d.ObjectiveDetails != "" {
		fmt.Fprintf(&sb, "%s\n", d.ObjectiveDetails)
	}
	fmt.Fprintf(&sb, "Niveau : %s\n\nTarif : %d€, paiement sur place.\n\n", d.Level, d.Price)
	fmt.Fprintf(&sb, "WhatsApp : %s (%s)\n", d.WhatsAppDisplay, d.WhatsAppURL)
	sb.WriteString("Merci de prévenir au moins 24h à l'avance en cas d'empêchement.\n\n")
	fmt.Fprintf(&sb, "À très bientôt !\n%s\n", d.CoachSignature)
	return sb.String()
}

func coachText(d coachEmailData) string {
	var sb strings.Builder
	sb.WriteString("Nouvelle réservation\n\n")
	fmt.Fprintf(&sb, "Nom : %s\nEmail : %s\nTéléphone : %s\nÂge : %s ans\n", d.FullName, d.Email, d.Phone, d.Age)
	if d.Gender != "" {
		fmt.Fprintf(&sb, "Sexe : %s\n", d.Gender)
	}
	if d.Height != "" {
		fmt.Fprintf(&sb, "Taille : %s cm\n", d.Height)
	}
	if d.Weight != "" {
		fmt.Fprintf(&sb, "Poids : %s kg\n", d.Weight)
	}
	fmt.Fprintf(&sb, "\nDate : %s\nHeure : %s\nLieu : %s\n", d.Date, d.Time, d.Location)
	if d.Address != "" {
		fmt.Fprintf(&sb, "Adresse : %s\n", d.Address)
	}
	fmt.Fprintf(&sb, "\nObjectif : %s\n", d.Objective)
	if d.ObjectiveDetails != "" {
		fmt.Fprintf(&sb, "Détails : %s\n", d.ObjectiveDetails)
	}
	fmt.Fprintf(&sb, "Niveau : %s\n", d.Level)
	if d.HealthIssues != "" {
		fmt.Fprintf(&sb, "Santé/Blessures : %s\n", d.HealthIssues)
	}
	fmt.Fprintf(&sb, "\nID Réservation : %s\n", d.BookingID)
	return sb.String()
}

var _ bookings.Notifier = (*BookingNotifier)(nil)
