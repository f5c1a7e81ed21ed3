package services

import (
	"fmt"
	"log"

	"agencyio/internal/domain"
	"agencyio/internal/metrics"
)

// NotificationKind identifies the notification to dispatch for a booking
type NotificationKind string

const (
	KindClientConfirmation NotificationKind = "client_confirmation"
	KindAdminNotification  NotificationKind = "admin_notification"
)

// Mailer sends a plain text email. EmailService satisfies it; tests
// substitute a recorder.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// Notifier dispatches booking notification emails. Delivery is best-effort:
// failures are logged and dropped, never returned to the caller, so a
// booking is never rolled back or failed by its notifications.
type Notifier struct {
	mailer     Mailer
	adminEmail string
	siteURL    string
}

// NewNotifier creates a notifier with explicit addressing configuration
func NewNotifier(mailer Mailer, adminEmail, siteURL string) *Notifier {
	return &Notifier{
		mailer:     mailer,
		adminEmail: adminEmail,
		siteURL:    siteURL,
	}
}

// Notify dispatches one notification for the consultation. Unknown kinds
// are logged and ignored.
func (n *Notifier) Notify(kind NotificationKind, c *domain.Consultation) {
	var err error
	switch kind {
	case KindClientConfirmation:
		err = n.sendClientConfirmation(c)
	case KindAdminNotification:
		err = n.sendAdminNotification(c)
	default:
		log.Printf("[NOTIFY] Unknown notification kind: %s", kind)
		return
	}

	if err != nil {
		log.Printf("[NOTIFY] Warning: failed to send %s for consultation id=%d: %v", kind, c.ID, err)
		metrics.RecordNotification(string(kind), false)
		return
	}
	log.Printf("[NOTIFY] Sent %s for consultation id=%d", kind, c.ID)
	metrics.RecordNotification(string(kind), true)
}

// sendClientConfirmation emails the client their booking details
func (n *Notifier) sendClientConfirmation(c *domain.Consultation) error {
	subject := fmt.Sprintf("Consultation Confirmed - %s", c.PreferredDate)
	body := fmt.Sprintf(`Dear %s,

Thank you for booking a consultation with Agency.io!

Your consultation details:
- Date: %s
- Time: %s %s
- Project Type: %s

We'll send you a meeting link 24 hours before the scheduled time.

If you need to reschedule, please reply to this email.

Best regards,
Agency.io Team
`, c.FullName, c.PreferredDate, c.PreferredTime, c.Timezone, c.ProjectType.Label())

	return n.mailer.SendEmail(c.Email, subject, body)
}

// sendAdminNotification alerts the admin address about a new booking
func (n *Notifier) sendAdminNotification(c *domain.Consultation) error {
	company := "N/A"
	if c.Company != nil && *c.Company != "" {
		company = *c.Company
	}

	subject := fmt.Sprintf("New Consultation Booking - %s", c.FullName)
	body := fmt.Sprintf(`New consultation booking received:

Client: %s
Email: %s
Phone: %s
Company: %s

Project Type: %s
Budget: %s
Timeline: %s

Scheduled: %s at %s %s

Message:
%s

View the booking: %s/consultations/%d
`, c.FullName, c.Email, c.Phone, company,
		c.ProjectType.Label(), c.Budget.Label(), c.Timeline.Label(),
		c.PreferredDate, c.PreferredTime, c.Timezone,
		c.Message,
		n.siteURL, c.ID)

	return n.mailer.SendEmail(n.adminEmail, subject, body)
}
