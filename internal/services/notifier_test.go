package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agencyio/internal/domain"
)

func testConsultation() *domain.Consultation {
	company := "Test Company"
	return &domain.Consultation{
		ID:            42,
		FullName:      "Test User",
		Email:         "test@example.com",
		Phone:         "+1234567890",
		Company:       &company,
		ProjectType:   domain.ProjectWebDevelopment,
		Budget:        domain.Budget10kTo25k,
		Timeline:      domain.TimelineOneToThree,
		PreferredDate: "2026-09-15",
		PreferredTime: "10:00",
		Timezone:      "IST",
		Message:       "Looking for a new marketing site",
		Status:        domain.StatusPending,
	}
}

func TestClientConfirmationContent(t *testing.T) {
	mailer := &fakeMailer{}
	n := NewNotifier(mailer, "admin@agency.io", "http://localhost:8000")

	n.Notify(KindClientConfirmation, testConsultation())

	require.Len(t, mailer.sent, 1)
	mail := mailer.sent[0]
	assert.Equal(t, "test@example.com", mail.To)
	assert.Equal(t, "Consultation Confirmed - 2026-09-15", mail.Subject)
	assert.Contains(t, mail.Body, "Dear Test User,")
	assert.Contains(t, mail.Body, "- Date: 2026-09-15")
	assert.Contains(t, mail.Body, "- Time: 10:00 IST")
	assert.Contains(t, mail.Body, "- Project Type: Web Development")
	assert.Contains(t, mail.Body, "Agency.io Team")
}

func TestAdminNotificationContent(t *testing.T) {
	mailer := &fakeMailer{}
	n := NewNotifier(mailer, "admin@agency.io", "http://localhost:8000")

	n.Notify(KindAdminNotification, testConsultation())

	require.Len(t, mailer.sent, 1)
	mail := mailer.sent[0]
	assert.Equal(t, "admin@agency.io", mail.To)
	assert.Equal(t, "New Consultation Booking - Test User", mail.Subject)
	assert.Contains(t, mail.Body, "Client: Test User")
	assert.Contains(t, mail.Body, "Company: Test Company")
	assert.Contains(t, mail.Body, "Budget: $10,000 - $25,000")
	assert.Contains(t, mail.Body, "Scheduled: 2026-09-15 at 10:00 IST")
	assert.Contains(t, mail.Body, "View the booking: http://localhost:8000/consultations/42")
}

func TestAdminNotificationWithoutCompany(t *testing.T) {
	mailer := &fakeMailer{}
	n := NewNotifier(mailer, "admin@agency.io", "http://localhost:8000")

	c := testConsultation()
	c.Company = nil
	n.Notify(KindAdminNotification, c)

	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].Body, "Company: N/A")
}

func TestNotifyDropsMailerFailure(t *testing.T) {
	mailer := &fakeMailer{fail: true}
	n := NewNotifier(mailer, "admin@agency.io", "http://localhost:8000")

	// must not panic or surface the error
	n.Notify(KindClientConfirmation, testConsultation())
	n.Notify(KindAdminNotification, testConsultation())
	assert.Empty(t, mailer.sent)
}
