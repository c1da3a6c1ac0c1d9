package email

import (
	"context"
	"fmt"
	"time"

	gomail "gopkg.in/gomail.v2"

	"github.com/dentika/clinic-api/internal/config"
)

// Mailer sends plain-text clinic notices over SMTP. Sends are
// best-effort: callers log failures and move on rather than failing
// the request that triggered the notice.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *Mailer) SendWelcome(_ context.Context, to, name string) error {
	body := fmt.Sprintf(
		"Hello %s,\n\nYour account has been created. "+
			"You can now book appointments and follow your treatments online.\n\n"+
			"See you at the clinic!\n",
		name,
	)
	return m.send(to, "Welcome to the clinic", body)
}

func (m *Mailer) SendAppointmentConfirmation(_ context.Context, to, name string, when time.Time, durationMinutes int) error {
	body := fmt.Sprintf(
		"Hello %s,\n\nYour appointment is confirmed for %s (%d minutes).\n\n"+
			"If you need to reschedule, please contact the clinic.\n",
		name,
		when.Format("Monday, 2 January 2006 at 15:04"),
		durationMinutes,
	)
	return m.send(to, "Appointment confirmed", body)
}

func (m *Mailer) SendAppointmentCancellation(_ context.Context, to, name string, when time.Time) error {
	body := fmt.Sprintf(
		"Hello %s,\n\nYour appointment on %s has been cancelled.\n\n"+
			"Please contact the clinic to book a new one.\n",
		name,
		when.Format("Monday, 2 January 2006 at 15:04"),
	)
	return m.send(to, "Appointment cancelled", body)
}

func (m *Mailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send %q to %s: %w", subject, to, err)
	}
	return nil
}
