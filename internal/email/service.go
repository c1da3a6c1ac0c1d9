package email

import (
	"context"
	"time"
)

type Service interface {
	SendWelcome(ctx context.Context, to string, name string) error
	SendAppointmentConfirmation(ctx context.Context, to string, name string, when time.Time, durationMinutes int) error
	SendAppointmentCancellation(ctx context.Context, to string, name string, when time.Time) error
}

// Noop satisfies Service when no SMTP server is configured; sends are
// silently dropped.
type Noop struct{}

func (Noop) SendWelcome(context.Context, string, string) error {
	return nil
}

func (Noop) SendAppointmentConfirmation(context.Context, string, string, time.Time, int) error {
	return nil
}

func (Noop) SendAppointmentCancellation(context.Context, string, string, time.Time) error {
	return nil
}
