package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Service sends transactional mail. Failures are the caller's to log;
// they never fail a workflow.
type Service interface {
	SendBookingConfirmation(ctx context.Context, to, patientName, doctorName, slotDate, slotTime string) error
	SendCancellationNotice(ctx context.Context, to, patientName, doctorName, slotDate, slotTime string) error
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg Config) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendBookingConfirmation(_ context.Context, to, patientName, doctorName, slotDate, slotTime string) error {
	subject := "Appointment confirmed"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour appointment with %s on %s at %s is confirmed.\n",
		patientName, doctorName, slotDate, slotTime,
	)
	return s.send(to, subject, body)
}

func (s *smtpService) SendCancellationNotice(_ context.Context, to, patientName, doctorName, slotDate, slotTime string) error {
	subject := "Appointment cancelled"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour appointment with %s on %s at %s has been cancelled.\n",
		patientName, doctorName, slotDate, slotTime,
	)
	return s.send(to, subject, body)
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type noopService struct{}

// NewNoopService returns a Service that drops all mail, for
// deployments without SMTP credentials.
func NewNoopService() Service {
	return noopService{}
}

func (noopService) SendBookingConfirmation(context.Context, string, string, string, string, string) error {
	return nil
}

func (noopService) SendCancellationNotice(context.Context, string, string, string, string, string) error {
	return nil
}
