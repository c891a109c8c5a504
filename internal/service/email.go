package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mariaangelps/490-The-Team/internal/mailer"
)

// Enqueuer accepts a message for asynchronous delivery.
type Enqueuer interface {
	Enqueue(msg mailer.Message) error
}

type EmailService struct {
	queue     Enqueuer
	templates *emailTemplates
	clientURL string
	appName   string
}

func NewEmailService(queue Enqueuer, clientURL, appName string) *EmailService {
	return &EmailService{
		queue:     queue,
		templates: newEmailTemplates(),
		clientURL: clientURL,
		appName:   appName,
	}
}

// ResetURL is the client page that completes a password reset.
func (s *EmailService) ResetURL(rawToken string) string {
	return fmt.Sprintf("%s/reset?token=%s", s.clientURL, rawToken)
}

func (s *EmailService) SendPasswordReset(email, rawToken string, ttl time.Duration) error {
	return s.send("password_reset", email, emailData{
		URL:        s.ResetURL(rawToken),
		TTLMinutes: int(ttl.Minutes()),
	})
}

func (s *EmailService) SendWelcome(email, name string) error {
	return s.send("welcome", email, emailData{
		Name: name,
		URL:  fmt.Sprintf("%s/dashboard", s.clientURL),
	})
}

func (s *EmailService) SendAccountDeleted(email, name string) error {
	return s.send("account_deleted", email, emailData{Name: name})
}

func (s *EmailService) send(kind, to string, data emailData) error {
	data.AppName = s.appName
	rendered, err := s.templates.render(kind, data)
	if err != nil {
		slog.Error("failed to render email", "type", kind, "error", err)
		return err
	}

	err = s.queue.Enqueue(mailer.Message{
		To:      to,
		Subject: rendered.Subject,
		Text:    rendered.Text,
		HTML:    rendered.HTML,
		Kind:    kind,
	})
	if err != nil {
		slog.Warn("email not queued", "type", kind, "to", to, "error", err)
		return err
	}
	slog.Debug("email queued", "type", kind, "to", to)
	return nil
}
