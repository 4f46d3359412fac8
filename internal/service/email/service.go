package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v3"

	"crm-engagement/internal/config"
	"crm-engagement/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var notificationTmpl = template.Must(template.ParseFS(templateFS, "templates/notification.html"))

type Service interface {
	SendNotificationEmail(ctx context.Context, to domain.Recipient, notif domain.Notification) error
}

// Sender is the part of the Resend client the service calls.
type Sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type service struct {
	sender    Sender
	fromEmail string
	fromName  string
}

func NewService(cfg *config.Config) Service {
	client := resend.NewClient(cfg.ResendAPIKey)
	return NewServiceWithSender(client.Emails, cfg.FromEmail, cfg.FromName)
}

func NewServiceWithSender(sender Sender, fromEmail, fromName string) Service {
	return &service{sender: sender, fromEmail: fromEmail, fromName: fromName}
}

func (s *service) SendNotificationEmail(ctx context.Context, to domain.Recipient, notif domain.Notification) error {
	if to.Email == "" {
		return fmt.Errorf("recipient %s has no email address", to.ID)
	}

	color := "#2563eb"
	if notif.Type.IsInactivity() {
		color = "#d97706"
	}

	data := struct {
		Title   string
		Name    string
		Message string
		Color   string
	}{
		Title:   notif.Title,
		Name:    to.FullName,
		Message: notif.Message,
		Color:   color,
	}

	var body bytes.Buffer
	if err := notificationTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail),
		To:      []string{to.Email},
		Html:    body.String(),
		Subject: notif.Title,
	}

	_, err := s.sender.SendWithContext(ctx, params)
	return err
}
