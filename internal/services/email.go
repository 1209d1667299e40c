package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventhub/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendRegistrationReceived tells the registrant their seat is held.
func (s *emailService) SendRegistrationReceived(ctx context.Context, data *domain.RegistrationReceivedEmailData) error {
	if data == nil {
		return fmt.Errorf("registration email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render(domain.TemplateRegistrationReceived, data)
	if err != nil {
		return fmt.Errorf("render %s template: %w", domain.TemplateRegistrationReceived, err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("send registration email: %w", err)
	}
	s.logger.InfoContext(ctx, "registration email sent", "to", data.Email, "registration_id", data.RegistrationID)
	return nil
}

// emailNotifier delivers registration notifications inline, for deployments
// without a queue.
type emailNotifier struct {
	emailService domain.EmailService
}

// NewEmailNotifier returns a RegistrationNotifier that sends the email directly.
func NewEmailNotifier(emailService domain.EmailService) domain.RegistrationNotifier {
	return &emailNotifier{emailService: emailService}
}

func (n *emailNotifier) NotifyRegistration(ctx context.Context, data *domain.RegistrationReceivedEmailData) error {
	return n.emailService.SendRegistrationReceived(ctx, data)
}
