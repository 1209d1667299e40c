package domain

import (
	"context"
	"time"
)

// TemplateRegistrationReceived names the template rendered for new registrations.
const TemplateRegistrationReceived = "registration_received"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RegistrationReceivedEmailData holds data for the registration received email.
type RegistrationReceivedEmailData struct {
	Email          string
	Name           string
	EventTitle     string
	EventDateTime  time.Time
	VenueType      VenueType
	Location       string
	Price          float64
	RegistrationID string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendRegistrationReceived(ctx context.Context, data *RegistrationReceivedEmailData) error
}
