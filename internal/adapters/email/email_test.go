package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestTemplateRenderer_RegistrationReceived(t *testing.T) {
	r := NewTemplateRenderer()
	data := &domain.RegistrationReceivedEmailData{
		Email:          "alice@example.com",
		Name:           "Alice <script>",
		EventTitle:     "GopherCon",
		EventDateTime:  time.Date(2030, 6, 1, 9, 30, 0, 0, time.UTC),
		VenueType:      domain.VenueInPerson,
		Location:       "Berlin",
		Price:          25,
		RegistrationID: "reg-1",
	}

	subject, html, text, err := r.Render(domain.TemplateRegistrationReceived, data)
	require.NoError(t, err)
	assert.Equal(t, "You're registered for GopherCon", subject)
	assert.Contains(t, text, "Where: Berlin")
	assert.Contains(t, text, "Price: 25.00")
	assert.Contains(t, text, "Alice <script>")
	assert.Contains(t, html, "Alice &lt;script&gt;")
	assert.Contains(t, html, "reg-1")
}

func TestTemplateRenderer_FreeOnlineEvent(t *testing.T) {
	_, _, text, err := NewTemplateRenderer().Render(domain.TemplateRegistrationReceived, &domain.RegistrationReceivedEmailData{
		EventTitle:    "Remote Meetup",
		EventDateTime: time.Date(2030, 6, 1, 9, 30, 0, 0, time.UTC),
		VenueType:     domain.VenueOnline,
	})
	require.NoError(t, err)
	assert.Contains(t, text, "Hi there,")
	assert.Contains(t, text, "Where: Online")
	assert.Contains(t, text, "Price: Free")
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	_, _, _, err := NewTemplateRenderer().Render("missing", nil)
	assert.Error(t, err)
}

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESMailer_Send(t *testing.T) {
	client := &fakeSES{}
	m := &sesMailer{client: client, fromAddress: "noreply@example.com", fromName: "EventHub", logger: testLogger()}

	require.NoError(t, m.Send(context.Background(), "alice@example.com", "Hi", "<p>Hi</p>", ""))
	assert.Equal(t, "EventHub <noreply@example.com>", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"alice@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "<p>Hi</p>", aws.ToString(client.input.Message.Body.Html.Data))
	assert.Nil(t, client.input.Message.Body.Text)

	client.err = errors.New("throttled")
	assert.Error(t, m.Send(context.Background(), "alice@example.com", "Hi", "", "Hi"))
}

func TestNewMailer(t *testing.T) {
	m, err := NewMailer(MailerConfig{Provider: "noop"}, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &noopMailer{}, m)
	assert.NoError(t, m.Send(context.Background(), "a@b.com", "s", "h", "t"))

	_, err = NewMailer(MailerConfig{Provider: "ses"}, testLogger())
	assert.Error(t, err)

	m, err = NewMailer(MailerConfig{Provider: "ses", FromAddress: "noreply@example.com", SES: SESConfig{Region: "us-east-1"}}, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &sesMailer{}, m)
}
