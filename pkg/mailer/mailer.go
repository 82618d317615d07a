package mailer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"rentals/pkg/logger"

	"github.com/mailersend/mailersend-go"
)

type Email struct {
	ToEmail string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, email Email) (string, error)
}

type MailerSend struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

// New returns a MailerSend mailer, or a LogMailer when no API key is set.
func New(apiKey, fromName, fromEmail string, log *logger.Logger) Mailer {
	if apiKey == "" || fromEmail == "" {
		log.Warn("MailerSend not configured, e-mails will only be logged")
		return &LogMailer{log: log}
	}
	return &MailerSend{
		client: mailersend.NewMailersend(apiKey),
		from:   mailersend.From{Name: fromName, Email: fromEmail},
	}
}

func (m *MailerSend) Send(ctx context.Context, email Email) (string, error) {
	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: email.ToName, Email: email.ToEmail}})
	msg.SetSubject(email.Subject)
	if strings.TrimSpace(email.Text) != "" {
		msg.SetText(email.Text)
	}
	if strings.TrimSpace(email.HTML) != "" {
		msg.SetHTML(email.HTML)
	}

	res, err := m.client.Email.Send(ctx, msg)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return "", &SendError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return res.Header.Get("X-Message-Id"), nil
}

// SendError is a non-2xx answer from the MailerSend API.
type SendError struct {
	StatusCode int
	Body       string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("mailersend error: status=%d body=%s", e.StatusCode, e.Body)
}

// Temporary reports whether retrying could succeed.
func (e *SendError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

type LogMailer struct {
	log *logger.Logger
}

func NewLogMailer(log *logger.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, email Email) (string, error) {
	m.log.WithContext(ctx).Info("E-mail (not sent, mailer disabled)",
		"to", email.ToEmail,
		"subject", email.Subject,
	)
	return "", nil
}
