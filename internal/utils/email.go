package utils

import (
	"context"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Mail is one outgoing HTML message.
type Mail struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers transactional mail.
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// SMTPMailer sends through an authenticated SMTP relay.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (s *SMTPMailer) Send(ctx context.Context, m Mail) error {
	msg := mail.NewMsg()
	if err := msg.From(s.From); err != nil {
		return err
	}
	if err := msg.To(m.To); err != nil {
		return err
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextHTML, m.HTML)

	client, err := mail.NewClient(s.Host,
		mail.WithPort(s.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(s.Username),
		mail.WithPassword(s.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	zap.L().Info("📤 sending email", zap.String("to", m.To), zap.String("subject", m.Subject))
	return client.DialAndSendWithContext(ctx, msg)
}

// LogMailer only logs, for development and unconfigured SMTP.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, m Mail) error {
	zap.L().Info("📧 email (not sent, SMTP disabled)", zap.String("to", m.To), zap.String("subject", m.Subject))
	return nil
}

// SendAsync delivers m in the background and only logs failures.
func SendAsync(mailer Mailer, m Mail) {
	if mailer == nil || m.To == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := mailer.Send(ctx, m); err != nil {
			zap.L().Warn("⚠️ email delivery failed", zap.String("to", m.To), zap.Error(err))
		}
	}()
}
