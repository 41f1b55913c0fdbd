package mailer

import (
	"context"
	"fmt"

	mail "github.com/wneessen/go-mail"
)

// SMTPConfig holds the SMTP transport settings.
type SMTPConfig struct {
	Host         string
	Port         int
	Username     string
	Password     string
	From         string
	BaseURL      string
	SupportEmail string
}

// SMTPMailer sends email through an authenticated SMTP server.
type SMTPMailer struct {
	client *mail.Client
	cfg    SMTPConfig
}

// NewSMTP creates an SMTPMailer. The connection is established lazily on
// first send.
func NewSMTP(cfg SMTPConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}

	// Port 465 is SMTPS: the server expects a TLS handshake before any SMTP
	// traffic, so a STARTTLS-only client would hang waiting for a greeting.
	// Submission ports (587, 25) negotiate STARTTLS over a plain connection.
	if implicitTLS(cfg.Port) {
		opts = append(opts, mail.WithSSLPort(false))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create SMTP client: %w", err)
	}

	return &SMTPMailer{client: client, cfg: cfg}, nil
}

// implicitTLS reports whether the port speaks TLS from the first byte.
func implicitTLS(port int) bool {
	return port == 465
}

// SendSignInLink emails a one-time sign-in link.
func (m *SMTPMailer) SendSignInLink(ctx context.Context, email, signInURL string) error {
	body, err := renderTemplate("confirm-signin.html", confirmSignInData{
		BaseURL:   m.cfg.BaseURL,
		SignInURL: signInURL,
		Email:     email,
	})
	if err != nil {
		return err
	}

	return m.send(ctx, email, "Your sign-in link for SupaVacation", body)
}

// SendWelcome emails the post-signup welcome message.
func (m *SMTPMailer) SendWelcome(ctx context.Context, email string) error {
	body, err := renderTemplate("welcome.html", welcomeData{
		BaseURL:      m.cfg.BaseURL,
		SupportEmail: m.cfg.SupportEmail,
	})
	if err != nil {
		return err
	}

	return m.send(ctx, email, "Welcome to SupaVacation!", body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat("SupaVacation", m.cfg.From); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	return nil
}
