// Package mail implementa ports.Mailer con gomail (SMTP) o solo log cuando no hay SMTP.
package mail

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/portal-unamad/internal/application/ports"
	"github.com/jhoicas/portal-unamad/pkg/config"
)

const (
	subjectVerification = "Verifica tu correo - Portal UNAMAD"
	subjectWelcome      = "Bienvenido al Portal UNAMAD"
	subjectReset        = "Restablecer contraseña - Portal UNAMAD"
)

var _ ports.Mailer = (*SMTPMailer)(nil)

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer envía los correos transaccionales por SMTP.
type SMTPMailer struct {
	dialer sender
	from   string
}

// NewSMTPMailer construye el mailer con las credenciales de cfg.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

// New devuelve el mailer SMTP o, si SMTP_HOST está vacío, uno que solo registra en el log.
// showLinks permite registrar enlaces con token (solo APP_ENV=development).
func New(cfg config.SMTPConfig, showLinks bool, log zerolog.Logger) ports.Mailer {
	if !cfg.Enabled() {
		return NewLogMailer(log, showLinks)
	}
	return NewSMTPMailer(cfg)
}

func (m *SMTPMailer) SendVerification(ctx context.Context, to, name, link string) error {
	return m.send(ctx, to, subjectVerification, verificationTemplate(name, link))
}

func (m *SMTPMailer) SendWelcome(ctx context.Context, to, name string) error {
	return m.send(ctx, to, subjectWelcome, welcomeTemplate(name))
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, name, link string) error {
	return m.send(ctx, to, subjectReset, passwordResetTemplate(name, link))
}

// send respeta la cancelación del contexto; gomail no la soporta por sí mismo.
func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("mail: enviar a %s: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
