package mail

import (
	"context"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/jhoicas/portal-unamad/internal/application/ports"
)

var _ ports.Mailer = (*LogMailer)(nil)

// LogMailer registra los correos en lugar de enviarlos (desarrollo, SMTP sin configurar).
// Los tokens de los enlaces solo se registran completos con showLinks.
type LogMailer struct {
	log       zerolog.Logger
	showLinks bool
}

func NewLogMailer(log zerolog.Logger, showLinks bool) *LogMailer {
	return &LogMailer{log: log.With().Str("component", "mail").Logger(), showLinks: showLinks}
}

func (m *LogMailer) SendVerification(_ context.Context, to, _, link string) error {
	m.log.Info().Str("to", to).Str("link", m.redact(link)).Msg("correo de verificación (no enviado)")
	return nil
}

func (m *LogMailer) SendWelcome(_ context.Context, to, _ string) error {
	m.log.Info().Str("to", to).Msg("correo de bienvenida (no enviado)")
	return nil
}

// SendPasswordReset nunca registra el enlace: contiene el token de recuperación.
func (m *LogMailer) SendPasswordReset(_ context.Context, to, _, _ string) error {
	m.log.Info().Str("to", to).Msg("correo de recuperación (no enviado)")
	return nil
}

// redact quita la query (token) del enlace salvo en desarrollo.
func (m *LogMailer) redact(link string) string {
	if m.showLinks {
		return link
	}
	u, err := url.Parse(link)
	if err != nil {
		return "[enlace omitido]"
	}
	if u.RawQuery != "" {
		u.RawQuery = "token=[omitido]"
	}
	return u.String()
}
