package mail

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/portal-unamad/pkg/config"
)

type captureSender struct {
	msgs []*gomail.Message
	err  error
}

func (c *captureSender) DialAndSend(m ...*gomail.Message) error {
	c.msgs = append(c.msgs, m...)
	return c.err
}

func render(t *testing.T, m *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestSMTPMailer_SendPasswordReset(t *testing.T) {
	cs := &captureSender{}
	m := &SMTPMailer{dialer: cs, from: "no-reply@unamad.edu.pe"}

	require.NoError(t, m.SendPasswordReset(context.Background(), "ana@unamad.edu.pe", "Ana", "https://portal/reset?token=abc"))
	require.Len(t, cs.msgs, 1)
	assert.Equal(t, []string{"ana@unamad.edu.pe"}, cs.msgs[0].GetHeader("To"))
	assert.Equal(t, []string{"no-reply@unamad.edu.pe"}, cs.msgs[0].GetHeader("From"))
	subject := cs.msgs[0].GetHeader("Subject")
	require.Len(t, subject, 1)
	decoded, err := new(mime.WordDecoder).DecodeHeader(subject[0])
	require.NoError(t, err)
	assert.Equal(t, subjectReset, decoded)
	assert.Contains(t, render(t, cs.msgs[0]), "text/html")
}

func TestSMTPMailer_ErrorYContexto(t *testing.T) {
	m := &SMTPMailer{dialer: &captureSender{err: errors.New("conexión rechazada")}}
	err := m.SendWelcome(context.Background(), "a@b.pe", "A")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a@b.pe")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cs := &captureSender{}
	m = &SMTPMailer{dialer: cs}
	assert.ErrorIs(t, m.SendWelcome(ctx, "a@b.pe", "A"), context.Canceled)
	assert.Empty(t, cs.msgs)
}

func TestTemplates_EscapanHTML(t *testing.T) {
	out := verificationTemplate("<script>x</script>", "https://p/v?token=1&a=2")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "token=1&amp;a=2")
	assert.Contains(t, welcomeTemplate("Luis"), "Luis")
}

func TestLogMailer_NoRegistraTokens(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(zerolog.New(&buf), false)

	require.NoError(t, m.SendPasswordReset(context.Background(), "a@b.pe", "A", "https://p/reset?token=secreto"))
	require.NoError(t, m.SendVerification(context.Background(), "a@b.pe", "A", "https://p/verify?token=v1"))
	out := buf.String()
	assert.NotContains(t, out, "secreto")
	assert.NotContains(t, out, "token=v1")
	assert.Contains(t, out, "https://p/verify")
}

func TestLogMailer_DesarrolloMuestraEnlaceDeVerificacion(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(zerolog.New(&buf), true)

	require.NoError(t, m.SendPasswordReset(context.Background(), "a@b.pe", "A", "https://p/reset?token=secreto"))
	require.NoError(t, m.SendVerification(context.Background(), "a@b.pe", "A", "https://p/verify?token=v1"))
	out := buf.String()
	assert.NotContains(t, out, "secreto")
	assert.Contains(t, out, "token=v1")
}

func TestNew_SinSMTPUsaLog(t *testing.T) {
	assert.IsType(t, &LogMailer{}, New(config.SMTPConfig{}, false, zerolog.New(io.Discard)))
	assert.IsType(t, &SMTPMailer{}, New(config.SMTPConfig{Host: "smtp.unamad.edu.pe", Port: 587}, false, zerolog.New(io.Discard)))
	assert.True(t, strings.HasPrefix(subjectReset, "Restablecer"))
}
