package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/portal-unamad/pkg/logger"
)

func TestNew_ProduccionEscribeJSON(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "info", Output: &buf})

	l.Info().Str("modulo", "constancias").Msg("hola")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hola", line["message"])
	assert.Equal(t, "constancias", line["modulo"])
}

func TestNew_NivelFiltraDebug(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "warn", Output: &buf})

	l.Debug().Msg("no debe salir")
	l.Info().Msg("tampoco")
	assert.Empty(t, buf.String())

	l.Warn().Msg("sí")
	assert.Contains(t, buf.String(), "sí")
}

func TestComponent_AgregaCampo(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Output: &buf})

	c := l.Component("mailer")
	c.Info().Msg("x")
	assert.Contains(t, buf.String(), `"component":"mailer"`)
}
