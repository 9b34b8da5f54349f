package http

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/portal-unamad/internal/domain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validación", domain.NewValidationError("el campo 'dni' es obligatorio"), 400, "VALIDATION"},
		{"ya procesado", fmt.Errorf("%w (estado actual: APROBADO)", domain.ErrAlreadyProcessed), 400, "ALREADY_PROCESSED"},
		{"conflicto", domain.ErrConflict, 400, "CONFLICT"},
		{"token", domain.ErrInvalidToken, 400, "INVALID_TOKEN"},
		{"credenciales", domain.ErrUnauthorized, 401, "UNAUTHORIZED"},
		{"inactiva", domain.ErrInactiveAccount, 403, "INACTIVE_ACCOUNT"},
		{"prohibido", fmt.Errorf("aprobar: %w", domain.ErrForbidden), 403, "FORBIDDEN"},
		{"no encontrado", domain.ErrNotFound, 404, "NOT_FOUND"},
		{"usuario no encontrado", domain.ErrUserNotFound, 404, "NOT_FOUND"},
		{"email", domain.ErrEmailAlreadyExists, 409, "EMAIL_EXISTS"},
		{"duplicado", domain.ErrDuplicate, 409, "DUPLICATE"},
		{"upstream", fmt.Errorf("%w: respuesta 502", domain.ErrUpstream), 500, "UPSTREAM_ERROR"},
		{"fiber", fiber.NewError(fiber.StatusRequestEntityTooLarge, "Request Entity Too Large"), 413, "HTTP_ERROR"},
		{"inesperado", errors.New("pq: relation \"users\" does not exist"), 500, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := classify(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestClassify_NoFiltraDetalleInterno(t *testing.T) {
	_, body := classify(errors.New("dial tcp 10.0.0.5:5432: connection refused"))
	assert.Equal(t, msgInternal, body.Message)

	_, body = classify(fmt.Errorf("%w: dial tcp api.unamad.edu.pe: timeout", domain.ErrUpstream))
	assert.NotContains(t, body.Message, "api.unamad.edu.pe")

	_, body = classify(fmt.Errorf("%w (estado actual: RECHAZADO)", domain.ErrAlreadyProcessed))
	assert.Contains(t, body.Message, "RECHAZADO")
}
