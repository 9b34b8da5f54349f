package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/portal-unamad/internal/application/dto"
	"github.com/jhoicas/portal-unamad/internal/domain"
)

// Mensajes genéricos: un 403 o un 500 nunca explican el motivo real.
const (
	msgForbidden = "no tiene permisos para realizar esta acción"
	msgInternal  = "error interno del servidor"
)

// ErrorHandler traduce los errores devueltos por los handlers a dto.ErrorResponse.
// Los errores inesperados se registran y se responden como 500 sin detalle.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := classify(err)
		if status >= fiber.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("user_id", sessionUserID(c)).
				Msg("error en la petición")
		}
		return c.Status(status).JSON(body)
	}
}

func classify(err error) (int, dto.ErrorResponse) {
	var fe *fiber.Error
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &fe):
		if fe.Code >= fiber.StatusInternalServerError {
			return fe.Code, dto.ErrorResponse{Code: "INTERNAL", Message: msgInternal}
		}
		return fe.Code, dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message}
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: ve.Msg}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrAlreadyProcessed):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "ALREADY_PROCESSED", Message: err.Error()}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidToken):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_TOKEN", Message: domain.ErrInvalidToken.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"}
	case errors.Is(err, domain.ErrInactiveAccount):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "INACTIVE_ACCOUNT", Message: domain.ErrInactiveAccount.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: msgForbidden}
	case errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: domain.ErrUserNotFound.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: domain.ErrNotFound.Error()}
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "EMAIL_EXISTS", Message: domain.ErrEmailAlreadyExists.Error()}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: domain.ErrDuplicate.Error()}
	case errors.Is(err, domain.ErrUpstream):
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "UPSTREAM_ERROR", Message: domain.ErrUpstream.Error()}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: msgInternal}
}

// badBody error uniforme para cuerpos que no se pueden decodificar.
func badBody() error {
	return fiber.NewError(fiber.StatusBadRequest, "cuerpo inválido")
}

// idParam valida el parámetro :id de la ruta; un id que no es UUID se rechaza con 400
// antes de llegar a las consultas.
func idParam(c *fiber.Ctx) (string, error) {
	raw := c.Params("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", domain.NewValidationError("identificador inválido")
	}
	return id.String(), nil
}
