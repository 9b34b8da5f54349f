package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/portal-unamad/internal/application/dto"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
)

// permissionChecker contrato mínimo del guard; lo implementa *authz.Service (incluye el bypass de superusuario).
type permissionChecker interface {
	Can(ctx context.Context, sess entity.Session, code string, action entity.Action) (bool, error)
}

// RequirePermission devuelve un middleware Fiber que exige code+action a la sesión.
// Debe usarse DESPUÉS de SessionMiddleware.
//
// Comportamiento:
//   - 401 Unauthorized → no hay sesión en el contexto.
//   - 403 Forbidden    → sin permiso; el mensaje es genérico.
//   - 500              → fallo al consultar los permisos (se registra).
func RequirePermission(checker permissionChecker, log zerolog.Logger, code string, action entity.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := GetSession(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "sesión requerida",
			})
		}

		allowed, err := checker.Can(c.UserContext(), sess, code, action)
		if err != nil {
			log.Error().Err(err).Str("user_id", sess.UserID).Str("permission", code).Msg("no se pudo verificar el permiso")
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Code:    "PERMISSION_CHECK_FAILED",
				Message: msgInternal,
			})
		}

		if !allowed {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: msgForbidden,
			})
		}

		return c.Next()
	}
}
