package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/portal-unamad/internal/application/dto"
	"github.com/jhoicas/portal-unamad/internal/application/usecase"
	"github.com/jhoicas/portal-unamad/internal/domain"
)

// UserHandler administración de usuarios (protegido por users.access).
type UserHandler struct {
	uc *usecase.UserUseCase
}

func NewUserHandler(uc *usecase.UserUseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

// List godoc
// @Summary      Listar usuarios
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "límite (máx. 100)"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.UserListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return domain.NewValidationError("parámetros de paginación inválidos")
	}
	out, err := h.uc.List(c.UserContext(), page)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Cambiar rol, estado o nombre de un usuario
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                 true  "ID del usuario"
// @Param        body  body  dto.UpdateUserRequest  true  "role?, isActive?, name?"
// @Success      200  {object}  dto.UserResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/{id} [patch]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	sess, _ := GetSession(c)
	var in dto.UpdateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), sess, id, in, requestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}
