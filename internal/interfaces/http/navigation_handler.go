package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/portal-unamad/internal/application/dto"
	"github.com/jhoicas/portal-unamad/internal/application/navigation"
	"github.com/jhoicas/portal-unamad/internal/application/usecase"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
)

// NavigationHandler menú visible del usuario y administración del catálogo de módulos.
type NavigationHandler struct {
	resolver *navigation.Resolver
	catalog  *usecase.CatalogUseCase
}

func NewNavigationHandler(resolver *navigation.Resolver, catalog *usecase.CatalogUseCase) *NavigationHandler {
	return &NavigationHandler{resolver: resolver, catalog: catalog}
}

// Navigation godoc
// @Summary      Módulos y submódulos visibles para la sesión
// @Tags         navigation
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   dto.ModuleResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/navigation [get]
func (h *NavigationHandler) Navigation(c *fiber.Ctx) error {
	sess, _ := GetSession(c)
	mods, err := h.resolver.GetUserModules(c.UserContext(), sess.UserID, sess.Role)
	if err != nil {
		return err
	}
	return c.JSON(navigation.ToResponse(mods))
}

// ListModules godoc
// @Summary      Catálogo completo de módulos (incluye inactivos)
// @Tags         modules
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.ModuleResponse
// @Router       /api/modules [get]
func (h *NavigationHandler) ListModules(c *fiber.Ctx) error {
	mods, err := h.catalog.ListModules(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(navigation.ToResponse(mods))
}

// CreateModule godoc
// @Summary      Alta de módulo
// @Tags         modules
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateModuleRequest  true  "módulo"
// @Success      201   {object}  dto.ModuleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/modules [post]
func (h *NavigationHandler) CreateModule(c *fiber.Ctx) error {
	var in dto.CreateModuleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	m, err := h.catalog.CreateModule(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(navigation.ToResponse([]entity.Module{*m})[0])
}

// UpdateModule godoc
// @Summary      Edición de módulo
// @Tags         modules
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                   true  "ID del módulo"
// @Param        body  body  dto.CreateModuleRequest  true  "módulo"
// @Success      200   {object}  dto.ModuleResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/modules/{id} [put]
func (h *NavigationHandler) UpdateModule(c *fiber.Ctx) error {
	var in dto.CreateModuleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	m, err := h.catalog.UpdateModule(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(navigation.ToResponse([]entity.Module{*m})[0])
}

// CreateSubmodule godoc
// @Summary      Alta de submódulo
// @Tags         modules
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                      true  "ID del módulo"
// @Param        body  body  dto.CreateSubmoduleRequest  true  "submódulo"
// @Success      201   {object}  dto.SubmoduleResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/modules/{id}/submodules [post]
func (h *NavigationHandler) CreateSubmodule(c *fiber.Ctx) error {
	var in dto.CreateSubmoduleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	s, err := h.catalog.CreateSubmodule(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(navigation.ToSubmoduleResponse(s))
}
