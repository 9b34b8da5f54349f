package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/portal-unamad/internal/application/authz"
	"github.com/jhoicas/portal-unamad/internal/application/dto"
	"github.com/jhoicas/portal-unamad/internal/application/usecase"
	"github.com/jhoicas/portal-unamad/internal/domain"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
	"github.com/jhoicas/portal-unamad/pkg/validate"
)

// PermissionHandler consultas de permisos, asignación y catálogo.
type PermissionHandler struct {
	authz   *authz.Service
	assign  *authz.AssignmentUseCase
	catalog *usecase.CatalogUseCase
}

func NewPermissionHandler(svc *authz.Service, assign *authz.AssignmentUseCase, catalog *usecase.CatalogUseCase) *PermissionHandler {
	return &PermissionHandler{authz: svc, assign: assign, catalog: catalog}
}

// UserPermissions godoc
// @Summary      Permisos vigentes del usuario de la sesión
// @Tags         permissions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   dto.UserPermissionResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/permissions/user [get]
func (h *PermissionHandler) UserPermissions(c *fiber.Ctx) error {
	sess, _ := GetSession(c)
	grants, err := h.authz.GetUserPermissions(c.UserContext(), sess.UserID)
	if err != nil {
		return err
	}
	return c.JSON(authz.ToUserPermissionResponses(grants))
}

// Check godoc
// @Summary      Verificar un permiso
// @Description  Sin acción se asume READ. Un SUPER_ADMIN siempre obtiene true.
// @Tags         permissions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CheckPermissionRequest  true  "permissionCode, action?"
// @Success      200   {object}  dto.CheckPermissionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/permissions/check [post]
func (h *PermissionHandler) Check(c *fiber.Ctx) error {
	sess, _ := GetSession(c)
	var in dto.CheckPermissionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	if err := validate.Struct(&in); err != nil {
		return domain.NewValidationError(err.Error())
	}
	action := entity.ActionRead
	if in.Action != "" {
		action = entity.Action(in.Action)
	}
	ok, err := h.authz.Can(c.UserContext(), sess, in.PermissionCode, action)
	if err != nil {
		return err
	}
	return c.JSON(dto.CheckPermissionResponse{HasPermission: ok})
}

// Assign godoc
// @Summary      Asignar permisos (add | remove | set)
// @Tags         permissions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.AssignPermissionsRequest  true  "userId o role, permissions, action"
// @Success      200   {object}  dto.AssignPermissionsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/permissions/assign [post]
func (h *PermissionHandler) Assign(c *fiber.Ctx) error {
	sess, _ := GetSession(c)
	var in dto.AssignPermissionsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	out, err := h.assign.Assign(c.UserContext(), sess, in, requestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Catalog godoc
// @Summary      Catálogo de permisos
// @Tags         permissions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.PermissionResponse
// @Router       /api/permissions/catalog [get]
func (h *PermissionHandler) Catalog(c *fiber.Ctx) error {
	perms, err := h.catalog.ListPermissions(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.PermissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, authz.ToPermissionResponse(p))
	}
	return c.JSON(out)
}

// CreateCatalogEntry godoc
// @Summary      Alta de permiso en el catálogo
// @Tags         permissions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreatePermissionRequest  true  "permiso"
// @Success      201   {object}  dto.PermissionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/permissions/catalog [post]
func (h *PermissionHandler) CreateCatalogEntry(c *fiber.Ctx) error {
	var in dto.CreatePermissionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	p, err := h.catalog.CreatePermission(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(authz.ToPermissionResponse(p))
}
