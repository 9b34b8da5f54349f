package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/portal-unamad/internal/application/dto"
	"github.com/jhoicas/portal-unamad/internal/application/usecase"
)

// StudentHandler proxy hacia el padrón institucional de estudiantes (sin sesión).
type StudentHandler struct {
	uc *usecase.StudentUseCase
}

func NewStudentHandler(uc *usecase.StudentUseCase) *StudentHandler {
	return &StudentHandler{uc: uc}
}

// ByDNI godoc
// @Summary      Consultar estudiante por DNI
// @Tags         students
// @Produce      json
// @Param        dni  path  string  true  "DNI (8 dígitos)"
// @Success      200  {object}  entity.Student
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/student/by-dni/{dni} [get]
func (h *StudentHandler) ByDNI(c *fiber.Ctx) error {
	st, err := h.uc.ByDNI(c.UserContext(), c.Params("dni"))
	if err != nil {
		return err
	}
	return c.JSON(st)
}

// ByCode godoc
// @Summary      Consultar estudiante por código
// @Tags         students
// @Produce      json
// @Param        code  path  string  true  "código de estudiante"
// @Success      200  {object}  entity.Student
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/student/by-code/{code} [get]
func (h *StudentHandler) ByCode(c *fiber.Ctx) error {
	st, err := h.uc.ByCode(c.UserContext(), c.Params("code"))
	if err != nil {
		return err
	}
	return c.JSON(st)
}

// Consult godoc
// @Summary      Consultar estudiante por DNI (POST)
// @Tags         students
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConsultByDNIRequest  true  "dni"
// @Success      200  {object}  entity.Student
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/student/consult [post]
func (h *StudentHandler) Consult(c *fiber.Ctx) error {
	var in dto.ConsultByDNIRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	st, err := h.uc.ByDNI(c.UserContext(), in.DNI)
	if err != nil {
		return err
	}
	return c.JSON(st)
}

// ConsultByCode godoc
// @Summary      Consultar estudiante por código (POST)
// @Tags         students
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConsultByCodeRequest  true  "code"
// @Success      200  {object}  entity.Student
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/student/consult-by-code [post]
func (h *StudentHandler) ConsultByCode(c *fiber.Ctx) error {
	var in dto.ConsultByCodeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	st, err := h.uc.ByCode(c.UserContext(), in.Code)
	if err != nil {
		return err
	}
	return c.JSON(st)
}
