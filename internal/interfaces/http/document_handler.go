package http

import (
	"errors"
	"mime/multipart"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/jhoicas/portal-unamad/internal/application/document"
	"github.com/jhoicas/portal-unamad/internal/application/dto"
	"github.com/jhoicas/portal-unamad/internal/domain"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
)

// DocumentHandler constancias y resoluciones: alta, consulta, flujo de aprobación e historial.
// Los permisos por acción los verifica document.Service.
type DocumentHandler struct {
	svc *document.Service
}

func NewDocumentHandler(svc *document.Service) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// ─── Constancias ─────────────────────────────────────────────────────────────

// CreateConstancia godoc
// @Summary      Registrar constancia
// @Tags         constancias
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        studentCode  formData  string  true   "código de estudiante"
// @Param        studentDni   formData  string  true   "DNI"
// @Param        studentName  formData  string  true   "nombre completo"
// @Param        type         formData  string  true   "ESTUDIOS | MATRICULA | EGRESADO | CONDUCTA | ORDEN_MERITO"
// @Param        purpose      formData  string  false  "finalidad"
// @Param        file         formData  file    false  "adjunto"
// @Success      201  {object}  dto.ConstanciaResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/documents/constancias [post]
func (h *DocumentHandler) CreateConstancia(c *fiber.Ctx) error {
	sess, _ := GetSession(c)
	var in dto.CreateConstanciaRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	file, closeFn, err := formFile(c)
	if err != nil {
		return err
	}
	defer closeFn()

	out, err := h.svc.CreateConstancia(c.UserContext(), sess, in, file, requestMeta(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListConstancias godoc
// @Summary      Listar constancias
// @Tags         constancias
// @Produce      json
// @Security     BearerAuth
// @Param        status  query  string  false  "PENDIENTE | APROBADO | RECHAZADO"
// @Param        search  query  string  false  "código, DNI o nombre"
// @Param        limit   query  int     false  "límite (máx. 100)"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  dto.ConstanciaListResponse
// @Router       /api/documents/constancias [get]
func (h *DocumentHandler) ListConstancias(c *fiber.Ctx) error {
	sess, _ := GetSession(c)
	q, err := listQuery(c)
	if err != nil {
		return err
	}
	out, err := h.svc.ListConstancias(c.UserContext(), sess, q)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetConstancia godoc
// @Summary      Obtener constancia
// @Tags         constancias
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.ConstanciaResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/constancias/{id} [get]
func (h *DocumentHandler) GetConstancia(c *fiber.Ctx) error {
	sess, _ := GetSession(c)
	id, err := idParam(c)
	if err != nil {
		return err
	}
	out, err := h.svc.GetConstancia(c.UserContext(), sess, id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// DeleteConstancia godoc
// @Summary      Eliminar constancia pendiente
// @Tags         constancias
// @Security     BearerAuth
// @Param        id   path  string  true  "ID"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/constancias/{id} [delete]
func (h *DocumentHandler) DeleteConstancia(c *fiber.Ctx) error {
	sess, _ := GetSession(c)
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteConstancia(c.UserContext(), sess, id, requestMeta(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ConstanciaPDF godoc
// @Summary      PDF imprimible de una constancia aprobada
// @Tags         constancias
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  string  true  "ID"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/constancias/{id}/pdf [get]
func (h *DocumentHandler) ConstanciaPDF(c *fiber.Ctx) error {
	sess, _ := GetSession(c)
	id, err := idParam(c)
	if err != nil {
		return err
	}
	pdf, name, err := h.svc.ConstanciaPDF(c.UserContext(), sess, id)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+url.PathEscape(name)+`"`)
	return c.Send(pdf)
}

// ─── Resoluciones ────────────────────────────────────────────────────────────

// CreateResolucion godoc
// @Summary      Registrar resolución
// @Tags         resoluciones
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        number       formData  string  true   "número"
// @Param        title        formData  string  true   "título"
// @Param        description  formData  string  false  "descripción"
// @Param        issuedAt     formData  string  true   "fecha de emisión (YYYY-MM-DD o RFC3339)"
// @Param        file         formData  file    true   "documento"
// @Success      201  {object}  dto.ResolucionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/documents/resoluciones [post]
func (h *DocumentHandler) CreateResolucion(c *fiber.Ctx) error {
	sess, _ := GetSession(c)
	issuedAt, err := parseDate(c.FormValue("issuedAt"))
	if err != nil {
		return err
	}
	in := dto.CreateResolucionRequest{
		Number:      strings.TrimSpace(c.FormValue("number")),
		Title:       strings.TrimSpace(c.FormValue("title")),
		Description: c.FormValue("description"),
		IssuedAt:    issuedAt,
	}
	file, closeFn, err := formFile(c)
	if err != nil {
		return err
	}
	defer closeFn()

	out, err := h.svc.CreateResolucion(c.UserContext(), sess, in, file, requestMeta(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListResoluciones godoc
// @Summary      Listar resoluciones
// @Tags         resoluciones
// @Produce      json
// @Security     BearerAuth
// @Param        status  query  string  false  "PENDIENTE | APROBADO | RECHAZADO"
// @Param        search  query  string  false  "número o título"
// @Param        limit   query  int     false  "límite (máx. 100)"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  dto.ResolucionListResponse
// @Router       /api/documents/resoluciones [get]
func (h *DocumentHandler) ListResoluciones(c *fiber.Ctx) error {
	sess, _ := GetSession(c)
	q, err := listQuery(c)
	if err != nil {
		return err
	}
	out, err := h.svc.ListResoluciones(c.UserContext(), sess, q)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetResolucion godoc
// @Summary      Obtener resolución
// @Tags         resoluciones
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.ResolucionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/resoluciones/{id} [get]
func (h *DocumentHandler) GetResolucion(c *fiber.Ctx) error {
	sess, _ := GetSession(c)
	id, err := idParam(c)
	if err != nil {
		return err
	}
	out, err := h.svc.GetResolucion(c.UserContext(), sess, id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// DeleteResolucion godoc
// @Summary      Eliminar resolución pendiente
// @Tags         resoluciones
// @Security     BearerAuth
// @Param        id   path  string  true  "ID"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/documents/resoluciones/{id} [delete]
func (h *DocumentHandler) DeleteResolucion(c *fiber.Ctx) error {
	sess, _ := GetSession(c)
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteResolucion(c.UserContext(), sess, id, requestMeta(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ─── Flujo de aprobación (ambos tipos) ───────────────────────────────────────

// Approve godoc
// @Summary      Aprobar documento pendiente
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path  string  true  "constancias | resoluciones"
// @Param        id    path  string  true  "ID"
// @Success      200  {object}  dto.TransitionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{kind}/{id}/approve [post]
func (h *DocumentHandler) Approve(kind entity.DocumentKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, _ := GetSession(c)
		id, err := idParam(c)
		if err != nil {
			return err
		}
		out, err := h.svc.Approve(c.UserContext(), sess, kind, id, requestMeta(c))
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
}

// Reject godoc
// @Summary      Rechazar documento
// @Description  Constancia: solo PENDIENTE. Resolución: PENDIENTE o APROBADO (limpia la aprobación).
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path  string             true   "constancias | resoluciones"
// @Param        id    path  string             true   "ID"
// @Param        body  body  dto.RejectRequest  false  "motivo"
// @Success      200  {object}  dto.TransitionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/documents/{kind}/{id}/reject [post]
func (h *DocumentHandler) Reject(kind entity.DocumentKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, _ := GetSession(c)
		var in dto.RejectRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&in); err != nil {
				return badBody()
			}
		}
		id, err := idParam(c)
		if err != nil {
			return err
		}
		out, err := h.svc.Reject(c.UserContext(), sess, kind, id, in.Reason, requestMeta(c))
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
}

// History godoc
// @Summary      Historial de auditoría de un documento
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path  string  true  "constancias | resoluciones"
// @Param        id    path  string  true  "ID"
// @Success      200  {array}  dto.AuditLogResponse
// @Router       /api/documents/{kind}/{id}/history [get]
func (h *DocumentHandler) History(kind entity.DocumentKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, _ := GetSession(c)
		id, err := idParam(c)
		if err != nil {
			return err
		}
		out, err := h.svc.History(c.UserContext(), sess, kind, id)
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func listQuery(c *fiber.Ctx) (dto.DocumentListQuery, error) {
	var q dto.DocumentListQuery
	if err := c.QueryParser(&q); err != nil {
		return q, domain.NewValidationError("parámetros de consulta inválidos")
	}
	q.Status = strings.ToUpper(strings.TrimSpace(q.Status))
	q.Search = strings.TrimSpace(q.Search)
	return q, nil
}

// formFile lee el campo "file" del multipart; nil si no se envió.
func formFile(c *fiber.Ctx) (*dto.FileUpload, func(), error) {
	noop := func() {}
	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
			return nil, noop, nil
		}
		return nil, noop, badBody()
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}
	return &dto.FileUpload{Name: fh.Filename, Size: fh.Size, Content: f}, func() { closeQuietly(f) }, nil
}

func closeQuietly(f multipart.File) { _ = f.Close() }

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil // la validación de "required" la hace el servicio
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, domain.NewValidationError("el campo 'issuedAt' debe tener formato YYYY-MM-DD")
}
