package http

import (
	nethttp "net/http"
	"path"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/portal-unamad/internal/application/dto"
	"github.com/jhoicas/portal-unamad/internal/application/ports"
	"github.com/jhoicas/portal-unamad/internal/domain/files"
)

// FileHandler sirve los archivos subidos. La ruta se sanea antes de tocar el almacenamiento.
type FileHandler struct {
	store ports.FileStore
}

func NewFileHandler(store ports.FileStore) *FileHandler {
	return &FileHandler{store: store}
}

// Serve godoc
// @Summary      Descargar archivo
// @Description  Carpetas permitidas: constancias, resoluciones (con sesión) y public.
// @Tags         files
// @Produce      octet-stream
// @Param        path  path  string  true  "ruta relativa, p. ej. constancias/2025/x.pdf"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/files/{path} [get]
func (h *FileHandler) Serve(c *fiber.Ctx) error {
	p, err := files.Sanitize(c.Params("*"))
	if err != nil {
		return err
	}
	if _, ok := GetSession(c); p.RequiresSession() && !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "sesión requerida"})
	}

	f, err := h.store.Open(c.UserContext(), p.Key)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, p.ContentType())
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+path.Base(p.Key)+`"`)
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	if p.RequiresSession() {
		c.Set(fiber.HeaderCacheControl, "private, no-store")
	} else {
		c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	}
	if !f.ModTime.IsZero() {
		c.Set(fiber.HeaderLastModified, f.ModTime.UTC().Format(nethttp.TimeFormat))
	}
	return c.SendStream(f.Content, int(f.Size))
}
