// Package files sanea las rutas de archivos pedidas por los clientes.
package files

import (
	"net/url"
	"path"
	"strings"

	"github.com/jhoicas/portal-unamad/internal/domain"
)

// Carpetas servibles. Todo lo que no empiece por una de ellas se rechaza.
const (
	FolderConstancias  = "constancias"
	FolderResoluciones = "resoluciones"
	FolderPublic       = "public"
)

var allowedFolders = map[string]bool{
	FolderConstancias:  true,
	FolderResoluciones: true,
	FolderPublic:       true,
}

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".txt":  "text/plain; charset=utf-8",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// Path ruta saneada dentro de la raíz de contenido.
type Path struct {
	Key    string // clave relativa limpia, p. ej. "constancias/2024/x.pdf"
	Folder string
}

// RequiresSession informa si la carpeta exige sesión para servirse.
func (p Path) RequiresSession() bool {
	return p.Folder != FolderPublic
}

// ContentType tipo MIME según la extensión; application/octet-stream si no se conoce.
func (p Path) ContentType() string {
	return ContentTypeFor(p.Key)
}

// Sanitize valida la ruta pedida. Rechaza (domain.ErrInvalidInput) rutas absolutas,
// segmentos "." o "..", barras invertidas, bytes nulos, archivos ocultos y carpetas fuera
// de la lista permitida. Los segmentos se evalúan antes de limpiar la ruta, de modo que
// "constancias/../../etc/passwd" no se normaliza a algo servible.
func Sanitize(raw string) (Path, error) {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return Path{}, domain.NewValidationError("ruta de archivo inválida")
	}
	if decoded == "" || strings.ContainsAny(decoded, "\x00\\") || strings.HasPrefix(decoded, "/") {
		return Path{}, domain.NewValidationError("ruta de archivo inválida")
	}

	segments := strings.Split(decoded, "/")
	for _, s := range segments {
		if s == "" || s == "." || s == ".." || strings.HasPrefix(s, ".") {
			return Path{}, domain.NewValidationError("ruta de archivo inválida")
		}
	}
	if len(segments) < 2 || !allowedFolders[segments[0]] {
		return Path{}, domain.NewValidationError("carpeta no permitida")
	}

	key := path.Clean(decoded)
	// path.Clean no puede salir de la carpeta tras el control de segmentos; se vuelve a comprobar igual.
	if !strings.HasPrefix(key, segments[0]+"/") {
		return Path{}, domain.NewValidationError("ruta de archivo inválida")
	}
	return Path{Key: key, Folder: segments[0]}, nil
}

// ContentTypeFor tipo MIME para un nombre de archivo.
func ContentTypeFor(name string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// AllowedUploadExt informa si la extensión se acepta en subidas de documentos.
func AllowedUploadExt(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".pdf", ".png", ".jpg", ".jpeg", ".doc", ".docx":
		return true
	}
	return false
}
