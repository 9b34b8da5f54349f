package ports

import (
	"context"

	"github.com/jhoicas/portal-unamad/internal/domain/entity"
)

// StudentRegistry puerto hacia la API institucional de estudiantes.
// Devuelve domain.ErrNotFound si el registro responde que no existe y
// domain.ErrUpstream ante cualquier otra falla del servicio externo.
// El contexto debe llevar un timeout para no bloquear la petición.
type StudentRegistry interface {
	ByDNI(ctx context.Context, dni string) (*entity.Student, error)
	ByCode(ctx context.Context, code string) (*entity.Student, error)
}
