package ports

import "github.com/jhoicas/portal-unamad/internal/domain/entity"

// ConstanciaRenderer genera el PDF imprimible de una constancia aprobada.
type ConstanciaRenderer interface {
	RenderConstancia(c *entity.Constancia, approverName string) ([]byte, error)
}
