package repository

import (
	"context"
	"time"

	"github.com/jhoicas/portal-unamad/internal/domain/entity"
)

// DocumentFilter filtros de listado comunes a constancias y resoluciones.
type DocumentFilter struct {
	Status entity.DocumentStatus
	Search string
	Limit  int
	Offset int
}

// Transition cambio de estado condicionado: solo se aplica si el estado actual está en From.
type Transition struct {
	ID            string
	From          []entity.DocumentStatus
	To            entity.DocumentStatus
	ApprovedByID  *string
	ApprovedAt    *time.Time
	ClearApproval bool
}

// DocumentStateRepository puerto para las transiciones de estado, común a ambos tipos.
type DocumentStateRepository interface {
	GetState(ctx context.Context, id string) (*entity.DocumentState, error)
	// ApplyTransition devuelve false si ninguna fila cumplía la condición de estado.
	ApplyTransition(ctx context.Context, t Transition) (bool, error)
}

// ConstanciaRepository persistencia de constancias.
type ConstanciaRepository interface {
	DocumentStateRepository
	Create(ctx context.Context, c *entity.Constancia) error
	GetByID(ctx context.Context, id string) (*entity.Constancia, error)
	List(ctx context.Context, f DocumentFilter) ([]*entity.Constancia, int, error)
	Delete(ctx context.Context, id string) error
}

// ResolucionRepository persistencia de resoluciones.
type ResolucionRepository interface {
	DocumentStateRepository
	Create(ctx context.Context, r *entity.Resolucion) error
	GetByID(ctx context.Context, id string) (*entity.Resolucion, error)
	List(ctx context.Context, f DocumentFilter) ([]*entity.Resolucion, int, error)
	Delete(ctx context.Context, id string) error
}
