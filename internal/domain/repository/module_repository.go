package repository

import (
	"context"

	"github.com/jhoicas/portal-unamad/internal/domain/entity"
)

// ModuleRepository puerto de persistencia para Module y Submodule.
type ModuleRepository interface {
	// ListActive devuelve los módulos activos con sus submódulos activos, ordenados por order.
	ListActive(ctx context.Context) ([]entity.Module, error)
	// ListAll incluye inactivos (administración del catálogo).
	ListAll(ctx context.Context) ([]entity.Module, error)
	GetByID(ctx context.Context, id string) (*entity.Module, error)
	Create(ctx context.Context, m *entity.Module) error
	Update(ctx context.Context, m *entity.Module) error
	CreateSubmodule(ctx context.Context, s *entity.Submodule) error
}
