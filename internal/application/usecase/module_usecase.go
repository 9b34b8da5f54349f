package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/jhoicas/portal-unamad/internal/application/dto"
	"github.com/jhoicas/portal-unamad/internal/domain"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
	"github.com/jhoicas/portal-unamad/internal/domain/repository"
	"github.com/jhoicas/portal-unamad/pkg/validate"
)

// CatalogUseCase administra el catálogo de módulos, submódulos y permisos.
// La autorización (modules.access) la aplica el guard de la ruta.
type CatalogUseCase struct {
	modules repository.ModuleRepository
	perms   repository.PermissionRepository
}

// NewCatalogUseCase construye el caso de uso del catálogo.
func NewCatalogUseCase(modules repository.ModuleRepository, perms repository.PermissionRepository) *CatalogUseCase {
	return &CatalogUseCase{modules: modules, perms: perms}
}

// ListModules devuelve todo el catálogo, incluidos los inactivos.
func (uc *CatalogUseCase) ListModules(ctx context.Context) ([]entity.Module, error) {
	return uc.modules.ListAll(ctx)
}

// CreateModule da de alta un módulo. El slug se deriva del nombre si no se envía.
func (uc *CatalogUseCase) CreateModule(ctx context.Context, in dto.CreateModuleRequest) (*entity.Module, error) {
	if err := validate.Struct(&in); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	now := time.Now()
	m := &entity.Module{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Slug:        slugOf(in.Slug, in.Name),
		Description: in.Description,
		Icon:        in.Icon,
		Order:       in.Order,
		IsActive:    boolOr(in.IsActive, true),
		Submodules:  []entity.Submodule{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.modules.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateModule reemplaza los datos editables del módulo id.
func (uc *CatalogUseCase) UpdateModule(ctx context.Context, id string, in dto.CreateModuleRequest) (*entity.Module, error) {
	if err := validate.Struct(&in); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	m, err := uc.modules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	m.Name = in.Name
	m.Slug = slugOf(in.Slug, in.Name)
	m.Description = in.Description
	m.Icon = in.Icon
	m.Order = in.Order
	m.IsActive = boolOr(in.IsActive, m.IsActive)
	m.UpdatedAt = time.Now()
	if err := uc.modules.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// CreateSubmodule agrega un submódulo al módulo moduleID.
func (uc *CatalogUseCase) CreateSubmodule(ctx context.Context, moduleID string, in dto.CreateSubmoduleRequest) (*entity.Submodule, error) {
	if err := validate.Struct(&in); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	m, err := uc.modules.GetByID(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	s := &entity.Submodule{
		ID:        uuid.New().String(),
		ModuleID:  m.ID,
		Name:      in.Name,
		Slug:      slugOf(in.Slug, in.Name),
		Icon:      in.Icon,
		Route:     in.Route,
		Order:     in.Order,
		IsActive:  boolOr(in.IsActive, true),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.modules.CreateSubmodule(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// ListPermissions devuelve el catálogo de permisos.
func (uc *CatalogUseCase) ListPermissions(ctx context.Context) ([]*entity.Permission, error) {
	return uc.perms.ListPermissions(ctx)
}

// CreatePermission da de alta un permiso. Si se indica submódulo y no módulo, el módulo
// se completa con el del submódulo.
func (uc *CatalogUseCase) CreatePermission(ctx context.Context, in dto.CreatePermissionRequest) (*entity.Permission, error) {
	if err := validate.Struct(&in); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	existing, err := uc.perms.GetPermissionByCode(ctx, in.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("permiso %q: %w", in.Code, domain.ErrDuplicate)
	}

	moduleID := in.ModuleID
	if moduleID != nil {
		m, err := uc.modules.GetByID(ctx, *moduleID)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, fmt.Errorf("módulo %s: %w", *moduleID, domain.ErrNotFound)
		}
	}
	if in.SubmoduleID != nil {
		parent, err := uc.findSubmoduleParent(ctx, *in.SubmoduleID)
		if err != nil {
			return nil, err
		}
		if moduleID != nil && *moduleID != parent {
			return nil, domain.NewValidationError("el submódulo no pertenece al módulo indicado")
		}
		moduleID = &parent
	}

	actions := make([]entity.Action, 0, len(in.Actions))
	for _, a := range in.Actions {
		actions = append(actions, entity.Action(a))
	}
	now := time.Now()
	p := &entity.Permission{
		ID:          uuid.New().String(),
		Code:        in.Code,
		Name:        in.Name,
		Description: in.Description,
		ModuleID:    moduleID,
		SubmoduleID: in.SubmoduleID,
		Actions:     actions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.perms.CreatePermission(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *CatalogUseCase) findSubmoduleParent(ctx context.Context, submoduleID string) (string, error) {
	all, err := uc.modules.ListAll(ctx)
	if err != nil {
		return "", err
	}
	for _, m := range all {
		for _, s := range m.Submodules {
			if s.ID == submoduleID {
				return m.ID, nil
			}
		}
	}
	return "", fmt.Errorf("submódulo %s: %w", submoduleID, domain.ErrNotFound)
}

func slugOf(explicit, name string) string {
	if explicit != "" {
		return slug.Make(explicit)
	}
	return slug.Make(name)
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
