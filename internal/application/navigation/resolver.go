// Package navigation calcula el árbol de módulos y submódulos visible para un usuario.
package navigation

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/portal-unamad/internal/application/dto"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
	domnav "github.com/jhoicas/portal-unamad/internal/domain/navigation"
	"github.com/jhoicas/portal-unamad/internal/domain/repository"
)

// grantLister es lo que el resolver necesita del servicio de permisos (*authz.Service).
type grantLister interface {
	GetUserPermissions(ctx context.Context, userID string) ([]*entity.UserPermission, error)
}

// Resolver resuelve la navegación visible.
type Resolver struct {
	modules repository.ModuleRepository
	grants  grantLister
}

// NewResolver construye el resolver.
func NewResolver(modules repository.ModuleRepository, grants grantLister) *Resolver {
	return &Resolver{modules: modules, grants: grants}
}

// GetUserModules devuelve los módulos visibles ordenados por order.
//
// SUPER_ADMIN ve todos los módulos activos con todos sus submódulos activos. El resto ve
// los módulos alcanzados por sus concesiones vigentes; dentro de cada módulo solo aparecen
// los submódulos con un permiso acotado a ellos. Un permiso a nivel de módulo deja el
// módulo visible con la lista de submódulos vacía.
func (r *Resolver) GetUserModules(ctx context.Context, userID string, role entity.Role) ([]entity.Module, error) {
	all, err := r.modules.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("navegación: listar módulos: %w", err)
	}
	sortModules(all)
	if entity.IsSuperuser(role) {
		return all, nil
	}

	grants, err := r.grants.GetUserPermissions(ctx, userID)
	if err != nil {
		return nil, err
	}

	subToModule := make(map[string]string)
	for _, m := range all {
		for _, s := range m.Submodules {
			subToModule[s.ID] = m.ID
		}
	}

	touched := make(map[string]map[string]bool)
	for _, g := range grants {
		p := g.Permission
		if p == nil {
			continue
		}
		moduleID := ""
		if p.ModuleID != nil {
			moduleID = *p.ModuleID
		}
		if moduleID == "" && p.SubmoduleID != nil {
			moduleID = subToModule[*p.SubmoduleID]
		}
		if moduleID == "" {
			continue
		}
		subs, ok := touched[moduleID]
		if !ok {
			subs = make(map[string]bool)
			touched[moduleID] = subs
		}
		if p.SubmoduleID != nil {
			subs[*p.SubmoduleID] = true
		}
	}

	visible := make([]entity.Module, 0, len(touched))
	for _, m := range all {
		subs, ok := touched[m.ID]
		if !ok {
			continue
		}
		filtered := make([]entity.Submodule, 0, len(subs))
		for _, s := range m.Submodules {
			if subs[s.ID] {
				filtered = append(filtered, s)
			}
		}
		m.Submodules = filtered
		visible = append(visible, m)
	}
	return visible, nil
}

func sortModules(mods []entity.Module) {
	sort.SliceStable(mods, func(i, j int) bool { return mods[i].Order < mods[j].Order })
	for i := range mods {
		subs := mods[i].Submodules
		sort.SliceStable(subs, func(a, b int) bool { return subs[a].Order < subs[b].Order })
	}
}

// ToResponse convierte el árbol a DTO resolviendo los íconos al conjunto conocido.
func ToResponse(mods []entity.Module) []dto.ModuleResponse {
	out := make([]dto.ModuleResponse, 0, len(mods))
	for _, m := range mods {
		subs := make([]dto.SubmoduleResponse, 0, len(m.Submodules))
		for i := range m.Submodules {
			subs = append(subs, ToSubmoduleResponse(&m.Submodules[i]))
		}
		out = append(out, dto.ModuleResponse{
			ID: m.ID, Name: m.Name, Slug: m.Slug, Description: m.Description,
			Icon: string(domnav.ResolveIcon(m.Icon)), Order: m.Order, IsActive: m.IsActive, Submodules: subs,
		})
	}
	return out
}

// ToSubmoduleResponse convierte un submódulo resolviendo su ícono.
func ToSubmoduleResponse(s *entity.Submodule) dto.SubmoduleResponse {
	return dto.SubmoduleResponse{
		ID: s.ID, ModuleID: s.ModuleID, Name: s.Name, Slug: s.Slug,
		Icon: string(domnav.ResolveIcon(s.Icon)), Route: s.Route, Order: s.Order, IsActive: s.IsActive,
	}
}

// UnknownIcons lista los íconos configurados que caen en el ícono de respaldo.
func UnknownIcons(mods []entity.Module) []string {
	var unknown []string
	for _, m := range mods {
		if m.Icon != "" && !domnav.IsKnown(m.Icon) {
			unknown = append(unknown, m.Slug+":"+m.Icon)
		}
		for _, s := range m.Submodules {
			if s.Icon != "" && !domnav.IsKnown(s.Icon) {
				unknown = append(unknown, m.Slug+"/"+s.Slug+":"+s.Icon)
			}
		}
	}
	return unknown
}
