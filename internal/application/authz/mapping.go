package authz

import (
	"github.com/jhoicas/portal-unamad/internal/application/dto"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
)

// ToPermissionResponse convierte un permiso del catálogo a DTO.
func ToPermissionResponse(p *entity.Permission) dto.PermissionResponse {
	return dto.PermissionResponse{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		ModuleID:    p.ModuleID,
		SubmoduleID: p.SubmoduleID,
		Actions:     actionStrings(p.Actions),
	}
}

// ToUserPermissionResponses convierte las concesiones vigentes a DTO.
func ToUserPermissionResponses(grants []*entity.UserPermission) []dto.UserPermissionResponse {
	out := make([]dto.UserPermissionResponse, 0, len(grants))
	for _, g := range grants {
		r := dto.UserPermissionResponse{ID: g.ID, Actions: actionStrings(g.Actions), ExpiresAt: g.ExpiresAt}
		if g.Permission != nil {
			r.Permission = ToPermissionResponse(g.Permission)
		}
		out = append(out, r)
	}
	return out
}

func actionStrings(actions []entity.Action) []string {
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		out = append(out, string(a))
	}
	return out
}
