package repository

import (
	"context"
	"time"

	"github.com/jhoicas/portal-unamad/internal/domain/entity"
)

// PermissionRepository puerto del almacén de permisos (Permission + UserPermission).
// Todas las consultas de concesiones filtran expires_at IS NULL OR expires_at > now.
type PermissionRepository interface {
	// FindActiveGrant devuelve la concesión vigente de code para el usuario, o (nil, nil).
	FindActiveGrant(ctx context.Context, userID, code string, now time.Time) (*entity.UserPermission, error)
	// CountActiveGrants cuenta los códigos distintos de codes con concesión vigente que incluye action.
	CountActiveGrants(ctx context.Context, userID string, codes []string, action entity.Action, now time.Time) (int, error)
	// ListActiveGrants devuelve las concesiones vigentes con su Permission cargado.
	ListActiveGrants(ctx context.Context, userID string, now time.Time) ([]*entity.UserPermission, error)

	ListPermissions(ctx context.Context) ([]*entity.Permission, error)
	GetPermissionByID(ctx context.Context, id string) (*entity.Permission, error)
	GetPermissionByCode(ctx context.Context, code string) (*entity.Permission, error)
	CreatePermission(ctx context.Context, p *entity.Permission) error

	// UpsertGrant crea o reemplaza la concesión (user_id, permission_id).
	UpsertGrant(ctx context.Context, grant *entity.UserPermission) error
	DeleteGrant(ctx context.Context, userID, permissionID string) error
	DeleteAllGrants(ctx context.Context, userID string) error
}
