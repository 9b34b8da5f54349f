package dto

import "time"

// CheckPermissionRequest POST /api/permissions/check.
type CheckPermissionRequest struct {
	PermissionCode string `json:"permissionCode" validate:"required"`
	Action         string `json:"action" validate:"omitempty,oneof=READ CREATE UPDATE DELETE EXPORT"`
}

// CheckPermissionResponse resultado booleano.
type CheckPermissionResponse struct {
	HasPermission bool `json:"hasPermission"`
}

// PermissionResponse permiso del catálogo.
type PermissionResponse struct {
	ID          string   `json:"id"`
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	ModuleID    *string  `json:"moduleId,omitempty"`
	SubmoduleID *string  `json:"submoduleId,omitempty"`
	Actions     []string `json:"actions"`
}

// UserPermissionResponse concesión vigente del usuario.
type UserPermissionResponse struct {
	ID         string             `json:"id"`
	Permission PermissionResponse `json:"permission"`
	Actions    []string           `json:"actions"`
	ExpiresAt  *time.Time         `json:"expiresAt,omitempty"`
}

// CreatePermissionRequest alta en el catálogo.
type CreatePermissionRequest struct {
	Code        string   `json:"code" validate:"required,min=3,max=100"`
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=500"`
	ModuleID    *string  `json:"moduleId" validate:"omitempty,uuid"`
	SubmoduleID *string  `json:"submoduleId" validate:"omitempty,uuid"`
	Actions     []string `json:"actions" validate:"required,min=1,dive,oneof=READ CREATE UPDATE DELETE EXPORT"`
}

// PermissionGrantInput un permiso dentro de una asignación masiva.
type PermissionGrantInput struct {
	PermissionID string     `json:"permissionId" validate:"required_without=Code,omitempty,uuid"`
	Code         string     `json:"code"`
	Actions      []string   `json:"actions"`
	ExpiresAt    *time.Time `json:"expiresAt"`
}

// AssignPermissionsRequest POST /api/permissions/assign.
type AssignPermissionsRequest struct {
	UserID      string                 `json:"userId" validate:"omitempty,uuid"`
	Role        string                 `json:"role" validate:"omitempty,oneof=SUPER_ADMIN ADMIN MODERATOR USER"`
	Permissions []PermissionGrantInput `json:"permissions" validate:"dive"`
	Action      string                 `json:"action" validate:"required,oneof=add remove set"`
}

// AssignPermissionsResponse resumen de la asignación.
type AssignPermissionsResponse struct {
	Action        string   `json:"action"`
	AffectedUsers int      `json:"affectedUsers"`
	Permissions   []string `json:"permissions"`
}
