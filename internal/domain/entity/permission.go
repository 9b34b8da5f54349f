package entity

import "time"

// Action unidad de granularidad de autorización.
type Action string

const (
	ActionRead   Action = "READ"
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
	ActionExport Action = "EXPORT"
)

// AllActions en orden canónico.
var AllActions = []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionExport}

// Valid informa si la acción es una de las cinco conocidas.
func (a Action) Valid() bool {
	switch a {
	case ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionExport:
		return true
	}
	return false
}

// Códigos de permiso usados por el propio backend.
const (
	PermConstancias  = "constancias.access"
	PermResoluciones = "resoluciones.access"
	PermRoles        = "roles.access"
	PermUsers        = "users.access"
	PermModules      = "modules.access"
)

// Permission capacidad con nombre, opcionalmente acotada a un módulo o submódulo.
// Actions son las acciones que el permiso admite; las concedidas viven en UserPermission.
type Permission struct {
	ID          string
	Code        string
	Name        string
	Description string
	ModuleID    *string
	SubmoduleID *string
	Actions     []Action
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Supports informa si la acción está entre las admitidas por el permiso.
func (p *Permission) Supports(a Action) bool {
	return containsAction(p.Actions, a)
}

// UserPermission concesión de un permiso a un usuario con un subconjunto de acciones
// y vencimiento opcional. Hay como máximo una fila por (usuario, permiso).
type UserPermission struct {
	ID           string
	UserID       string
	PermissionID string
	Permission   *Permission
	Actions      []Action
	ExpiresAt    *time.Time
	GrantedByID  *string
	CreatedAt    time.Time
}

// IsActiveAt: una concesión con ExpiresAt <= now es inerte.
func (up *UserPermission) IsActiveAt(now time.Time) bool {
	return up.ExpiresAt == nil || up.ExpiresAt.After(now)
}

// HasAction informa si la acción fue concedida.
func (up *UserPermission) HasAction(a Action) bool {
	return containsAction(up.Actions, a)
}

func containsAction(list []Action, a Action) bool {
	for _, x := range list {
		if x == a {
			return true
		}
	}
	return false
}
