package entity

import "time"

// Role rol grueso del usuario. El acceso fino lo deciden las filas de UserPermission.
type Role string

// Roles válidos para User.
const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleModerator  Role = "MODERATOR"
	RoleUser       Role = "USER"
)

// Valid informa si el rol es uno de los conocidos.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

// IsSuperuser es el único predicado de bypass: un superusuario salta los chequeos finos.
func IsSuperuser(r Role) bool {
	return r == RoleSuperAdmin
}

// IsAdministrator incluye ADMIN y SUPER_ADMIN (p. ej. cambiar la contraseña de otro usuario).
func IsAdministrator(r Role) bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// User representa un usuario del portal.
type User struct {
	ID                  string
	Email               string
	Name                string
	PasswordHash        string // bcrypt hash
	Role                Role
	IsActive            bool
	IsVerified          bool
	VerificationToken   *string
	VerificationSentAt  *time.Time
	ResetToken          *string
	ResetTokenExpiresAt *time.Time
	LastLoginAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CanLogin exige cuenta activa y correo verificado.
func (u *User) CanLogin() bool {
	return u.IsActive && u.IsVerified
}
