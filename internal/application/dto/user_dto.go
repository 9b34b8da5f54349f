package dto

import "time"

// RegisterRequest entrada para registro.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=200"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,min=2,max=200"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expiresIn"` // segundos
	User      UserResponse `json:"user"`
}

// UserResponse salida de un usuario (sin credenciales).
type UserResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"isActive"`
	IsVerified  bool       `json:"isVerified"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// UserListResponse listado paginado de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// UpdateUserRequest cambios administrativos sobre un usuario.
type UpdateUserRequest struct {
	Role     *string `json:"role" validate:"omitempty,oneof=SUPER_ADMIN ADMIN MODERATOR USER"`
	IsActive *bool   `json:"isActive"`
	Name     *string `json:"name" validate:"omitempty,min=2,max=200"`
}

// MeResponse usuario de la sesión con sus permisos vigentes.
type MeResponse struct {
	User        UserResponse             `json:"user"`
	Permissions []UserPermissionResponse `json:"permissions"`
}

// VerifyEmailRequest token del enlace de verificación.
type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required,min=16"`
}

// ForgotPasswordRequest solicitud de recuperación.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest consumo del token de recuperación.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required,min=16"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// ChangePasswordRequest cambio de contraseña propio o, para administradores, de otro usuario.
type ChangePasswordRequest struct {
	UserID          string `json:"userId" validate:"omitempty,uuid"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}
