package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/portal-unamad/internal/domain"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
	"github.com/jhoicas/portal-unamad/pkg/validate"
)

// EnsureSuperAdmin crea el superusuario inicial activo y verificado. Si el correo ya existe
// lo promueve a SUPER_ADMIN y lo activa sin tocar su contraseña. Devuelve true si lo creó.
func (uc *AuthUseCase) EnsureSuperAdmin(ctx context.Context, email, name, password string) (bool, error) {
	email = normalizeEmail(email)
	if err := validate.Var("email", email, "required,email"); err != nil {
		return false, domain.NewValidationError(err.Error())
	}
	now := uc.now()

	existing, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if existing != nil {
		existing.Role = entity.RoleSuperAdmin
		existing.IsActive = true
		existing.IsVerified = true
		existing.VerificationToken = nil
		existing.UpdatedAt = now
		return false, uc.users.Update(ctx, existing)
	}

	if err := validate.Var("password", password, "required,min=8,max=72"); err != nil {
		return false, domain.NewValidationError(err.Error())
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	if name = strings.TrimSpace(name); name == "" {
		name = "Administrador"
	}
	return true, uc.users.Create(ctx, &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         entity.RoleSuperAdmin,
		IsActive:     true,
		IsVerified:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}
