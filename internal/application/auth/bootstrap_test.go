package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/portal-unamad/internal/application/dto"
	"github.com/jhoicas/portal-unamad/internal/domain"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
)

func TestEnsureSuperAdmin_Crea(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.uc.EnsureSuperAdmin(ctx, " Admin@UNAMAD.edu.pe ", "", "clave-segura-1")
	require.NoError(t, err)
	assert.True(t, created)

	u, _ := f.users.GetByEmail(ctx, "admin@unamad.edu.pe")
	require.NotNil(t, u)
	assert.Equal(t, entity.RoleSuperAdmin, u.Role)
	assert.True(t, u.CanLogin())
	assert.Equal(t, "Administrador", u.Name)

	out, err := f.uc.Login(ctx, dto.LoginRequest{Email: "admin@unamad.edu.pe", Password: "clave-segura-1"})
	require.NoError(t, err)
	assert.Equal(t, "SUPER_ADMIN", out.User.Role)
}

func TestEnsureSuperAdmin_PromueveExistenteSinCambiarClave(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.uc.RegisterUser(ctx, dto.RegisterRequest{Email: "jefe@unamad.edu.pe", Password: "original-123", Name: "Jefe"})
	require.NoError(t, err)

	created, err := f.uc.EnsureSuperAdmin(ctx, "jefe@unamad.edu.pe", "Otro", "otra-clave-456")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = f.uc.Login(ctx, dto.LoginRequest{Email: "jefe@unamad.edu.pe", Password: "original-123"})
	require.NoError(t, err)
	_, err = f.uc.Login(ctx, dto.LoginRequest{Email: "jefe@unamad.edu.pe", Password: "otra-clave-456"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestEnsureSuperAdmin_Validacion(t *testing.T) {
	f := newFixture()
	_, err := f.uc.EnsureSuperAdmin(context.Background(), "no-es-correo", "", "clave-segura-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.EnsureSuperAdmin(context.Background(), "a@unamad.edu.pe", "", "corta")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
