package navigation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/portal-unamad/internal/application/navigation"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
)

type memModules struct {
	active []entity.Module
	err    error
}

func (m *memModules) ListActive(context.Context) ([]entity.Module, error) {
	// copia para que el resolver no altere el fixture
	out := make([]entity.Module, len(m.active))
	for i, mod := range m.active {
		mod.Submodules = append([]entity.Submodule(nil), mod.Submodules...)
		out[i] = mod
	}
	return out, m.err
}
func (m *memModules) ListAll(ctx context.Context) ([]entity.Module, error) { return m.ListActive(ctx) }
func (m *memModules) GetByID(context.Context, string) (*entity.Module, error) {
	return nil, nil
}
func (m *memModules) Create(context.Context, *entity.Module) error             { return nil }
func (m *memModules) Update(context.Context, *entity.Module) error             { return nil }
func (m *memModules) CreateSubmodule(context.Context, *entity.Submodule) error { return nil }

type memGrants struct {
	grants []*entity.UserPermission
}

func (m *memGrants) GetUserPermissions(context.Context, string) ([]*entity.UserPermission, error) {
	return m.grants, nil
}

func strp(s string) *string { return &s }

// Catálogo: Documentos(order 2){Constancias, Resoluciones}, Administración(order 1){Usuarios, Roles}, Reportes(order 3){}.
func catalog() *memModules {
	return &memModules{active: []entity.Module{
		{ID: "m-docs", Name: "Documentos", Slug: "documentos", Icon: "FileText", Order: 2, IsActive: true,
			Submodules: []entity.Submodule{
				{ID: "s-res", ModuleID: "m-docs", Name: "Resoluciones", Slug: "resoluciones", Icon: "Stamp", Order: 2, IsActive: true},
				{ID: "s-const", ModuleID: "m-docs", Name: "Constancias", Slug: "constancias", Icon: "FileCheck", Order: 1, IsActive: true},
			}},
		{ID: "m-admin", Name: "Administración", Slug: "administracion", Icon: "Settings", Order: 1, IsActive: true,
			Submodules: []entity.Submodule{
				{ID: "s-users", ModuleID: "m-admin", Name: "Usuarios", Slug: "usuarios", Icon: "Users", Order: 1, IsActive: true},
				{ID: "s-roles", ModuleID: "m-admin", Name: "Roles", Slug: "roles", Icon: "Shield", Order: 2, IsActive: true},
			}},
		{ID: "m-rep", Name: "Reportes", Slug: "reportes", Icon: "NoExiste", Order: 3, IsActive: true},
	}}
}

func grantOn(moduleID, submoduleID *string) *entity.UserPermission {
	return &entity.UserPermission{
		Actions:    []entity.Action{entity.ActionRead},
		Permission: &entity.Permission{ModuleID: moduleID, SubmoduleID: submoduleID},
	}
}

func ids(mods []entity.Module) []string {
	out := make([]string, 0, len(mods))
	for _, m := range mods {
		out = append(out, m.ID)
	}
	return out
}

func TestGetUserModules_SuperAdminVeTodoSinConcesiones(t *testing.T) {
	r := navigation.NewResolver(catalog(), &memGrants{})
	mods, err := r.GetUserModules(context.Background(), "u1", entity.RoleSuperAdmin)
	require.NoError(t, err)

	assert.Equal(t, []string{"m-admin", "m-docs", "m-rep"}, ids(mods), "ordenado por order")
	require.Len(t, mods[1].Submodules, 2)
	assert.Equal(t, "s-const", mods[1].Submodules[0].ID, "submódulos también ordenados")
}

func TestGetUserModules_UsuarioSinConcesionesNoVeNada(t *testing.T) {
	r := navigation.NewResolver(catalog(), &memGrants{})
	mods, err := r.GetUserModules(context.Background(), "u1", entity.RoleAdmin)
	require.NoError(t, err)
	assert.Empty(t, mods)
}

func TestGetUserModules_SoloSubmodulosConPermisoExplicito(t *testing.T) {
	r := navigation.NewResolver(catalog(), &memGrants{grants: []*entity.UserPermission{
		grantOn(nil, strp("s-const")),
		grantOn(strp("m-admin"), strp("s-roles")),
	}})
	mods, err := r.GetUserModules(context.Background(), "u1", entity.RoleModerator)
	require.NoError(t, err)

	require.Equal(t, []string{"m-admin", "m-docs"}, ids(mods))
	require.Len(t, mods[0].Submodules, 1)
	assert.Equal(t, "s-roles", mods[0].Submodules[0].ID)
	require.Len(t, mods[1].Submodules, 1)
	assert.Equal(t, "s-const", mods[1].Submodules[0].ID)
}

func TestGetUserModules_PermisoDeModuloDejaCascaronVacio(t *testing.T) {
	r := navigation.NewResolver(catalog(), &memGrants{grants: []*entity.UserPermission{
		grantOn(strp("m-docs"), nil),
	}})
	mods, err := r.GetUserModules(context.Background(), "u1", entity.RoleUser)
	require.NoError(t, err)

	require.Len(t, mods, 1)
	assert.Equal(t, "m-docs", mods[0].ID)
	assert.NotNil(t, mods[0].Submodules)
	assert.Empty(t, mods[0].Submodules)
}

func TestGetUserModules_ModuloInactivoNoAparece(t *testing.T) {
	r := navigation.NewResolver(catalog(), &memGrants{grants: []*entity.UserPermission{
		grantOn(strp("m-inactivo"), nil),
		grantOn(nil, strp("s-inexistente")),
		{Permission: nil},
	}})
	mods, err := r.GetUserModules(context.Background(), "u1", entity.RoleUser)
	require.NoError(t, err)
	assert.Empty(t, mods)
}

func TestGetUserModules_ErrorDelAlmacen(t *testing.T) {
	r := navigation.NewResolver(&memModules{err: errors.New("db caída")}, &memGrants{})
	_, err := r.GetUserModules(context.Background(), "u1", entity.RoleSuperAdmin)
	assert.Error(t, err)
}

func TestToResponse_ResuelveIconos(t *testing.T) {
	mods, err := navigation.NewResolver(catalog(), &memGrants{}).GetUserModules(context.Background(), "u1", entity.RoleSuperAdmin)
	require.NoError(t, err)

	out := navigation.ToResponse(mods)
	assert.Equal(t, "settings", out[0].Icon)
	assert.Equal(t, "file-text", out[1].Icon)
	assert.Equal(t, "file-check", out[1].Submodules[0].Icon)
	assert.Equal(t, "circle", out[2].Icon, "ícono desconocido cae al de respaldo")

	assert.Equal(t, []string{"reportes:NoExiste"}, navigation.UnknownIcons(mods))
}
