package authz_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/portal-unamad/internal/application/authz"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
)

const (
	userID  = "00000000-0000-0000-0000-000000000001"
	otherID = "00000000-0000-0000-0000-000000000002"
)

var fixedNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func act(a entity.Action) *entity.Action { return &a }

func newService(m *memPerms) *authz.Service {
	return authz.NewService(m).WithClock(func() time.Time { return fixedNow })
}

func seeded() *memPerms {
	m := newMemPerms()
	m.addPermission("p-const", entity.PermConstancias)
	m.addPermission("p-res", entity.PermResoluciones)
	m.addPermission("p-users", entity.PermUsers)
	return m
}

func TestHasPermission_SinConcesionEsFalso(t *testing.T) {
	svc := newService(seeded())
	ok, err := svc.HasPermission(context.Background(), userID, entity.PermConstancias, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasPermission_ReadImplicitoYAccionExplicita(t *testing.T) {
	m := seeded()
	m.grant(userID, "p-const", nil, entity.ActionRead, entity.ActionCreate)
	svc := newService(m)
	ctx := context.Background()

	ok, err := svc.HasPermission(ctx, userID, "constancias.access", nil)
	require.NoError(t, err)
	assert.True(t, ok, "sin acción se exige READ")

	ok, err = svc.HasPermission(ctx, userID, "constancias.access", act(entity.ActionCreate))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasPermission(ctx, userID, "constancias.access", act(entity.ActionUpdate))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasPermission_SinReadNoPasaSinAccion(t *testing.T) {
	m := seeded()
	m.grant(userID, "p-const", nil, entity.ActionCreate)
	ok, err := newService(m).HasPermission(context.Background(), userID, entity.PermConstancias, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConcesionVencidaEsInerteEnTodasLasConsultas(t *testing.T) {
	m := seeded()
	past := fixedNow.Add(-time.Second)
	exactly := fixedNow
	m.grant(userID, "p-const", &past, entity.AllActions...)
	m.grant(userID, "p-res", &exactly, entity.AllActions...)
	svc := newService(m)
	ctx := context.Background()

	for _, code := range []string{entity.PermConstancias, entity.PermResoluciones} {
		ok, err := svc.HasPermission(ctx, userID, code, nil)
		require.NoError(t, err)
		assert.False(t, ok, code)
	}
	anyOK, err := svc.HasAnyPermission(ctx, userID, []string{entity.PermConstancias, entity.PermResoluciones}, nil)
	require.NoError(t, err)
	assert.False(t, anyOK)

	all, err := svc.HasAllPermissions(ctx, userID, []string{entity.PermConstancias}, nil)
	require.NoError(t, err)
	assert.False(t, all)

	list, err := svc.GetUserPermissions(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestConcesionFuturaSigueVigente(t *testing.T) {
	m := seeded()
	future := fixedNow.Add(time.Hour)
	m.grant(userID, "p-const", &future, entity.ActionRead)
	ok, err := newService(m).HasPermission(context.Background(), userID, entity.PermConstancias, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasAnyPermission(t *testing.T) {
	m := seeded()
	m.grant(userID, "p-res", nil, entity.ActionRead, entity.ActionUpdate)
	svc := newService(m)
	ctx := context.Background()

	ok, err := svc.HasAnyPermission(ctx, userID, []string{entity.PermConstancias, entity.PermResoluciones}, act(entity.ActionUpdate))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasAnyPermission(ctx, userID, []string{entity.PermConstancias, entity.PermResoluciones}, act(entity.ActionDelete))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.HasAnyPermission(ctx, userID, nil, nil)
	require.NoError(t, err)
	assert.False(t, ok, "lista vacía nunca concede")
}

func TestHasAllPermissions_EquivaleAHasPermissionPorCodigo(t *testing.T) {
	m := seeded()
	m.grant(userID, "p-const", nil, entity.ActionRead, entity.ActionUpdate)
	m.grant(userID, "p-res", nil, entity.ActionRead)
	svc := newService(m)
	ctx := context.Background()
	codes := []string{entity.PermConstancias, entity.PermResoluciones}

	for _, a := range entity.AllActions {
		all, err := svc.HasAllPermissions(ctx, userID, codes, act(a))
		require.NoError(t, err)

		each := true
		for _, c := range codes {
			ok, err := svc.HasPermission(ctx, userID, c, act(a))
			require.NoError(t, err)
			each = each && ok
		}
		assert.Equal(t, each, all, "acción %s", a)
	}
}

func TestHasAllPermissions_CodigosRepetidosNoEngañanAlConteo(t *testing.T) {
	m := seeded()
	m.grant(userID, "p-const", nil, entity.ActionRead)
	svc := newService(m)

	ok, err := svc.HasAllPermissions(context.Background(), userID,
		[]string{entity.PermConstancias, entity.PermConstancias}, nil)
	require.NoError(t, err)
	assert.True(t, ok, "el mismo código repetido cuenta una vez")

	ok, err = svc.HasAllPermissions(context.Background(), userID,
		[]string{entity.PermConstancias, entity.PermConstancias, entity.PermUsers}, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetUserPermissions_SinFiltrarAccion(t *testing.T) {
	m := seeded()
	m.grant(userID, "p-const", nil, entity.ActionCreate)
	m.grant(userID, "p-res", nil, entity.ActionExport)
	m.grant(otherID, "p-users", nil, entity.ActionRead)

	list, err := newService(m).GetUserPermissions(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCan_SuperusuarioHaceBypass(t *testing.T) {
	svc := newService(seeded())
	sess := entity.Session{UserID: userID, Role: entity.RoleSuperAdmin}

	ok, err := svc.Can(context.Background(), sess, entity.PermResoluciones, entity.ActionUpdate)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCan_AdminSinConcesionNoPasa(t *testing.T) {
	svc := newService(seeded())
	sess := entity.Session{UserID: userID, Role: entity.RoleAdmin}

	ok, err := svc.Can(context.Background(), sess, entity.PermResoluciones, entity.ActionUpdate)
	require.NoError(t, err)
	assert.False(t, ok, "solo SUPER_ADMIN salta la tabla de permisos")
}

func TestCan_SinSesionNoPasa(t *testing.T) {
	ok, err := newService(seeded()).Can(context.Background(), entity.Session{Role: entity.RoleSuperAdmin}, entity.PermUsers, entity.ActionRead)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestErroresDelAlmacenSePropagan(t *testing.T) {
	m := seeded()
	m.fail = true
	svc := newService(m)

	_, err := svc.HasPermission(context.Background(), userID, entity.PermUsers, nil)
	assert.ErrorIs(t, err, errStore)
	_, err = svc.HasAllPermissions(context.Background(), userID, []string{entity.PermUsers}, nil)
	assert.ErrorIs(t, err, errStore)
}
