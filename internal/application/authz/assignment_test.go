package authz_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/portal-unamad/internal/application/authz"
	"github.com/jhoicas/portal-unamad/internal/application/dto"
	"github.com/jhoicas/portal-unamad/internal/domain"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
)

const (
	targetA = "11111111-1111-1111-1111-111111111111"
	targetB = "22222222-2222-2222-2222-222222222222"
)

var admin = entity.Session{UserID: "99999999-9999-9999-9999-999999999999", Role: entity.RoleAdmin}

func newAssignment() (*authz.AssignmentUseCase, *memPerms, *memAudit) {
	perms := seeded()
	perms.addPermission("p-export", "reportes.access", entity.ActionRead, entity.ActionExport)
	audit := &memAudit{}
	users := &memUsers{users: map[string]*entity.User{
		targetA: {ID: targetA, Role: entity.RoleModerator},
		targetB: {ID: targetB, Role: entity.RoleModerator},
	}}
	return authz.NewAssignmentUseCase(directTx{perms: perms, audit: audit}, perms, users), perms, audit
}

func TestAssign_AddPorUsuario(t *testing.T) {
	uc, perms, audit := newAssignment()
	out, err := uc.Assign(context.Background(), admin, dto.AssignPermissionsRequest{
		UserID: targetA,
		Action: "add",
		Permissions: []dto.PermissionGrantInput{
			{Code: entity.PermConstancias, Actions: []string{"READ", "CREATE"}},
			{PermissionID: "p-res"},
		},
	}, entity.RequestMeta{IPAddress: "10.0.0.1"})
	require.NoError(t, err)

	assert.Equal(t, 1, out.AffectedUsers)
	g := perms.grantsOf(targetA)
	assert.ElementsMatch(t, []entity.Action{entity.ActionRead, entity.ActionCreate}, g[entity.PermConstancias])
	assert.Equal(t, []entity.Action{entity.ActionRead}, g[entity.PermResoluciones], "sin acciones se concede READ")

	require.Len(t, audit.logs, 1)
	assert.Equal(t, entity.AuditPermissionsAssigned, audit.logs[0].Action)
	assert.Equal(t, "10.0.0.1", audit.logs[0].IPAddress)
}

func TestAssign_AddReemplazaAccionesDeLaMismaConcesion(t *testing.T) {
	uc, perms, _ := newAssignment()
	ctx := context.Background()
	_, err := uc.Assign(ctx, admin, dto.AssignPermissionsRequest{UserID: targetA, Action: "add",
		Permissions: []dto.PermissionGrantInput{{Code: entity.PermConstancias, Actions: []string{"READ"}}}}, entity.RequestMeta{})
	require.NoError(t, err)
	_, err = uc.Assign(ctx, admin, dto.AssignPermissionsRequest{UserID: targetA, Action: "add",
		Permissions: []dto.PermissionGrantInput{{Code: entity.PermConstancias, Actions: []string{"READ", "UPDATE"}}}}, entity.RequestMeta{})
	require.NoError(t, err)

	n := 0
	for _, g := range perms.grants {
		if g.UserID == targetA {
			n++
		}
	}
	assert.Equal(t, 1, n, "una sola fila por (usuario, permiso)")
	assert.Len(t, perms.grantsOf(targetA)[entity.PermConstancias], 2)
}

func TestAssign_PorRolAfectaATodos(t *testing.T) {
	uc, perms, _ := newAssignment()
	out, err := uc.Assign(context.Background(), admin, dto.AssignPermissionsRequest{
		Role: "MODERATOR", Action: "add",
		Permissions: []dto.PermissionGrantInput{{Code: entity.PermUsers}},
	}, entity.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.AffectedUsers)
	assert.Contains(t, perms.grantsOf(targetA), entity.PermUsers)
	assert.Contains(t, perms.grantsOf(targetB), entity.PermUsers)
}

func TestAssign_RemoveYSet(t *testing.T) {
	uc, perms, _ := newAssignment()
	perms.grant(targetA, "p-const", nil, entity.ActionRead)
	perms.grant(targetA, "p-res", nil, entity.ActionRead)
	ctx := context.Background()

	_, err := uc.Assign(ctx, admin, dto.AssignPermissionsRequest{UserID: targetA, Action: "remove",
		Permissions: []dto.PermissionGrantInput{{Code: entity.PermConstancias}}}, entity.RequestMeta{})
	require.NoError(t, err)
	assert.NotContains(t, perms.grantsOf(targetA), entity.PermConstancias)
	assert.Contains(t, perms.grantsOf(targetA), entity.PermResoluciones)

	_, err = uc.Assign(ctx, admin, dto.AssignPermissionsRequest{UserID: targetA, Action: "set",
		Permissions: []dto.PermissionGrantInput{{Code: entity.PermUsers}}}, entity.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, []string{entity.PermUsers}, keys(perms.grantsOf(targetA)))

	_, err = uc.Assign(ctx, admin, dto.AssignPermissionsRequest{UserID: targetA, Action: "set"}, entity.RequestMeta{})
	require.NoError(t, err)
	assert.Empty(t, perms.grantsOf(targetA), "set vacío revoca todo")
}

func TestAssign_Validaciones(t *testing.T) {
	uc, _, _ := newAssignment()
	ctx := context.Background()
	past := time.Now().Add(-time.Hour)

	cases := map[string]dto.AssignPermissionsRequest{
		"ni usuario ni rol": {Action: "add", Permissions: []dto.PermissionGrantInput{{Code: entity.PermUsers}}},
		"usuario y rol":     {UserID: targetA, Role: "USER", Action: "add", Permissions: []dto.PermissionGrantInput{{Code: entity.PermUsers}}},
		"modo inválido":     {UserID: targetA, Action: "toggle", Permissions: []dto.PermissionGrantInput{{Code: entity.PermUsers}}},
		"add sin permisos":  {UserID: targetA, Action: "add"},
		"acción no admitida": {UserID: targetA, Action: "add",
			Permissions: []dto.PermissionGrantInput{{Code: "reportes.access", Actions: []string{"DELETE"}}}},
		"acción desconocida": {UserID: targetA, Action: "add",
			Permissions: []dto.PermissionGrantInput{{Code: entity.PermUsers, Actions: []string{"APPROVE"}}}},
		"vencimiento pasado": {UserID: targetA, Action: "add",
			Permissions: []dto.PermissionGrantInput{{Code: entity.PermUsers, ExpiresAt: &past}}},
		"permiso repetido": {UserID: targetA, Action: "add",
			Permissions: []dto.PermissionGrantInput{{Code: entity.PermUsers}, {PermissionID: "p-users"}}},
	}
	for name, req := range cases {
		_, err := uc.Assign(ctx, admin, req, entity.RequestMeta{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}
}

func TestAssign_ReferenciasInexistentes(t *testing.T) {
	uc, _, _ := newAssignment()
	ctx := context.Background()

	_, err := uc.Assign(ctx, admin, dto.AssignPermissionsRequest{UserID: "33333333-3333-3333-3333-333333333333", Action: "add",
		Permissions: []dto.PermissionGrantInput{{Code: entity.PermUsers}}}, entity.RequestMeta{})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = uc.Assign(ctx, admin, dto.AssignPermissionsRequest{UserID: targetA, Action: "add",
		Permissions: []dto.PermissionGrantInput{{Code: "no.existe"}}}, entity.RequestMeta{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func keys(m map[string][]entity.Action) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
