package authz_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jhoicas/portal-unamad/internal/domain/entity"
	"github.com/jhoicas/portal-unamad/internal/domain/repository"
)

var errStore = errors.New("conexión perdida")

// memPerms implementación en memoria de repository.PermissionRepository.
type memPerms struct {
	mu     sync.Mutex
	perms  map[string]*entity.Permission
	grants []*entity.UserPermission
	fail   bool
}

func newMemPerms() *memPerms {
	return &memPerms{perms: map[string]*entity.Permission{}}
}

func (m *memPerms) addPermission(id, code string, actions ...entity.Action) *entity.Permission {
	if len(actions) == 0 {
		actions = entity.AllActions
	}
	p := &entity.Permission{ID: id, Code: code, Name: code, Actions: actions}
	m.perms[id] = p
	return p
}

func (m *memPerms) grant(userID, permID string, expiresAt *time.Time, actions ...entity.Action) {
	m.grants = append(m.grants, &entity.UserPermission{
		ID: userID + ":" + permID, UserID: userID, PermissionID: permID,
		Permission: m.perms[permID], Actions: actions, ExpiresAt: expiresAt,
	})
}

func (m *memPerms) FindActiveGrant(_ context.Context, userID, code string, now time.Time) (*entity.UserPermission, error) {
	if m.fail {
		return nil, errStore
	}
	for _, g := range m.grants {
		if g.UserID == userID && m.perms[g.PermissionID].Code == code && g.IsActiveAt(now) {
			return g, nil
		}
	}
	return nil, nil
}

func (m *memPerms) CountActiveGrants(_ context.Context, userID string, codes []string, action entity.Action, now time.Time) (int, error) {
	if m.fail {
		return 0, errStore
	}
	want := map[string]bool{}
	for _, c := range codes {
		want[c] = true
	}
	found := map[string]bool{}
	for _, g := range m.grants {
		code := m.perms[g.PermissionID].Code
		if g.UserID == userID && want[code] && g.IsActiveAt(now) && g.HasAction(action) {
			found[code] = true
		}
	}
	return len(found), nil
}

func (m *memPerms) ListActiveGrants(_ context.Context, userID string, now time.Time) ([]*entity.UserPermission, error) {
	if m.fail {
		return nil, errStore
	}
	var out []*entity.UserPermission
	for _, g := range m.grants {
		if g.UserID == userID && g.IsActiveAt(now) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memPerms) ListPermissions(context.Context) ([]*entity.Permission, error) {
	var out []*entity.Permission
	for _, p := range m.perms {
		out = append(out, p)
	}
	return out, nil
}

func (m *memPerms) GetPermissionByID(_ context.Context, id string) (*entity.Permission, error) {
	return m.perms[id], nil
}

func (m *memPerms) GetPermissionByCode(_ context.Context, code string) (*entity.Permission, error) {
	for _, p := range m.perms {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memPerms) CreatePermission(_ context.Context, p *entity.Permission) error {
	m.perms[p.ID] = p
	return nil
}

func (m *memPerms) UpsertGrant(_ context.Context, g *entity.UserPermission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g.Permission = m.perms[g.PermissionID]
	for i, x := range m.grants {
		if x.UserID == g.UserID && x.PermissionID == g.PermissionID {
			m.grants[i] = g
			return nil
		}
	}
	m.grants = append(m.grants, g)
	return nil
}

func (m *memPerms) DeleteGrant(_ context.Context, userID, permissionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.grants[:0]
	for _, x := range m.grants {
		if !(x.UserID == userID && x.PermissionID == permissionID) {
			out = append(out, x)
		}
	}
	m.grants = out
	return nil
}

func (m *memPerms) DeleteAllGrants(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.grants[:0]
	for _, x := range m.grants {
		if x.UserID != userID {
			out = append(out, x)
		}
	}
	m.grants = out
	return nil
}

func (m *memPerms) grantsOf(userID string) map[string][]entity.Action {
	out := map[string][]entity.Action{}
	for _, g := range m.grants {
		if g.UserID == userID {
			out[m.perms[g.PermissionID].Code] = g.Actions
		}
	}
	return out
}

// memUsers implementación mínima de repository.UserRepository.
type memUsers struct {
	users map[string]*entity.User
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error { m.users[u.ID] = u; return nil }
func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	return m.users[id], nil
}
func (m *memUsers) GetByEmail(context.Context, string) (*entity.User, error) { return nil, nil }
func (m *memUsers) GetByVerificationToken(context.Context, string) (*entity.User, error) {
	return nil, nil
}
func (m *memUsers) GetByResetToken(context.Context, string) (*entity.User, error) { return nil, nil }
func (m *memUsers) Update(_ context.Context, u *entity.User) error                { m.users[u.ID] = u; return nil }
func (m *memUsers) List(context.Context, int, int) ([]*entity.User, int, error) {
	return nil, 0, nil
}
func (m *memUsers) ListIDsByRole(_ context.Context, role entity.Role) ([]string, error) {
	var ids []string
	for _, u := range m.users {
		if u.Role == role {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

// memAudit registro de auditoría en memoria.
type memAudit struct {
	logs []*entity.AuditLog
}

func (m *memAudit) Create(_ context.Context, l *entity.AuditLog) error {
	m.logs = append(m.logs, l)
	return nil
}

func (m *memAudit) ListByEntity(context.Context, string, string) ([]*entity.AuditLog, error) {
	return m.logs, nil
}

// directTx ejecuta fn sin transacción real sobre los fakes.
type directTx struct {
	perms *memPerms
	audit *memAudit
}

func (d directTx) RunGrants(_ context.Context, fn func(repository.PermissionRepository, repository.AuditLogRepository) error) error {
	return fn(d.perms, d.audit)
}
