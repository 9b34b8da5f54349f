package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/portal-unamad/internal/domain"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
	"github.com/jhoicas/portal-unamad/internal/domain/repository"
)

var _ repository.PermissionRepository = (*PermissionRepo)(nil)

// PermissionRepo permisos y concesiones sobre PostgreSQL.
type PermissionRepo struct {
	db Querier
}

// NewPermissionRepository construye el repositorio de permisos.
func NewPermissionRepository(db Querier) *PermissionRepo {
	return &PermissionRepo{db: db}
}

// El module_id devuelto es el de la cadena padre: el propio o el del submódulo.
const permissionColumns = `p.id, p.code, p.name, p.description, COALESCE(p.module_id, s.module_id),
	p.submodule_id, p.actions, p.created_at, p.updated_at`

const grantSelect = `
	SELECT up.id, up.user_id, up.permission_id, up.actions, up.expires_at, up.granted_by_id, up.created_at,
	       ` + permissionColumns + `
	FROM user_permissions up
	JOIN permissions p ON p.id = up.permission_id
	LEFT JOIN submodules s ON s.id = p.submodule_id`

// FindActiveGrant devuelve la concesión vigente de code para el usuario, o (nil, nil).
func (r *PermissionRepo) FindActiveGrant(ctx context.Context, userID, code string, now time.Time) (*entity.UserPermission, error) {
	query := grantSelect + `
		WHERE up.user_id = $1 AND p.code = $2
		  AND (up.expires_at IS NULL OR up.expires_at > $3)
		LIMIT 1`
	g, err := scanGrant(r.db.QueryRow(ctx, query, userID, code, now))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active grant: %w", err)
	}
	return g, nil
}

// CountActiveGrants cuenta los códigos distintos con concesión vigente que incluye action.
func (r *PermissionRepo) CountActiveGrants(ctx context.Context, userID string, codes []string, action entity.Action, now time.Time) (int, error) {
	query := `
		SELECT COUNT(DISTINCT p.code)
		FROM user_permissions up
		JOIN permissions p ON p.id = up.permission_id
		WHERE up.user_id = $1 AND p.code = ANY($2)
		  AND $3 = ANY(up.actions)
		  AND (up.expires_at IS NULL OR up.expires_at > $4)`
	var n int
	if err := r.db.QueryRow(ctx, query, userID, codes, string(action), now).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active grants: %w", err)
	}
	return n, nil
}

// ListActiveGrants devuelve las concesiones vigentes con su permiso.
func (r *PermissionRepo) ListActiveGrants(ctx context.Context, userID string, now time.Time) ([]*entity.UserPermission, error) {
	query := grantSelect + `
		WHERE up.user_id = $1 AND (up.expires_at IS NULL OR up.expires_at > $2)
		ORDER BY p.code`
	rows, err := r.db.Query(ctx, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("list active grants: %w", err)
	}
	defer rows.Close()

	var list []*entity.UserPermission
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		list = append(list, g)
	}
	return list, rows.Err()
}

// ListPermissions devuelve el catálogo completo ordenado por código.
func (r *PermissionRepo) ListPermissions(ctx context.Context) ([]*entity.Permission, error) {
	query := `SELECT ` + permissionColumns + `
		FROM permissions p LEFT JOIN submodules s ON s.id = p.submodule_id
		ORDER BY p.code`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()

	var list []*entity.Permission
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// GetPermissionByID devuelve el permiso o (nil, nil).
func (r *PermissionRepo) GetPermissionByID(ctx context.Context, id string) (*entity.Permission, error) {
	return r.findPermission(ctx, `p.id = $1`, id)
}

// GetPermissionByCode devuelve el permiso o (nil, nil).
func (r *PermissionRepo) GetPermissionByCode(ctx context.Context, code string) (*entity.Permission, error) {
	return r.findPermission(ctx, `p.code = $1`, code)
}

func (r *PermissionRepo) findPermission(ctx context.Context, where string, arg any) (*entity.Permission, error) {
	query := `SELECT ` + permissionColumns + `
		FROM permissions p LEFT JOIN submodules s ON s.id = p.submodule_id
		WHERE ` + where
	p, err := scanPermission(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get permission: %w", err)
	}
	return p, nil
}

// CreatePermission inserta un permiso; código repetido → domain.ErrDuplicate.
func (r *PermissionRepo) CreatePermission(ctx context.Context, p *entity.Permission) error {
	query := `
		INSERT INTO permissions (id, code, name, description, module_id, submodule_id, actions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.Code, p.Name, p.Description, p.ModuleID, p.SubmoduleID, actionsToText(p.Actions), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("permiso %q: %w", p.Code, domain.ErrDuplicate)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("módulo o submódulo: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("insert permission: %w", err)
	}
	return nil
}

// UpsertGrant crea la concesión o reemplaza acciones, vencimiento y otorgante de la existente.
func (r *PermissionRepo) UpsertGrant(ctx context.Context, g *entity.UserPermission) error {
	query := `
		INSERT INTO user_permissions (id, user_id, permission_id, actions, expires_at, granted_by_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, permission_id) DO UPDATE SET
			actions = EXCLUDED.actions,
			expires_at = EXCLUDED.expires_at,
			granted_by_id = EXCLUDED.granted_by_id
		RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		g.ID, g.UserID, g.PermissionID, actionsToText(g.Actions), g.ExpiresAt, g.GrantedByID, g.CreatedAt,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("usuario o permiso: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("upsert grant: %w", err)
	}
	return nil
}

// DeleteGrant elimina la concesión (user, permission) si existe.
func (r *PermissionRepo) DeleteGrant(ctx context.Context, userID, permissionID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM user_permissions WHERE user_id = $1 AND permission_id = $2`, userID, permissionID); err != nil {
		return fmt.Errorf("delete grant: %w", err)
	}
	return nil
}

// DeleteAllGrants elimina todas las concesiones del usuario.
func (r *PermissionRepo) DeleteAllGrants(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM user_permissions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete grants: %w", err)
	}
	return nil
}

func scanPermission(row pgx.Row) (*entity.Permission, error) {
	var p entity.Permission
	var actions []string
	if err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.ModuleID, &p.SubmoduleID, &actions, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Actions = textToActions(actions)
	return &p, nil
}

func scanGrant(row pgx.Row) (*entity.UserPermission, error) {
	var g entity.UserPermission
	var p entity.Permission
	var grantActions, permActions []string
	err := row.Scan(
		&g.ID, &g.UserID, &g.PermissionID, &grantActions, &g.ExpiresAt, &g.GrantedByID, &g.CreatedAt,
		&p.ID, &p.Code, &p.Name, &p.Description, &p.ModuleID, &p.SubmoduleID, &permActions, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	g.Actions = textToActions(grantActions)
	p.Actions = textToActions(permActions)
	g.Permission = &p
	return &g, nil
}
