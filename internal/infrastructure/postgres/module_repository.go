package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/portal-unamad/internal/domain"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
	"github.com/jhoicas/portal-unamad/internal/domain/repository"
)

var _ repository.ModuleRepository = (*ModuleRepo)(nil)

// ModuleRepo catálogo de módulos y submódulos sobre PostgreSQL.
type ModuleRepo struct {
	db Querier
}

// NewModuleRepository construye el repositorio del catálogo.
func NewModuleRepository(db Querier) *ModuleRepo {
	return &ModuleRepo{db: db}
}

const moduleColumns = `id, name, slug, description, icon, sort_order, is_active, created_at, updated_at`
const submoduleColumns = `id, module_id, name, slug, icon, route, sort_order, is_active, created_at, updated_at`

// ListActive devuelve los módulos activos con sus submódulos activos.
func (r *ModuleRepo) ListActive(ctx context.Context) ([]entity.Module, error) {
	return r.list(ctx, true)
}

// ListAll devuelve todo el catálogo.
func (r *ModuleRepo) ListAll(ctx context.Context) ([]entity.Module, error) {
	return r.list(ctx, false)
}

func (r *ModuleRepo) list(ctx context.Context, onlyActive bool) ([]entity.Module, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+moduleColumns+` FROM modules
		WHERE ($1 = FALSE OR is_active)
		ORDER BY sort_order, name`, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	mods, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Module, error) {
		m, err := scanModule(row)
		if err != nil {
			return entity.Module{}, err
		}
		return *m, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan module: %w", err)
	}

	subRows, err := r.db.Query(ctx, `
		SELECT `+submoduleColumns+` FROM submodules
		WHERE ($1 = FALSE OR is_active)
		ORDER BY sort_order, name`, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("list submodules: %w", err)
	}
	subs, err := pgx.CollectRows(subRows, func(row pgx.CollectableRow) (entity.Submodule, error) {
		return scanSubmodule(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan submodule: %w", err)
	}

	index := make(map[string]int, len(mods))
	for i := range mods {
		mods[i].Submodules = []entity.Submodule{}
		index[mods[i].ID] = i
	}
	for _, s := range subs {
		if i, ok := index[s.ModuleID]; ok {
			mods[i].Submodules = append(mods[i].Submodules, s)
		}
	}
	return mods, nil
}

// GetByID devuelve el módulo con todos sus submódulos, o (nil, nil).
func (r *ModuleRepo) GetByID(ctx context.Context, id string) (*entity.Module, error) {
	m, err := scanModule(r.db.QueryRow(ctx, `SELECT `+moduleColumns+` FROM modules WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get module: %w", err)
	}
	rows, err := r.db.Query(ctx, `SELECT `+submoduleColumns+` FROM submodules WHERE module_id = $1 ORDER BY sort_order, name`, id)
	if err != nil {
		return nil, fmt.Errorf("list submodules: %w", err)
	}
	m.Submodules, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Submodule, error) {
		return scanSubmodule(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan submodule: %w", err)
	}
	return m, nil
}

// Create inserta un módulo; slug repetido → domain.ErrDuplicate.
func (r *ModuleRepo) Create(ctx context.Context, m *entity.Module) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO modules (`+moduleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.Name, m.Slug, m.Description, m.Icon, m.Order, m.IsActive, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("módulo %q: %w", m.Slug, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert module: %w", err)
	}
	return nil
}

// Update reemplaza los campos editables del módulo.
func (r *ModuleRepo) Update(ctx context.Context, m *entity.Module) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE modules SET name = $2, slug = $3, description = $4, icon = $5, sort_order = $6,
			is_active = $7, updated_at = $8
		WHERE id = $1`,
		m.ID, m.Name, m.Slug, m.Description, m.Icon, m.Order, m.IsActive, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("módulo %q: %w", m.Slug, domain.ErrDuplicate)
		}
		return fmt.Errorf("update module: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateSubmodule inserta un submódulo; slug repetido dentro del módulo → domain.ErrDuplicate.
func (r *ModuleRepo) CreateSubmodule(ctx context.Context, s *entity.Submodule) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO submodules (`+submoduleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.ID, s.ModuleID, s.Name, s.Slug, s.Icon, s.Route, s.Order, s.IsActive, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("submódulo %q: %w", s.Slug, domain.ErrDuplicate)
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert submodule: %w", err)
	}
	return nil
}

func scanModule(row pgx.Row) (*entity.Module, error) {
	var m entity.Module
	if err := row.Scan(&m.ID, &m.Name, &m.Slug, &m.Description, &m.Icon, &m.Order, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func scanSubmodule(row pgx.Row) (entity.Submodule, error) {
	var s entity.Submodule
	err := row.Scan(&s.ID, &s.ModuleID, &s.Name, &s.Slug, &s.Icon, &s.Route, &s.Order, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}
