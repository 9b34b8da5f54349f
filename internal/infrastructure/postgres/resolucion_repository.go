package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/portal-unamad/internal/domain"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
	"github.com/jhoicas/portal-unamad/internal/domain/repository"
)

var _ repository.ResolucionRepository = (*ResolucionRepo)(nil)

// ResolucionRepo resoluciones sobre PostgreSQL.
type ResolucionRepo struct {
	documentState
}

// NewResolucionRepository construye el repositorio de resoluciones.
func NewResolucionRepository(db Querier) *ResolucionRepo {
	return &ResolucionRepo{documentState{db: db, table: "resoluciones", kind: entity.KindResolucion}}
}

const resolucionColumns = `id, number, title, description, issued_at, file_path,
	status, created_by_id, approved_by_id, approved_at, created_at, updated_at`

// Create inserta la resolución; número repetido → domain.ErrDuplicate.
func (r *ResolucionRepo) Create(ctx context.Context, res *entity.Resolucion) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO resoluciones (`+resolucionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		res.ID, res.Number, res.Title, res.Description, res.IssuedAt, res.FilePath,
		string(res.Status), res.CreatedByID, res.ApprovedByID, res.ApprovedAt, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("resolución %q: %w", res.Number, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert resolucion: %w", err)
	}
	return nil
}

// GetByID devuelve la resolución o (nil, nil).
func (r *ResolucionRepo) GetByID(ctx context.Context, id string) (*entity.Resolucion, error) {
	res, err := scanResolucion(r.db.QueryRow(ctx, `SELECT `+resolucionColumns+` FROM resoluciones WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get resolucion: %w", err)
	}
	return res, nil
}

// List filtra por estado y busca en número y título. Orden: fecha de emisión descendente.
func (r *ResolucionRepo) List(ctx context.Context, f repository.DocumentFilter) ([]*entity.Resolucion, int, error) {
	where, args := documentWhere(f, "number", "title")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM resoluciones `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count resoluciones: %w", err)
	}

	n := len(args)
	query := `SELECT ` + resolucionColumns + ` FROM resoluciones ` + where +
		` ORDER BY issued_at DESC, created_at DESC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	rows, err := r.db.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list resoluciones: %w", err)
	}
	defer rows.Close()

	var list []*entity.Resolucion
	for rows.Next() {
		res, err := scanResolucion(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan resolucion: %w", err)
		}
		list = append(list, res)
	}
	return list, total, rows.Err()
}

// Delete elimina la resolución; domain.ErrNotFound si no existía.
func (r *ResolucionRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM resoluciones WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete resolucion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanResolucion(row pgx.Row) (*entity.Resolucion, error) {
	var res entity.Resolucion
	var status string
	err := row.Scan(
		&res.ID, &res.Number, &res.Title, &res.Description, &res.IssuedAt, &res.FilePath,
		&status, &res.CreatedByID, &res.ApprovedByID, &res.ApprovedAt, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	res.Status = entity.DocumentStatus(status)
	return &res, nil
}
