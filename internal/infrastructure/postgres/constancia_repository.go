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

var _ repository.ConstanciaRepository = (*ConstanciaRepo)(nil)

// ConstanciaRepo constancias sobre PostgreSQL.
type ConstanciaRepo struct {
	documentState
}

// NewConstanciaRepository construye el repositorio de constancias.
func NewConstanciaRepository(db Querier) *ConstanciaRepo {
	return &ConstanciaRepo{documentState{db: db, table: "constancias", kind: entity.KindConstancia}}
}

const constanciaColumns = `id, code, student_code, student_dni, student_name, type, purpose, file_path,
	status, created_by_id, approved_by_id, approved_at, created_at, updated_at`

// Create inserta la constancia. Si Code viene vacío se genera CONST-<año>-<correlativo>.
func (r *ConstanciaRepo) Create(ctx context.Context, c *entity.Constancia) error {
	query := `
		INSERT INTO constancias (` + constanciaColumns + `)
		VALUES ($1,
			COALESCE(NULLIF($2, ''), 'CONST-' || to_char($13::timestamptz, 'YYYY') || '-' || lpad(nextval('constancia_code_seq')::text, 6, '0')),
			$3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING code`
	err := r.db.QueryRow(ctx, query,
		c.ID, c.Code, c.StudentCode, c.StudentDNI, c.StudentName, c.Type, c.Purpose, c.FilePath,
		string(c.Status), c.CreatedByID, c.ApprovedByID, c.ApprovedAt, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.Code)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("constancia %q: %w", c.Code, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert constancia: %w", err)
	}
	return nil
}

// GetByID devuelve la constancia o (nil, nil).
func (r *ConstanciaRepo) GetByID(ctx context.Context, id string) (*entity.Constancia, error) {
	c, err := scanConstancia(r.db.QueryRow(ctx, `SELECT `+constanciaColumns+` FROM constancias WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get constancia: %w", err)
	}
	return c, nil
}

// List filtra por estado y busca en código, código de estudiante, DNI y nombre.
func (r *ConstanciaRepo) List(ctx context.Context, f repository.DocumentFilter) ([]*entity.Constancia, int, error) {
	where, args := documentWhere(f, "code", "student_code", "student_dni", "student_name")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM constancias `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count constancias: %w", err)
	}

	n := len(args)
	query := `SELECT ` + constanciaColumns + ` FROM constancias ` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	rows, err := r.db.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list constancias: %w", err)
	}
	defer rows.Close()

	var list []*entity.Constancia
	for rows.Next() {
		c, err := scanConstancia(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan constancia: %w", err)
		}
		list = append(list, c)
	}
	return list, total, rows.Err()
}

// Delete elimina la constancia; domain.ErrNotFound si no existía.
func (r *ConstanciaRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM constancias WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete constancia: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanConstancia(row pgx.Row) (*entity.Constancia, error) {
	var c entity.Constancia
	var status string
	err := row.Scan(
		&c.ID, &c.Code, &c.StudentCode, &c.StudentDNI, &c.StudentName, &c.Type, &c.Purpose, &c.FilePath,
		&status, &c.CreatedByID, &c.ApprovedByID, &c.ApprovedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Status = entity.DocumentStatus(status)
	return &c, nil
}
