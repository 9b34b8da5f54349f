package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/portal-unamad/internal/domain/entity"
	"github.com/jhoicas/portal-unamad/internal/domain/repository"
)

// documentState implementa DocumentStateRepository sobre una tabla con las columnas
// status, approved_by_id y approved_at. table es una constante interna, nunca entrada del usuario.
type documentState struct {
	db    Querier
	table string
	kind  entity.DocumentKind
}

// GetState lee el estado con FOR UPDATE cuando corre dentro de una transacción.
func (d documentState) GetState(ctx context.Context, id string) (*entity.DocumentState, error) {
	query := `SELECT id, status, created_by_id, approved_by_id, approved_at FROM ` + d.table + ` WHERE id = $1 FOR UPDATE`
	var st entity.DocumentState
	var status string
	err := d.db.QueryRow(ctx, query, id).Scan(&st.ID, &status, &st.CreatedByID, &st.ApprovedByID, &st.ApprovedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s state: %w", d.kind, err)
	}
	st.Kind = d.kind
	st.Status = entity.DocumentStatus(status)
	return &st, nil
}

// ApplyTransition actualiza solo si el estado actual está en t.From.
func (d documentState) ApplyTransition(ctx context.Context, t repository.Transition) (bool, error) {
	var query string
	var args []any
	switch {
	case t.ApprovedByID != nil:
		query = `UPDATE ` + d.table + ` SET status = $3, approved_by_id = $4, approved_at = $5, updated_at = now()
			WHERE id = $1 AND status = ANY($2)`
		args = []any{t.ID, statusesToText(t.From), string(t.To), *t.ApprovedByID, t.ApprovedAt}
	case t.ClearApproval:
		query = `UPDATE ` + d.table + ` SET status = $3, approved_by_id = NULL, approved_at = NULL, updated_at = now()
			WHERE id = $1 AND status = ANY($2)`
		args = []any{t.ID, statusesToText(t.From), string(t.To)}
	default:
		query = `UPDATE ` + d.table + ` SET status = $3, updated_at = now()
			WHERE id = $1 AND status = ANY($2)`
		args = []any{t.ID, statusesToText(t.From), string(t.To)}
	}
	tag, err := d.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("transition %s: %w", d.kind, err)
	}
	return tag.RowsAffected() == 1, nil
}

func documentWhere(f repository.DocumentFilter, searchCols ...string) (string, []any) {
	where := `WHERE ($1 = '' OR status = $1)`
	args := []any{string(f.Status)}
	if f.Search != "" {
		args = append(args, likePattern(f.Search))
		where += ` AND (`
		for i, c := range searchCols {
			if i > 0 {
				where += ` OR `
			}
			where += c + ` ILIKE $2`
		}
		where += `)`
	}
	return where, args
}
