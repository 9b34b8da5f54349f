package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/portal-unamad/internal/application/authz"
	"github.com/jhoicas/portal-unamad/internal/application/document"
	"github.com/jhoicas/portal-unamad/internal/domain/repository"
)

// Ensure TxRunner implements authz.GrantTxRunner and document.TxRunner.
var _ authz.GrantTxRunner = (*TxRunner)(nil)
var _ document.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunGrants asignación de permisos y su auditoría en una sola transacción.
func (r *TxRunner) RunGrants(ctx context.Context, fn func(
	perms repository.PermissionRepository,
	audit repository.AuditLogRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewPermissionRepository(tx), NewAuditLogRepository(tx))
	})
}

// RunConstancias transiciones y altas de constancias junto con su auditoría.
func (r *TxRunner) RunConstancias(ctx context.Context, fn func(
	docs repository.ConstanciaRepository,
	audit repository.AuditLogRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewConstanciaRepository(tx), NewAuditLogRepository(tx))
	})
}

// RunResoluciones transiciones y altas de resoluciones junto con su auditoría.
func (r *TxRunner) RunResoluciones(ctx context.Context, fn func(
	docs repository.ResolucionRepository,
	audit repository.AuditLogRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewResolucionRepository(tx), NewAuditLogRepository(tx))
	})
}
