package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/portal-unamad/internal/domain/entity"
	"github.com/jhoicas/portal-unamad/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo registro de auditoría sobre PostgreSQL (metadata en JSONB).
type AuditLogRepo struct {
	db Querier
}

// NewAuditLogRepository construye el repositorio de auditoría.
func NewAuditLogRepository(db Querier) *AuditLogRepo {
	return &AuditLogRepo{db: db}
}

// Create inserta una fila de auditoría.
func (r *AuditLogRepo) Create(ctx context.Context, l *entity.AuditLog) error {
	metadata := l.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("audit metadata: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO audit_logs (id, user_id, action, entity_type, entity_id, metadata, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID, nullIfEmpty(l.UserID), l.Action, l.EntityType, l.EntityID, raw, l.IPAddress, l.UserAgent, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// ListByEntity devuelve el historial de la entidad en orden cronológico.
func (r *AuditLogRepo) ListByEntity(ctx context.Context, entityType, entityID string) ([]*entity.AuditLog, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, COALESCE(user_id::text, ''), action, entity_type, entity_id, metadata, ip_address, user_agent, created_at
		FROM audit_logs
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at, id`, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var list []*entity.AuditLog
	for rows.Next() {
		var l entity.AuditLog
		var raw []byte
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.EntityType, &l.EntityID, &raw, &l.IPAddress, &l.UserAgent, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &l.Metadata); err != nil {
				return nil, fmt.Errorf("audit metadata: %w", err)
			}
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
