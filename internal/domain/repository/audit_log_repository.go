package repository

import (
	"context"

	"github.com/jhoicas/portal-unamad/internal/domain/entity"
)

// AuditLogRepository puerto del registro de auditoría.
type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]*entity.AuditLog, error)
}
