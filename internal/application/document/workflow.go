package document

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/portal-unamad/internal/application/dto"
	"github.com/jhoicas/portal-unamad/internal/domain"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
	"github.com/jhoicas/portal-unamad/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción con los repositorios atados a ella.
type TxRunner interface {
	RunConstancias(ctx context.Context, fn func(docs repository.ConstanciaRepository, audit repository.AuditLogRepository) error) error
	RunResoluciones(ctx context.Context, fn func(docs repository.ResolucionRepository, audit repository.AuditLogRepository) error) error
}

// permissionChecker es lo que el flujo necesita de *authz.Service.
type permissionChecker interface {
	Can(ctx context.Context, sess entity.Session, code string, action entity.Action) (bool, error)
}

func runState(ctx context.Context, tx TxRunner, kind entity.DocumentKind, fn func(docs repository.DocumentStateRepository, audit repository.AuditLogRepository) error) error {
	switch kind {
	case entity.KindConstancia:
		return tx.RunConstancias(ctx, func(docs repository.ConstanciaRepository, audit repository.AuditLogRepository) error {
			return fn(docs, audit)
		})
	case entity.KindResolucion:
		return tx.RunResoluciones(ctx, func(docs repository.ResolucionRepository, audit repository.AuditLogRepository) error {
			return fn(docs, audit)
		})
	}
	return fmt.Errorf("tipo de documento %q: %w", kind, domain.ErrNotFound)
}

// Approve pasa el documento a APROBADO registrando actor y fecha.
// Exige UPDATE sobre el permiso del tipo y que el documento siga PENDIENTE;
// si ya fue procesado devuelve domain.ErrAlreadyProcessed sin modificarlo.
func (s *Service) Approve(ctx context.Context, actor entity.Session, kind entity.DocumentKind, id string, meta entity.RequestMeta) (*dto.TransitionResponse, error) {
	return s.transition(ctx, actor, kind, id, "", true, meta)
}

// Reject pasa el documento a RECHAZADO según la política del tipo.
func (s *Service) Reject(ctx context.Context, actor entity.Session, kind entity.DocumentKind, id, reason string, meta entity.RequestMeta) (*dto.TransitionResponse, error) {
	return s.transition(ctx, actor, kind, id, reason, false, meta)
}

func (s *Service) transition(ctx context.Context, actor entity.Session, kind entity.DocumentKind, id, reason string, approve bool, meta entity.RequestMeta) (*dto.TransitionResponse, error) {
	policy, ok := PolicyFor(kind)
	if !ok {
		return nil, fmt.Errorf("tipo de documento %q: %w", kind, domain.ErrNotFound)
	}
	if err := s.authorize(ctx, actor, kind, entity.ActionUpdate); err != nil {
		return nil, err
	}

	var out *dto.TransitionResponse
	err := runState(ctx, s.tx, kind, func(docs repository.DocumentStateRepository, audit repository.AuditLogRepository) error {
		st, err := docs.GetState(ctx, id)
		if err != nil {
			return err
		}
		if st == nil {
			return domain.ErrNotFound
		}

		now := s.now()
		t := repository.Transition{ID: id}
		auditAction := entity.AuditDocumentApproved
		if approve {
			if !policy.CanApprove(st.Status) {
				return fmt.Errorf("%w (estado actual: %s)", domain.ErrAlreadyProcessed, st.Status)
			}
			actorID := actor.UserID
			t.From = policy.ApproveFrom
			t.To = entity.StatusAprobado
			t.ApprovedByID = &actorID
			t.ApprovedAt = &now
		} else {
			if !policy.CanReject(st.Status) {
				return fmt.Errorf("%w (estado actual: %s)", domain.ErrAlreadyProcessed, st.Status)
			}
			t.From = policy.RejectFrom
			t.To = entity.StatusRechazado
			t.ClearApproval = policy.RejectClearsApproval
			auditAction = entity.AuditDocumentRejected
		}

		applied, err := docs.ApplyTransition(ctx, t)
		if err != nil {
			return err
		}
		if !applied {
			// otra petición cambió el estado entre la lectura y la actualización
			return domain.ErrAlreadyProcessed
		}

		metadata := map[string]any{
			"kind":       string(kind),
			"fromStatus": string(st.Status),
			"toStatus":   string(t.To),
		}
		if reason != "" {
			metadata["reason"] = reason
		}
		if err := audit.Create(ctx, &entity.AuditLog{
			ID:         uuid.New().String(),
			UserID:     actor.UserID,
			Action:     auditAction,
			EntityType: string(kind),
			EntityID:   id,
			Metadata:   metadata,
			IPAddress:  meta.IPAddress,
			UserAgent:  meta.UserAgent,
			CreatedAt:  now,
		}); err != nil {
			return err
		}

		out = &dto.TransitionResponse{ID: id, Kind: string(kind), Status: string(t.To)}
		switch {
		case approve:
			out.ApprovedByID = t.ApprovedByID
			out.ApprovedAt = t.ApprovedAt
			out.Message = "Documento aprobado"
		case t.ClearApproval:
			out.Message = "Documento rechazado"
		default:
			out.ApprovedByID = st.ApprovedByID
			out.ApprovedAt = st.ApprovedAt
			out.Message = "Documento rechazado"
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) authorize(ctx context.Context, actor entity.Session, kind entity.DocumentKind, action entity.Action) error {
	ok, err := s.authz.Can(ctx, actor, kind.PermissionCode(), action)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrForbidden
	}
	return nil
}
