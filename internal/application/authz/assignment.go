package authz

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/portal-unamad/internal/application/dto"
	"github.com/jhoicas/portal-unamad/internal/domain"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
	"github.com/jhoicas/portal-unamad/internal/domain/repository"
	"github.com/jhoicas/portal-unamad/pkg/validate"
)

// GrantTxRunner ejecuta fn dentro de una transacción con repositorios atados a ella.
type GrantTxRunner interface {
	RunGrants(ctx context.Context, fn func(perms repository.PermissionRepository, audit repository.AuditLogRepository) error) error
}

// Modos de asignación.
const (
	AssignAdd    = "add"
	AssignRemove = "remove"
	AssignSet    = "set"
)

// AssignmentUseCase altas, bajas y reemplazo masivo de concesiones.
type AssignmentUseCase struct {
	tx    GrantTxRunner
	perms repository.PermissionRepository
	users repository.UserRepository
	now   func() time.Time
}

// NewAssignmentUseCase construye el caso de uso de asignación.
func NewAssignmentUseCase(tx GrantTxRunner, perms repository.PermissionRepository, users repository.UserRepository) *AssignmentUseCase {
	return &AssignmentUseCase{tx: tx, perms: perms, users: users, now: time.Now}
}

type resolvedGrant struct {
	perm      *entity.Permission
	actions   []entity.Action
	expiresAt *time.Time
}

// Assign aplica req sobre el usuario indicado o sobre todos los usuarios del rol.
// La autorización (roles.access) la verifica el guard de la ruta.
func (uc *AssignmentUseCase) Assign(ctx context.Context, actor entity.Session, req dto.AssignPermissionsRequest, meta entity.RequestMeta) (*dto.AssignPermissionsResponse, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if (req.UserID == "") == (req.Role == "") {
		return nil, domain.NewValidationError("se debe indicar userId o role, no ambos")
	}
	if req.Action != AssignSet && len(req.Permissions) == 0 {
		return nil, domain.NewValidationError("el campo 'permissions' no puede estar vacío")
	}

	targets, err := uc.resolveTargets(ctx, req)
	if err != nil {
		return nil, err
	}
	grants, err := uc.resolveGrants(ctx, req)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	err = uc.tx.RunGrants(ctx, func(perms repository.PermissionRepository, audit repository.AuditLogRepository) error {
		for _, userID := range targets {
			if req.Action == AssignSet {
				if err := perms.DeleteAllGrants(ctx, userID); err != nil {
					return err
				}
			}
			for _, g := range grants {
				if req.Action == AssignRemove {
					if err := perms.DeleteGrant(ctx, userID, g.perm.ID); err != nil {
						return err
					}
					continue
				}
				grantedBy := actor.UserID
				if err := perms.UpsertGrant(ctx, &entity.UserPermission{
					ID:           uuid.New().String(),
					UserID:       userID,
					PermissionID: g.perm.ID,
					Actions:      g.actions,
					ExpiresAt:    g.expiresAt,
					GrantedByID:  &grantedBy,
					CreatedAt:    now,
				}); err != nil {
					return err
				}
			}
		}
		entityType, entityID := "user", req.UserID
		if req.Role != "" {
			entityType, entityID = "role", req.Role
		}
		return audit.Create(ctx, &entity.AuditLog{
			ID:         uuid.New().String(),
			UserID:     actor.UserID,
			Action:     entity.AuditPermissionsAssigned,
			EntityType: entityType,
			EntityID:   entityID,
			Metadata: map[string]any{
				"mode":        req.Action,
				"permissions": permissionCodes(grants),
				"users":       len(targets),
			},
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("authz: asignar permisos: %w", err)
	}
	return &dto.AssignPermissionsResponse{Action: req.Action, AffectedUsers: len(targets), Permissions: permissionCodes(grants)}, nil
}

func (uc *AssignmentUseCase) resolveTargets(ctx context.Context, req dto.AssignPermissionsRequest) ([]string, error) {
	if req.UserID != "" {
		u, err := uc.users.GetByID(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, domain.ErrUserNotFound
		}
		return []string{u.ID}, nil
	}
	return uc.users.ListIDsByRole(ctx, entity.Role(req.Role))
}

func (uc *AssignmentUseCase) resolveGrants(ctx context.Context, req dto.AssignPermissionsRequest) ([]resolvedGrant, error) {
	now := uc.now()
	out := make([]resolvedGrant, 0, len(req.Permissions))
	seen := map[string]bool{}
	for _, in := range req.Permissions {
		var (
			p   *entity.Permission
			err error
			ref = in.PermissionID
		)
		if in.PermissionID != "" {
			p, err = uc.perms.GetPermissionByID(ctx, in.PermissionID)
		} else {
			ref = in.Code
			p, err = uc.perms.GetPermissionByCode(ctx, in.Code)
		}
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("%w: permiso %s", domain.ErrNotFound, ref)
		}
		if seen[p.ID] {
			return nil, domain.NewValidationError(fmt.Sprintf("el permiso '%s' está repetido", p.Code))
		}
		seen[p.ID] = true

		actions := make([]entity.Action, 0, len(in.Actions))
		for _, a := range in.Actions {
			act := entity.Action(a)
			if !act.Valid() {
				return nil, domain.NewValidationError(fmt.Sprintf("acción '%s' no válida", a))
			}
			if !p.Supports(act) {
				return nil, domain.NewValidationError(fmt.Sprintf("el permiso '%s' no admite la acción %s", p.Code, a))
			}
			actions = append(actions, act)
		}
		if len(actions) == 0 {
			actions = []entity.Action{entity.ActionRead}
		}
		if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
			return nil, domain.NewValidationError("el campo 'expiresAt' debe ser una fecha futura")
		}
		out = append(out, resolvedGrant{perm: p, actions: actions, expiresAt: in.ExpiresAt})
	}
	return out, nil
}

func permissionCodes(grants []resolvedGrant) []string {
	codes := make([]string, 0, len(grants))
	for _, g := range grants {
		codes = append(codes, g.perm.Code)
	}
	return codes
}
