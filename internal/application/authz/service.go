// Package authz implementa el servicio de permisos: consultas de solo lectura sobre las
// concesiones vigentes de un usuario y el punto único de autorización con bypass de superusuario.
package authz

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/portal-unamad/internal/domain/entity"
	"github.com/jhoicas/portal-unamad/internal/domain/repository"
)

// Service consulta el almacén de permisos. No guarda estado ni cachea resultados.
type Service struct {
	perms repository.PermissionRepository
	now   func() time.Time
}

// NewService construye el servicio de permisos.
func NewService(perms repository.PermissionRepository) *Service {
	return &Service{perms: perms, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// actionOrRead: una acción omitida equivale a READ en las tres consultas.
func actionOrRead(action *entity.Action) entity.Action {
	if action == nil || *action == "" {
		return entity.ActionRead
	}
	return *action
}

// HasPermission informa si el usuario tiene una concesión vigente de code que incluye action.
func (s *Service) HasPermission(ctx context.Context, userID, code string, action *entity.Action) (bool, error) {
	if userID == "" || code == "" {
		return false, nil
	}
	grant, err := s.perms.FindActiveGrant(ctx, userID, code, s.now())
	if err != nil {
		return false, fmt.Errorf("authz: buscar concesión %s: %w", code, err)
	}
	if grant == nil {
		return false, nil
	}
	return grant.HasAction(actionOrRead(action)), nil
}

// HasAnyPermission informa si al menos uno de codes está concedido con action.
func (s *Service) HasAnyPermission(ctx context.Context, userID string, codes []string, action *entity.Action) (bool, error) {
	codes = distinct(codes)
	if userID == "" || len(codes) == 0 {
		return false, nil
	}
	n, err := s.perms.CountActiveGrants(ctx, userID, codes, actionOrRead(action), s.now())
	if err != nil {
		return false, fmt.Errorf("authz: contar concesiones: %w", err)
	}
	return n > 0, nil
}

// HasAllPermissions informa si todos los codes (sin repetidos) están concedidos con action.
// Una lista vacía se considera satisfecha.
func (s *Service) HasAllPermissions(ctx context.Context, userID string, codes []string, action *entity.Action) (bool, error) {
	codes = distinct(codes)
	if len(codes) == 0 {
		return true, nil
	}
	if userID == "" {
		return false, nil
	}
	n, err := s.perms.CountActiveGrants(ctx, userID, codes, actionOrRead(action), s.now())
	if err != nil {
		return false, fmt.Errorf("authz: contar concesiones: %w", err)
	}
	return n == len(codes), nil
}

// GetUserPermissions devuelve todas las concesiones vigentes con su permiso, sin filtrar por acción.
func (s *Service) GetUserPermissions(ctx context.Context, userID string) ([]*entity.UserPermission, error) {
	grants, err := s.perms.ListActiveGrants(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("authz: listar concesiones: %w", err)
	}
	return grants, nil
}

// Can es el punto de entrada de los guards y casos de uso: el superusuario pasa siempre,
// el resto depende de HasPermission.
func (s *Service) Can(ctx context.Context, sess entity.Session, code string, action entity.Action) (bool, error) {
	if sess.UserID == "" {
		return false, nil
	}
	if entity.IsSuperuser(sess.Role) {
		return true, nil
	}
	return s.HasPermission(ctx, sess.UserID, code, &action)
}

func distinct(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
