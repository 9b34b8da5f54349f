package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/portal-unamad/internal/application/dto"
	"github.com/jhoicas/portal-unamad/internal/domain"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
	"github.com/jhoicas/portal-unamad/internal/domain/repository"
	"github.com/jhoicas/portal-unamad/pkg/validate"
)

// UserUseCase administración de usuarios (rol, estado, nombre). La ruta exige users.access.
type UserUseCase struct {
	repo  repository.UserRepository
	audit repository.AuditLogRepository
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, audit repository.AuditLogRepository) *UserUseCase {
	return &UserUseCase{repo: repo, audit: audit}
}

// List devuelve una página de usuarios.
func (uc *UserUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.UserListResponse, error) {
	page.DefaultPage()
	users, total, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, *entityToUserResponse(u))
	}
	return &dto.UserListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total}}, nil
}

// Update aplica los cambios presentes en in. Nadie puede desactivarse ni cambiarse el rol a sí
// mismo, y solo un SUPER_ADMIN asigna o retira el rol SUPER_ADMIN.
func (uc *UserUseCase) Update(ctx context.Context, actor entity.Session, id string, in dto.UpdateUserRequest, meta entity.RequestMeta) (*dto.UserResponse, error) {
	if err := validate.Struct(&in); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	changes := map[string]any{}
	if in.Role != nil && entity.Role(*in.Role) != user.Role {
		role := entity.Role(*in.Role)
		if user.ID == actor.UserID {
			return nil, domain.NewValidationError("no puedes cambiar tu propio rol")
		}
		if (entity.IsSuperuser(role) || entity.IsSuperuser(user.Role)) && !actor.IsSuperuser() {
			return nil, domain.ErrForbidden
		}
		changes["role"] = map[string]any{"from": string(user.Role), "to": string(role)}
		user.Role = role
	}
	if in.IsActive != nil && *in.IsActive != user.IsActive {
		if user.ID == actor.UserID && !*in.IsActive {
			return nil, domain.NewValidationError("no puedes desactivar tu propia cuenta")
		}
		if entity.IsSuperuser(user.Role) && !actor.IsSuperuser() {
			return nil, domain.ErrForbidden
		}
		changes["isActive"] = *in.IsActive
		user.IsActive = *in.IsActive
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) != user.Name {
		user.Name = strings.TrimSpace(*in.Name)
		changes["name"] = user.Name
	}
	if len(changes) == 0 {
		return entityToUserResponse(user), nil
	}

	now := time.Now()
	user.UpdatedAt = now
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := uc.audit.Create(ctx, &entity.AuditLog{
		ID: uuid.New().String(), UserID: actor.UserID, Action: entity.AuditUserUpdated,
		EntityType: "user", EntityID: user.ID, Metadata: changes,
		IPAddress: meta.IPAddress, UserAgent: meta.UserAgent, CreatedAt: now,
	}); err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        string(u.Role),
		IsActive:    u.IsActive,
		IsVerified:  u.IsVerified,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
