package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/portal-unamad/internal/application/authz"
	"github.com/jhoicas/portal-unamad/internal/application/dto"
	"github.com/jhoicas/portal-unamad/internal/application/ports"
	"github.com/jhoicas/portal-unamad/internal/domain"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
	"github.com/jhoicas/portal-unamad/internal/domain/repository"
	"github.com/jhoicas/portal-unamad/pkg/jwt"
	"github.com/jhoicas/portal-unamad/pkg/validate"
)

// ForgotPasswordMessage es la única respuesta de forgot-password, exista o no la cuenta.
const ForgotPasswordMessage = "Si el correo está registrado, recibirás un enlace para restablecer tu contraseña."

// mailTimeout límite para cada envío en segundo plano.
const mailTimeout = 30 * time.Second

// Config parámetros de tokens y enlaces.
type Config struct {
	JWTSecret       string
	JWTIssuer       string
	JWTExpMinutes   int
	VerificationTTL time.Duration
	ResetTTL        time.Duration
	BaseURL         string // URL pública del frontend
}

// grantLister es lo que /me necesita de *authz.Service.
type grantLister interface {
	GetUserPermissions(ctx context.Context, userID string) ([]*entity.UserPermission, error)
}

// AuthUseCase registro, login, verificación de correo y gestión de contraseñas.
type AuthUseCase struct {
	users  repository.UserRepository
	audit  repository.AuditLogRepository
	grants grantLister
	mailer ports.Mailer
	cfg    Config
	log    zerolog.Logger

	now      func() time.Time
	newToken func() (string, error)
	// dispatch ejecuta trabajo en segundo plano (envío de correos); los tests lo vuelven síncrono.
	dispatch func(func())
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(users repository.UserRepository, audit repository.AuditLogRepository, grants grantLister, mailer ports.Mailer, cfg Config, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{
		users:    users,
		audit:    audit,
		grants:   grants,
		mailer:   mailer,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
		newToken: randomToken,
		dispatch: func(fn func()) { go fn() },
	}
}

// RegisterUser crea un USER inactivo y sin verificar y le envía el enlace de verificación.
// Devuelve ErrEmailAlreadyExists si el correo ya existe.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	if err := validate.Struct(&in); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	email := normalizeEmail(in.Email)
	existing, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	token, err := uc.newToken()
	if err != nil {
		return nil, err
	}
	now := uc.now()
	user := &entity.User{
		ID:                 uuid.New().String(),
		Email:              email,
		Name:               strings.TrimSpace(in.Name),
		PasswordHash:       string(hash),
		Role:               entity.RoleUser,
		VerificationToken:  &token,
		VerificationSentAt: &now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	link := uc.link("/verify-email", token)
	uc.background("verificación", func(ctx context.Context) error {
		return uc.mailer.SendVerification(ctx, user.Email, user.Name, link)
	})
	return toUserResponse(user), nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
// Credenciales incorrectas o usuario inexistente: ErrUnauthorized. Cuenta inactiva o sin verificar: ErrInactiveAccount.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := validate.Struct(&in); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	user, err := uc.users.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.CanLogin() {
		return nil, domain.ErrInactiveAccount
	}

	token, err := jwt.Generate(uc.cfg.JWTSecret, jwt.Subject{
		UserID: user.ID, Email: user.Email, Name: user.Name, Role: string(user.Role),
	}, uc.cfg.JWTIssuer, uc.cfg.JWTExpMinutes)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := uc.users.Update(ctx, user); err != nil {
		uc.log.Warn().Err(err).Str("user_id", user.ID).Msg("no se pudo registrar el último acceso")
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresIn: uc.cfg.JWTExpMinutes * 60,
		User:      *toUserResponse(user),
	}, nil
}

// VerifyEmail activa la cuenta si el token existe y se emitió hace menos de VerificationTTL.
func (uc *AuthUseCase) VerifyEmail(ctx context.Context, in dto.VerifyEmailRequest) (*dto.UserResponse, error) {
	if err := validate.Struct(&in); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	user, err := uc.users.GetByVerificationToken(ctx, in.Token)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	if user == nil || user.VerificationSentAt == nil || now.Sub(*user.VerificationSentAt) >= uc.cfg.VerificationTTL {
		return nil, domain.ErrInvalidToken
	}
	user.IsVerified = true
	user.IsActive = true
	user.VerificationToken = nil
	user.UpdatedAt = now
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}

	uc.background("bienvenida", func(ctx context.Context) error {
		return uc.mailer.SendWelcome(ctx, user.Email, user.Name)
	})
	return toUserResponse(user), nil
}

// ForgotPassword siempre responde ForgotPasswordMessage. La búsqueda, la emisión del token
// y el envío ocurren en segundo plano, así que ni el contenido ni el tiempo de respuesta
// dependen de que la cuenta exista o esté activa.
func (uc *AuthUseCase) ForgotPassword(ctx context.Context, in dto.ForgotPasswordRequest) (*dto.MessageResponse, error) {
	if err := validate.Struct(&in); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	email := normalizeEmail(in.Email)
	uc.background("recuperación", func(ctx context.Context) error {
		return uc.issueReset(ctx, email)
	})
	return &dto.MessageResponse{Message: ForgotPasswordMessage}, nil
}

func (uc *AuthUseCase) issueReset(ctx context.Context, email string) error {
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil || !user.IsActive {
		return nil
	}
	token, err := uc.newToken()
	if err != nil {
		return err
	}
	now := uc.now()
	expires := now.Add(uc.cfg.ResetTTL)
	user.ResetToken = &token
	user.ResetTokenExpiresAt = &expires
	user.UpdatedAt = now
	if err := uc.users.Update(ctx, user); err != nil {
		return err
	}
	return uc.mailer.SendPasswordReset(ctx, user.Email, user.Name, uc.link("/reset-password", token))
}

// ResetPassword consume el token de recuperación si no expiró y fija la nueva contraseña.
func (uc *AuthUseCase) ResetPassword(ctx context.Context, in dto.ResetPasswordRequest, meta entity.RequestMeta) error {
	if err := validate.Struct(&in); err != nil {
		return domain.NewValidationError(err.Error())
	}
	user, err := uc.users.GetByResetToken(ctx, in.Token)
	if err != nil {
		return err
	}
	now := uc.now()
	if user == nil || user.ResetTokenExpiresAt == nil || !now.Before(*user.ResetTokenExpiresAt) {
		return domain.ErrInvalidToken
	}
	if err := uc.setPassword(ctx, user, in.Password, now); err != nil {
		return err
	}
	uc.recordAudit(ctx, user.ID, entity.AuditPasswordReset, user.ID, nil, meta, now)
	return nil
}

// ChangePassword cambia la contraseña propia (exige la actual) o, si el actor es ADMIN o
// SUPER_ADMIN, la de otro usuario. Solo un SUPER_ADMIN cambia la de otro SUPER_ADMIN.
func (uc *AuthUseCase) ChangePassword(ctx context.Context, actor entity.Session, in dto.ChangePasswordRequest, meta entity.RequestMeta) error {
	if err := validate.Struct(&in); err != nil {
		return domain.NewValidationError(err.Error())
	}
	targetID := actor.UserID
	own := in.UserID == "" || in.UserID == actor.UserID
	if !own {
		if !entity.IsAdministrator(actor.Role) {
			return domain.ErrForbidden
		}
		targetID = in.UserID
	}

	user, err := uc.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if own {
		if in.CurrentPassword == "" {
			return domain.NewValidationError("el campo 'currentPassword' es obligatorio")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
			return domain.NewValidationError("la contraseña actual es incorrecta")
		}
	} else if entity.IsSuperuser(user.Role) && !actor.IsSuperuser() {
		return domain.ErrForbidden
	}

	now := uc.now()
	if err := uc.setPassword(ctx, user, in.NewPassword, now); err != nil {
		return err
	}
	uc.recordAudit(ctx, actor.UserID, entity.AuditPasswordChanged, user.ID, map[string]any{"own": own}, meta, now)
	return nil
}

// Me devuelve el usuario de la sesión con sus permisos vigentes.
func (uc *AuthUseCase) Me(ctx context.Context, actor entity.Session) (*dto.MeResponse, error) {
	user, err := uc.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	grants, err := uc.grants.GetUserPermissions(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &dto.MeResponse{User: *toUserResponse(user), Permissions: authz.ToUserPermissionResponses(grants)}, nil
}

func (uc *AuthUseCase) setPassword(ctx context.Context, user *entity.User, password string, now time.Time) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.ResetToken = nil
	user.ResetTokenExpiresAt = nil
	user.UpdatedAt = now
	return uc.users.Update(ctx, user)
}

// recordAudit escribe la auditoría de cambios de contraseña; un fallo solo se registra en el log.
func (uc *AuthUseCase) recordAudit(ctx context.Context, actorID, action, userID string, md map[string]any, meta entity.RequestMeta, now time.Time) {
	err := uc.audit.Create(ctx, &entity.AuditLog{
		ID: uuid.New().String(), UserID: actorID, Action: action, EntityType: "user", EntityID: userID,
		Metadata: md, IPAddress: meta.IPAddress, UserAgent: meta.UserAgent, CreatedAt: now,
	})
	if err != nil {
		uc.log.Error().Err(err).Str("action", action).Str("user_id", userID).Msg("no se pudo registrar la auditoría")
	}
}

// background corre fn fuera de la petición con su propio timeout; los errores solo se registran.
func (uc *AuthUseCase) background(what string, fn func(ctx context.Context) error) {
	uc.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			uc.log.Error().Err(err).Str("mail", what).Msg("falló el envío de correo")
		}
	})
}

func (uc *AuthUseCase) link(path, token string) string {
	return fmt.Sprintf("%s%s?token=%s", uc.cfg.BaseURL, path, url.QueryEscape(token))
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("token aleatorio: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
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
