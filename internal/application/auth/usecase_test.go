package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/portal-unamad/internal/application/dto"
	"github.com/jhoicas/portal-unamad/internal/domain"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
	pkgjwt "github.com/jhoicas/portal-unamad/pkg/jwt"
)

// ─── fakes ───────────────────────────────────────────────────────────────────

type memUsers struct {
	byID map[string]*entity.User
}

func (m *memUsers) find(pred func(*entity.User) bool) *entity.User {
	for _, u := range m.byID {
		if pred(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}
func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return u.ID == id }), nil
}
func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return u.Email == email }), nil
}
func (m *memUsers) GetByVerificationToken(_ context.Context, t string) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return u.VerificationToken != nil && *u.VerificationToken == t }), nil
}
func (m *memUsers) GetByResetToken(_ context.Context, t string) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return u.ResetToken != nil && *u.ResetToken == t }), nil
}
func (m *memUsers) Update(_ context.Context, u *entity.User) error {
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}
func (m *memUsers) List(context.Context, int, int) ([]*entity.User, int, error) { return nil, 0, nil }
func (m *memUsers) ListIDsByRole(context.Context, entity.Role) ([]string, error) {
	return nil, nil
}

type memAudit struct{ logs []*entity.AuditLog }

func (m *memAudit) Create(_ context.Context, l *entity.AuditLog) error {
	m.logs = append(m.logs, l)
	return nil
}
func (m *memAudit) ListByEntity(context.Context, string, string) ([]*entity.AuditLog, error) {
	return nil, nil
}

type sentMail struct{ kind, to, link string }

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) SendVerification(_ context.Context, to, _, link string) error {
	f.sent = append(f.sent, sentMail{"verification", to, link})
	return f.err
}
func (f *fakeMailer) SendWelcome(_ context.Context, to, _ string) error {
	f.sent = append(f.sent, sentMail{"welcome", to, ""})
	return f.err
}
func (f *fakeMailer) SendPasswordReset(_ context.Context, to, _, link string) error {
	f.sent = append(f.sent, sentMail{"reset", to, link})
	return f.err
}

type fakeGrants struct{ grants []*entity.UserPermission }

func (f *fakeGrants) GetUserPermissions(context.Context, string) ([]*entity.UserPermission, error) {
	return f.grants, nil
}

var t0 = time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	uc     *AuthUseCase
	users  *memUsers
	audit  *memAudit
	mailer *fakeMailer
	clock  time.Time
}

func newFixture() *fixture {
	f := &fixture{users: &memUsers{byID: map[string]*entity.User{}}, audit: &memAudit{}, mailer: &fakeMailer{}, clock: t0}
	f.uc = NewAuthUseCase(f.users, f.audit, &fakeGrants{}, f.mailer, Config{
		JWTSecret: "secreto-de-prueba", JWTIssuer: "portal-unamad", JWTExpMinutes: 60,
		VerificationTTL: 24 * time.Hour, ResetTTL: time.Hour, BaseURL: "https://portal.unamad.edu.pe",
	}, zerolog.Nop())
	f.uc.now = func() time.Time { return f.clock }
	seq := 0
	f.uc.newToken = func() (string, error) {
		seq++
		return fmt.Sprintf("token-%02d-abcdefghijklmnop", seq), nil
	}
	f.uc.dispatch = func(fn func()) { fn() }
	return f
}

func (f *fixture) addUser(id, email, password string, role entity.Role, active bool) *entity.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u := &entity.User{ID: id, Email: email, Name: "Usuario " + id, PasswordHash: string(hash), Role: role, IsActive: active, IsVerified: active}
	f.users.byID[id] = u
	return u
}

// ─── Registro y verificación ─────────────────────────────────────────────────

func TestRegister_CreaInactivoYEnviaVerificacion(t *testing.T) {
	f := newFixture()
	res, err := f.uc.RegisterUser(context.Background(), dto.RegisterRequest{Email: " Ana@UNAMAD.edu.pe ", Password: "clave-segura", Name: "Ana"})
	require.NoError(t, err)

	assert.Equal(t, "ana@unamad.edu.pe", res.Email)
	assert.Equal(t, "USER", res.Role)
	assert.False(t, res.IsActive)
	assert.False(t, res.IsVerified)
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "https://portal.unamad.edu.pe/verify-email?token=token-01-abcdefghijklmnop", f.mailer.sent[0].link)
}

func TestRegister_EmailDuplicado(t *testing.T) {
	f := newFixture()
	f.addUser("u1", "ana@unamad.edu.pe", "x", entity.RoleUser, true)
	_, err := f.uc.RegisterUser(context.Background(), dto.RegisterRequest{Email: "ana@unamad.edu.pe", Password: "clave-segura", Name: "Ana"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegister_FalloDeCorreoNoAbortaRegistro(t *testing.T) {
	f := newFixture()
	f.mailer.err = errors.New("smtp caído")
	_, err := f.uc.RegisterUser(context.Background(), dto.RegisterRequest{Email: "b@unamad.edu.pe", Password: "clave-segura", Name: "Beto"})
	assert.NoError(t, err)
	assert.Len(t, f.users.byID, 1)
}

func TestVerifyEmail_DentroDelPlazoActiva(t *testing.T) {
	f := newFixture()
	_, err := f.uc.RegisterUser(context.Background(), dto.RegisterRequest{Email: "c@unamad.edu.pe", Password: "clave-segura", Name: "Carla"})
	require.NoError(t, err)

	f.clock = t0.Add(23 * time.Hour)
	res, err := f.uc.VerifyEmail(context.Background(), dto.VerifyEmailRequest{Token: "token-01-abcdefghijklmnop"})
	require.NoError(t, err)
	assert.True(t, res.IsActive)
	assert.True(t, res.IsVerified)
	assert.Equal(t, "welcome", f.mailer.sent[1].kind)

	_, err = f.uc.VerifyEmail(context.Background(), dto.VerifyEmailRequest{Token: "token-01-abcdefghijklmnop"})
	assert.ErrorIs(t, err, domain.ErrInvalidToken, "el token se consume")
}

func TestVerifyEmail_Vencido(t *testing.T) {
	f := newFixture()
	_, err := f.uc.RegisterUser(context.Background(), dto.RegisterRequest{Email: "d@unamad.edu.pe", Password: "clave-segura", Name: "Dario"})
	require.NoError(t, err)

	f.clock = t0.Add(24 * time.Hour)
	_, err = f.uc.VerifyEmail(context.Background(), dto.VerifyEmailRequest{Token: "token-01-abcdefghijklmnop"})
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

// ─── Login ───────────────────────────────────────────────────────────────────

func TestLogin_OK(t *testing.T) {
	f := newFixture()
	f.addUser("u1", "ana@unamad.edu.pe", "clave-segura", entity.RoleAdmin, true)

	res, err := f.uc.Login(context.Background(), dto.LoginRequest{Email: "ANA@unamad.edu.pe", Password: "clave-segura"})
	require.NoError(t, err)
	assert.Equal(t, 3600, res.ExpiresIn)

	claims, err := pkgjwt.Parse("secreto-de-prueba", res.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, t0, *f.users.byID["u1"].LastLoginAt)
}

func TestLogin_Fallos(t *testing.T) {
	f := newFixture()
	f.addUser("u1", "ana@unamad.edu.pe", "clave-segura", entity.RoleUser, true)
	f.addUser("u2", "inactivo@unamad.edu.pe", "clave-segura", entity.RoleUser, false)

	_, err := f.uc.Login(context.Background(), dto.LoginRequest{Email: "ana@unamad.edu.pe", Password: "otra"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.uc.Login(context.Background(), dto.LoginRequest{Email: "nadie@unamad.edu.pe", Password: "clave-segura"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.uc.Login(context.Background(), dto.LoginRequest{Email: "inactivo@unamad.edu.pe", Password: "clave-segura"})
	assert.ErrorIs(t, err, domain.ErrInactiveAccount)

	_, err = f.uc.Login(context.Background(), dto.LoginRequest{Email: "no-es-correo", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ─── Recuperación de contraseña ──────────────────────────────────────────────

func TestForgotPassword_MismaRespuestaExistaONo(t *testing.T) {
	f := newFixture()
	f.addUser("u1", "activo@unamad.edu.pe", "clave-segura", entity.RoleUser, true)
	f.addUser("u2", "inactivo@unamad.edu.pe", "clave-segura", entity.RoleUser, false)

	var msgs []dto.MessageResponse
	for _, email := range []string{"nadie@unamad.edu.pe", "inactivo@unamad.edu.pe", "activo@unamad.edu.pe"} {
		res, err := f.uc.ForgotPassword(context.Background(), dto.ForgotPasswordRequest{Email: email})
		require.NoError(t, err)
		msgs = append(msgs, *res)
	}
	assert.Equal(t, msgs[0], msgs[1])
	assert.Equal(t, msgs[1], msgs[2])
	assert.Equal(t, ForgotPasswordMessage, msgs[0].Message)

	require.Len(t, f.mailer.sent, 1, "solo la cuenta activa recibe el enlace")
	assert.Equal(t, "activo@unamad.edu.pe", f.mailer.sent[0].to)
	assert.Nil(t, f.users.byID["u2"].ResetToken)
	require.NotNil(t, f.users.byID["u1"].ResetTokenExpiresAt)
	assert.Equal(t, t0.Add(time.Hour), *f.users.byID["u1"].ResetTokenExpiresAt)
}

func TestForgotPassword_FalloDeCorreoMantieneRespuesta(t *testing.T) {
	f := newFixture()
	f.addUser("u1", "activo@unamad.edu.pe", "clave-segura", entity.RoleUser, true)
	f.mailer.err = errors.New("smtp caído")

	res, err := f.uc.ForgotPassword(context.Background(), dto.ForgotPasswordRequest{Email: "activo@unamad.edu.pe"})
	require.NoError(t, err)
	assert.Equal(t, ForgotPasswordMessage, res.Message)
}

func TestResetPassword_ConsumeToken(t *testing.T) {
	f := newFixture()
	f.addUser("u1", "activo@unamad.edu.pe", "clave-vieja", entity.RoleUser, true)
	_, err := f.uc.ForgotPassword(context.Background(), dto.ForgotPasswordRequest{Email: "activo@unamad.edu.pe"})
	require.NoError(t, err)

	f.clock = t0.Add(59 * time.Minute)
	req := dto.ResetPasswordRequest{Token: "token-01-abcdefghijklmnop", Password: "clave-nueva-1"}
	require.NoError(t, f.uc.ResetPassword(context.Background(), req, entity.RequestMeta{}))

	u := f.users.byID["u1"]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("clave-nueva-1")))
	assert.Nil(t, u.ResetToken)
	require.Len(t, f.audit.logs, 1)
	assert.Equal(t, entity.AuditPasswordReset, f.audit.logs[0].Action)

	assert.ErrorIs(t, f.uc.ResetPassword(context.Background(), req, entity.RequestMeta{}), domain.ErrInvalidToken)
}

func TestResetPassword_Vencido(t *testing.T) {
	f := newFixture()
	f.addUser("u1", "activo@unamad.edu.pe", "clave-vieja", entity.RoleUser, true)
	_, err := f.uc.ForgotPassword(context.Background(), dto.ForgotPasswordRequest{Email: "activo@unamad.edu.pe"})
	require.NoError(t, err)

	f.clock = t0.Add(time.Hour)
	err = f.uc.ResetPassword(context.Background(), dto.ResetPasswordRequest{Token: "token-01-abcdefghijklmnop", Password: "clave-nueva-1"}, entity.RequestMeta{})
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

// ─── Cambio de contraseña ────────────────────────────────────────────────────

func TestChangePassword_PropiaExigeActual(t *testing.T) {
	f := newFixture()
	f.addUser("11111111-1111-1111-1111-111111111111", "a@unamad.edu.pe", "clave-vieja", entity.RoleUser, true)
	actor := entity.Session{UserID: "11111111-1111-1111-1111-111111111111", Role: entity.RoleUser}

	err := f.uc.ChangePassword(context.Background(), actor, dto.ChangePasswordRequest{NewPassword: "clave-nueva-1"}, entity.RequestMeta{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = f.uc.ChangePassword(context.Background(), actor, dto.ChangePasswordRequest{CurrentPassword: "mala", NewPassword: "clave-nueva-1"}, entity.RequestMeta{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = f.uc.ChangePassword(context.Background(), actor, dto.ChangePasswordRequest{CurrentPassword: "clave-vieja", NewPassword: "clave-nueva-1"}, entity.RequestMeta{})
	require.NoError(t, err)
	u := f.users.byID[actor.UserID]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("clave-nueva-1")))
}

func TestChangePassword_DeOtroUsuario(t *testing.T) {
	target := "22222222-2222-2222-2222-222222222222"
	root := "33333333-3333-3333-3333-333333333333"

	cases := []struct {
		nombre  string
		actor   entity.Role
		target  entity.Role
		wantErr error
	}{
		{"usuario común no puede", entity.RoleUser, entity.RoleUser, domain.ErrForbidden},
		{"moderador no puede", entity.RoleModerator, entity.RoleUser, domain.ErrForbidden},
		{"admin sin contraseña actual", entity.RoleAdmin, entity.RoleUser, nil},
		{"admin no toca superadmin", entity.RoleAdmin, entity.RoleSuperAdmin, domain.ErrForbidden},
		{"superadmin toca superadmin", entity.RoleSuperAdmin, entity.RoleSuperAdmin, nil},
	}
	for _, tc := range cases {
		t.Run(tc.nombre, func(t *testing.T) {
			f := newFixture()
			f.addUser(target, "t@unamad.edu.pe", "clave-vieja", tc.target, true)
			actor := entity.Session{UserID: root, Role: tc.actor}

			err := f.uc.ChangePassword(context.Background(), actor, dto.ChangePasswordRequest{UserID: target, NewPassword: "clave-nueva-1"}, entity.RequestMeta{})
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, f.audit.logs, 1)
			assert.Equal(t, root, f.audit.logs[0].UserID)
			assert.Equal(t, target, f.audit.logs[0].EntityID)
		})
	}
}

func TestChangePassword_UsuarioInexistente(t *testing.T) {
	f := newFixture()
	actor := entity.Session{UserID: "33333333-3333-3333-3333-333333333333", Role: entity.RoleAdmin}
	err := f.uc.ChangePassword(context.Background(), actor, dto.ChangePasswordRequest{UserID: "44444444-4444-4444-4444-444444444444", NewPassword: "clave-nueva-1"}, entity.RequestMeta{})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

// ─── Me ──────────────────────────────────────────────────────────────────────

func TestMe_IncluyePermisos(t *testing.T) {
	f := newFixture()
	f.addUser("u1", "a@unamad.edu.pe", "x", entity.RoleUser, true)
	f.uc.grants = &fakeGrants{grants: []*entity.UserPermission{{
		ID: "g1", Actions: []entity.Action{entity.ActionRead},
		Permission: &entity.Permission{ID: "p1", Code: entity.PermConstancias, Actions: entity.AllActions},
	}}}

	res, err := f.uc.Me(context.Background(), entity.Session{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "a@unamad.edu.pe", res.User.Email)
	require.Len(t, res.Permissions, 1)
	assert.Equal(t, entity.PermConstancias, res.Permissions[0].Permission.Code)
	assert.Equal(t, []string{"READ"}, res.Permissions[0].Actions)
}
