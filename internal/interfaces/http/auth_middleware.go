package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/portal-unamad/internal/application/dto"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
	"github.com/jhoicas/portal-unamad/pkg/jwt"
)

// LocalSession clave de c.Locals donde vive la sesión resuelta de la petición.
const LocalSession = "session"

// userLoader es lo que la sesión necesita del repositorio de usuarios.
type userLoader interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

// SessionConfig cómo se lee y valida el token de sesión.
// Con Users, cada petición relee rol y estado del usuario: una baja o un cambio
// de rol se aplica sin esperar a que expire el token.
type SessionConfig struct {
	Secret     string
	CookieName string
	Users      userLoader
}

// SessionMiddleware exige una sesión válida (Bearer o cookie) y la deja en c.Locals.
// Sin token o con token inválido responde 401.
func SessionMiddleware(cfg SessionConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok, code, msg := tokenFrom(c, cfg.CookieName)
		if tok == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: code, Message: msg})
		}
		sess, ok := parseSession(cfg.Secret, tok)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		sess, ok, err := cfg.refresh(c.UserContext(), sess)
		if err != nil {
			return err
		}
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "sesión revocada"})
		}
		c.Locals(LocalSession, sess)
		return c.Next()
	}
}

// OptionalSession carga la sesión si hay un token válido; nunca corta la petición.
func OptionalSession(cfg SessionConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tok, _, _ := tokenFrom(c, cfg.CookieName); tok != "" {
			if sess, ok := parseSession(cfg.Secret, tok); ok {
				sess, ok, err := cfg.refresh(c.UserContext(), sess)
				if err != nil {
					return err
				}
				if ok {
					c.Locals(LocalSession, sess)
				}
			}
		}
		return c.Next()
	}
}

// refresh toma rol y estado vigentes del usuario. Usuario inexistente o inactivo: sesión inválida.
func (cfg SessionConfig) refresh(ctx context.Context, sess entity.Session) (entity.Session, bool, error) {
	if cfg.Users == nil {
		return sess, true, nil
	}
	u, err := cfg.Users.GetByID(ctx, sess.UserID)
	if err != nil {
		return entity.Session{}, false, err
	}
	if u == nil || !u.IsActive {
		return entity.Session{}, false, nil
	}
	sess.Role = u.Role
	return sess, true, nil
}

// tokenFrom prioriza el header Authorization sobre la cookie.
func tokenFrom(c *fiber.Ctx, cookieName string) (tok, code, msg string) {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", "INVALID_TOKEN", "formato: Bearer <token>"
		}
		if tok = strings.TrimSpace(parts[1]); tok == "" {
			return "", "MISSING_TOKEN", "token vacío"
		}
		return tok, "", ""
	}
	if cookieName != "" {
		if tok = c.Cookies(cookieName); tok != "" {
			return tok, "", ""
		}
	}
	return "", "MISSING_TOKEN", "sesión requerida"
}

func parseSession(secret, tok string) (entity.Session, bool) {
	claims, err := jwt.Parse(secret, tok)
	if err != nil {
		return entity.Session{}, false
	}
	role := entity.Role(claims.Role)
	if !role.Valid() {
		return entity.Session{}, false
	}
	return entity.Session{
		UserID: claims.UserID,
		Email:  claims.Email,
		Name:   claims.Name,
		Role:   role,
	}, true
}

// GetSession devuelve la sesión de la petición (después de SessionMiddleware u OptionalSession).
func GetSession(c *fiber.Ctx) (entity.Session, bool) {
	sess, ok := c.Locals(LocalSession).(entity.Session)
	return sess, ok && sess.UserID != ""
}

func sessionUserID(c *fiber.Ctx) string {
	sess, _ := GetSession(c)
	return sess.UserID
}

// requestMeta copia IP y User-Agent para la auditoría.
func requestMeta(c *fiber.Ctx) entity.RequestMeta {
	return entity.RequestMeta{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}
