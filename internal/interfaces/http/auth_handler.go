package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/portal-unamad/internal/application/auth"
	"github.com/jhoicas/portal-unamad/internal/application/dto"
)

// CookieConfig cookie de sesión que se emite en el login.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler maneja registro, login y los flujos de cuenta.
type AuthHandler struct {
	uc     *auth.AuthUseCase
	cookie CookieConfig
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{uc: uc, cookie: cookie}
}

// Register godoc
// @Summary      Registrar usuario
// @Description  Crea un usuario inactivo y envía el correo de verificación.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "email, password, name"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	user, err := h.uc.RegisterUser(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login godoc
// @Summary      Iniciar sesión
// @Description  Devuelve el JWT y además lo deja en la cookie de sesión.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return err
	}
	if h.cookie.Name != "" {
		c.Cookie(&fiber.Cookie{
			Name:     h.cookie.Name,
			Value:    out.Token,
			Path:     "/",
			Expires:  time.Now().Add(time.Duration(out.ExpiresIn) * time.Second),
			HTTPOnly: true,
			Secure:   h.cookie.Secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return c.JSON(out)
}

// Logout godoc
// @Summary      Cerrar sesión
// @Tags         auth
// @Success      204
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if h.cookie.Name != "" {
		c.ClearCookie(h.cookie.Name)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// VerifyEmail godoc
// @Summary      Verificar correo
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.VerifyEmailRequest  true  "token"
// @Success      200   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var in dto.VerifyEmailRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	user, err := h.uc.VerifyEmail(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// ForgotPassword godoc
// @Summary      Solicitar recuperación de contraseña
// @Description  Responde siempre el mismo mensaje, exista o no el correo.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ForgotPasswordRequest  true  "email"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var in dto.ForgotPasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	out, err := h.uc.ForgotPassword(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ResetPassword godoc
// @Summary      Restablecer contraseña con token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ResetPasswordRequest  true  "token, password"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var in dto.ResetPasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	if err := h.uc.ResetPassword(c.UserContext(), in, requestMeta(c)); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "contraseña actualizada"})
}

// ChangePassword godoc
// @Summary      Cambiar contraseña
// @Description  Propia (exige la actual) o, para administradores, la de otro usuario.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.ChangePasswordRequest  true  "userId?, currentPassword, newPassword"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	sess, _ := GetSession(c)
	var in dto.ChangePasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	if err := h.uc.ChangePassword(c.UserContext(), sess, in, requestMeta(c)); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "contraseña actualizada"})
}

// Me godoc
// @Summary      Usuario de la sesión
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.MeResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	sess, _ := GetSession(c)
	out, err := h.uc.Me(c.UserContext(), sess)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
