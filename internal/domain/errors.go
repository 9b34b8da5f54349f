package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrAlreadyProcessed   = errors.New("el documento ya fue procesado")
	ErrInactiveAccount    = errors.New("cuenta inactiva o sin verificar")
	ErrInvalidToken       = errors.New("token inválido o expirado")
	ErrUpstream           = errors.New("servicio externo no disponible")
)

// ValidationError error de validación con mensaje apto para el cliente (HTTP 400).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Is permite errors.Is(err, ErrInvalidInput) sobre un *ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidationError construye un ValidationError.
func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}
