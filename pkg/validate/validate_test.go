package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/portal-unamad/pkg/validate"
)

type registro struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Rol      string `json:"role" validate:"omitempty,oneof=ADMIN USER"`
}

func TestStruct_Valido(t *testing.T) {
	assert.NoError(t, validate.Struct(&registro{Email: "a@unamad.edu.pe", Password: "12345678"}))
}

func TestStruct_PrimeraViolacion(t *testing.T) {
	err := validate.Struct(&registro{Email: "", Password: "corta"})
	require.Error(t, err)
	assert.Equal(t, "el campo 'email' es obligatorio", err.Error(), "se informa solo la primera violación")
}

func TestStruct_MensajeConParametro(t *testing.T) {
	err := validate.Struct(&registro{Email: "a@unamad.edu.pe", Password: "corta"})
	require.Error(t, err)
	assert.Equal(t, "el campo 'password' debe tener al menos 8 caracteres o elementos", err.Error())

	err = validate.Struct(&registro{Email: "a@unamad.edu.pe", Password: "12345678", Rol: "ROOT"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN USER")
}

func TestVar_DNI(t *testing.T) {
	assert.NoError(t, validate.Var("dni", "71234567", "required,len=8,numeric"))

	err := validate.Var("dni", "7123", "required,len=8,numeric")
	require.Error(t, err)
	assert.Equal(t, "el campo 'dni' debe tener exactamente 8 caracteres", err.Error())

	err = validate.Var("dni", "7123456A", "required,len=8,numeric")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dígitos")
}
