package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/portal-unamad/pkg/jwt"
)

const testSecret = "test-secret-key-for-unit-tests"

var testSubject = pkgjwt.Subject{
	UserID: "00000000-0000-0000-0000-000000000001",
	Email:  "secretaria@unamad.edu.pe",
	Name:   "Secretaría Académica",
	Role:   "ADMIN",
}

func TestGenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testSubject, "portal-test", 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := pkgjwt.Parse(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, testSubject.UserID, claims.UserID)
	assert.Equal(t, testSubject.Email, claims.Email)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, "portal-test", claims.Issuer)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testSubject, "portal-test", -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testSubject, "portal-test", 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err)
}

func TestParse_SinUserID(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, pkgjwt.Subject{Role: "USER"}, "portal-test", 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testSecret, tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", testSubject, "portal-test", 60)
	assert.Error(t, err)
}
