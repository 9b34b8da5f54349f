package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/portal-unamad/internal/domain/entity"
)

func TestRenderConstancia(t *testing.T) {
	approvedAt := time.Date(2025, 3, 10, 15, 4, 0, 0, time.UTC)
	c := &entity.Constancia{
		Code:        "CONST-2025-000001",
		StudentCode: "20211234",
		StudentDNI:  "70123456",
		StudentName: "Ana Quispe Mamani",
		Type:        "estudios",
		Purpose:     "trámite de beca",
		Status:      entity.StatusAprobado,
		ApprovedAt:  &approvedAt,
		CreatedAt:   approvedAt.Add(-time.Hour),
	}

	out, err := NewMarotoConstanciaRenderer("https://portal.unamad.edu.pe/verificar").RenderConstancia(c, "Jefe de Registro")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderConstancia_Nula(t *testing.T) {
	_, err := NewMarotoConstanciaRenderer("").RenderConstancia(nil, "")
	assert.Error(t, err)
}

func TestVerificationData(t *testing.T) {
	c := &entity.Constancia{Code: "CONST-2025-000002"}
	assert.Equal(t, "CONST-2025-000002", NewMarotoConstanciaRenderer("").verificationData(c))
	assert.Equal(t, "https://x.pe/v?code=CONST-2025-000002", NewMarotoConstanciaRenderer("https://x.pe/v/").verificationData(c))
}
