package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/portal-unamad/internal/application/document"
	"github.com/jhoicas/portal-unamad/internal/application/dto"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
	apphttp "github.com/jhoicas/portal-unamad/internal/interfaces/http"
)

// buildDocumentApp monta las rutas de documentos sobre un servicio sin dependencias:
// cualquier petición que llegue al servicio termina en 500 (recover).
func buildDocumentApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(zerolog.Nop())})
	app.Use(recover.New())
	h := apphttp.NewDocumentHandler(document.NewService(document.Deps{}))
	users := apphttp.NewUserHandler(nil)

	api := app.Group("/api", apphttp.SessionMiddleware(sessionCfg))
	api.Get("/documents/constancias/:id", h.GetConstancia)
	api.Delete("/documents/constancias/:id", h.DeleteConstancia)
	api.Get("/documents/constancias/:id/pdf", h.ConstanciaPDF)
	api.Post("/documents/constancias/:id/approve", h.Approve(entity.KindConstancia))
	api.Post("/documents/resoluciones/:id/reject", h.Reject(entity.KindResolucion))
	api.Get("/documents/resoluciones/:id/history", h.History(entity.KindResolucion))
	api.Patch("/users/:id", users.Update)
	return app
}

func TestDocumentHandler_IDMalformado_Retorna400(t *testing.T) {
	app := buildDocumentApp()
	token := "Bearer " + tokenForRole(t, "SUPER_ADMIN")

	cases := []struct{ method, path, body string }{
		{http.MethodPost, "/api/documents/constancias/not-a-uuid/approve", ""},
		{http.MethodGet, "/api/documents/constancias/abc", ""},
		{http.MethodDelete, "/api/documents/constancias/123", ""},
		{http.MethodGet, "/api/documents/constancias/abc/pdf", ""},
		{http.MethodPost, "/api/documents/resoluciones/xyz/reject", `{"reason":"duplicada"}`},
		{http.MethodGet, "/api/documents/resoluciones/xyz/history", ""},
		{http.MethodPatch, "/api/users/abc", `{"isActive":false}`},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			req.Header.Set("Authorization", token)
			if tc.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)

			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			var body dto.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, "VALIDATION", body.Code)
		})
	}
}
