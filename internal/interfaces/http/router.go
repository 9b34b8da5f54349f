package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/portal-unamad/internal/application/auth"
	"github.com/jhoicas/portal-unamad/internal/application/authz"
	"github.com/jhoicas/portal-unamad/internal/application/document"
	"github.com/jhoicas/portal-unamad/internal/application/navigation"
	"github.com/jhoicas/portal-unamad/internal/application/ports"
	"github.com/jhoicas/portal-unamad/internal/application/usecase"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	Authz      *authz.Service
	Assignment *authz.AssignmentUseCase
	Resolver   *navigation.Resolver
	Catalog    *usecase.CatalogUseCase
	Documents  *document.Service
	Students   *usecase.StudentUseCase
	Users      *usecase.UserUseCase
	Files      ports.FileStore
	Session    SessionConfig
	Cookie     CookieConfig
	Log        zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	session := SessionMiddleware(deps.Session)
	guard := func(code string, action entity.Action) fiber.Handler {
		return RequirePermission(deps.Authz, deps.Log, code, action)
	}

	// Auth (público, salvo change-password y me)
	authHandler := NewAuthHandler(deps.AuthUC, deps.Cookie)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Post("/verify-email", authHandler.VerifyEmail)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Post("/reset-password", authHandler.ResetPassword)
	authGroup.Post("/change-password", session, authHandler.ChangePassword)
	authGroup.Get("/me", session, authHandler.Me)

	// Padrón de estudiantes (servidor a servidor, sin sesión)
	studentHandler := NewStudentHandler(deps.Students)
	students := api.Group("/student")
	students.Get("/by-dni/:dni", studentHandler.ByDNI)
	students.Get("/by-code/:code", studentHandler.ByCode)
	students.Post("/consult", studentHandler.Consult)
	students.Post("/consult-by-code", studentHandler.ConsultByCode)

	// Archivos: la sesión se exige según la carpeta
	fileHandler := NewFileHandler(deps.Files)
	optional := OptionalSession(deps.Session)
	api.Get("/files/*", optional, fileHandler.Serve)
	api.Get("/documents/files/*", optional, fileHandler.Serve)

	// Permisos
	permHandler := NewPermissionHandler(deps.Authz, deps.Assignment, deps.Catalog)
	perms := api.Group("/permissions", session)
	perms.Get("/user", permHandler.UserPermissions)
	perms.Post("/check", permHandler.Check)
	perms.Post("/assign", guard(entity.PermRoles, entity.ActionUpdate), permHandler.Assign)
	perms.Get("/catalog", guard(entity.PermModules, entity.ActionRead), permHandler.Catalog)
	perms.Post("/catalog", guard(entity.PermModules, entity.ActionCreate), permHandler.CreateCatalogEntry)

	// Navegación y catálogo de módulos
	navHandler := NewNavigationHandler(deps.Resolver, deps.Catalog)
	api.Get("/navigation", session, navHandler.Navigation)
	modules := api.Group("/modules", session)
	modules.Get("/", guard(entity.PermModules, entity.ActionRead), navHandler.ListModules)
	modules.Post("/", guard(entity.PermModules, entity.ActionCreate), navHandler.CreateModule)
	modules.Put("/:id", guard(entity.PermModules, entity.ActionUpdate), navHandler.UpdateModule)
	modules.Post("/:id/submodules", guard(entity.PermModules, entity.ActionCreate), navHandler.CreateSubmodule)

	// Documentos: el permiso por acción lo verifica document.Service
	docHandler := NewDocumentHandler(deps.Documents)
	constancias := api.Group("/documents/constancias", session)
	constancias.Get("/", docHandler.ListConstancias)
	constancias.Post("/", docHandler.CreateConstancia)
	constancias.Get("/:id", docHandler.GetConstancia)
	constancias.Delete("/:id", docHandler.DeleteConstancia)
	constancias.Get("/:id/pdf", docHandler.ConstanciaPDF)
	constancias.Get("/:id/history", docHandler.History(entity.KindConstancia))
	constancias.Post("/:id/approve", docHandler.Approve(entity.KindConstancia))
	constancias.Post("/:id/reject", docHandler.Reject(entity.KindConstancia))

	resoluciones := api.Group("/documents/resoluciones", session)
	resoluciones.Get("/", docHandler.ListResoluciones)
	resoluciones.Post("/", docHandler.CreateResolucion)
	resoluciones.Get("/:id", docHandler.GetResolucion)
	resoluciones.Delete("/:id", docHandler.DeleteResolucion)
	resoluciones.Get("/:id/history", docHandler.History(entity.KindResolucion))
	resoluciones.Post("/:id/approve", docHandler.Approve(entity.KindResolucion))
	resoluciones.Post("/:id/reject", docHandler.Reject(entity.KindResolucion))

	// Usuarios
	userHandler := NewUserHandler(deps.Users)
	users := api.Group("/users", session)
	users.Get("/", guard(entity.PermUsers, entity.ActionRead), userHandler.List)
	users.Patch("/:id", guard(entity.PermUsers, entity.ActionUpdate), userHandler.Update)
}
