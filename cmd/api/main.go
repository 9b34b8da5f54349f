// @title           Portal Administrativo UNAMAD API
// @version         1.0
// @description     Permisos por módulo, flujo de aprobación de constancias y resoluciones, archivos y padrón de estudiantes.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/portal-unamad/docs"
	"github.com/jhoicas/portal-unamad/internal/application/auth"
	"github.com/jhoicas/portal-unamad/internal/application/authz"
	"github.com/jhoicas/portal-unamad/internal/application/document"
	"github.com/jhoicas/portal-unamad/internal/application/navigation"
	"github.com/jhoicas/portal-unamad/internal/application/usecase"
	"github.com/jhoicas/portal-unamad/internal/infrastructure/mail"
	infrapdf "github.com/jhoicas/portal-unamad/internal/infrastructure/pdf"
	"github.com/jhoicas/portal-unamad/internal/infrastructure/postgres"
	"github.com/jhoicas/portal-unamad/internal/infrastructure/registry"
	"github.com/jhoicas/portal-unamad/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/portal-unamad/internal/interfaces/http"
	"github.com/jhoicas/portal-unamad/pkg/config"
	"github.com/jhoicas/portal-unamad/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	if len(applied) > 0 {
		log.Info().Strs("migrations", applied).Msg("migraciones aplicadas")
	}

	fileStore, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento de archivos")
	}

	userRepo := postgres.NewUserRepository(pool)
	permRepo := postgres.NewPermissionRepository(pool)
	moduleRepo := postgres.NewModuleRepository(pool)
	auditRepo := postgres.NewAuditLogRepository(pool)
	constanciaRepo := postgres.NewConstanciaRepository(pool)
	resolucionRepo := postgres.NewResolucionRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	authzSvc := authz.NewService(permRepo)
	assignmentUC := authz.NewAssignmentUseCase(txRunner, permRepo, userRepo)
	resolver := navigation.NewResolver(moduleRepo, authzSvc)
	catalogUC := usecase.NewCatalogUseCase(moduleRepo, permRepo)

	// Íconos configurados que el frontend no conoce: se sirven con el ícono por defecto.
	if mods, err := moduleRepo.ListAll(ctx); err == nil {
		if unknown := navigation.UnknownIcons(mods); len(unknown) > 0 {
			log.Warn().Strs("icons", unknown).Msg("íconos sin mapeo, se usará el ícono por defecto")
		}
	}

	mailer := mail.New(cfg.SMTP, cfg.App.Env == "development", log.Component("mail"))
	authUC := auth.NewAuthUseCase(userRepo, auditRepo, authzSvc, mailer, auth.Config{
		JWTSecret:       cfg.JWT.Secret,
		JWTIssuer:       cfg.JWT.Issuer,
		JWTExpMinutes:   cfg.JWT.Expiration,
		VerificationTTL: cfg.Auth.VerificationTTL,
		ResetTTL:        cfg.Auth.ResetTTL,
		BaseURL:         cfg.App.BaseURL,
	}, log.Component("auth"))

	// PDF: versión imprimible de constancias aprobadas
	pdfRenderer := infrapdf.NewMarotoConstanciaRenderer(cfg.App.BaseURL + "/verificar")
	documentSvc := document.NewService(document.Deps{
		Tx:           txRunner,
		Constancias:  constanciaRepo,
		Resoluciones: resolucionRepo,
		Audit:        auditRepo,
		Users:        userRepo,
		Authz:        authzSvc,
		Store:        fileStore,
		PDF:          pdfRenderer,
	})

	studentUC := usecase.NewStudentUseCase(registry.NewClient(cfg.Registry, log.Component("registry")))
	userUC := usecase.NewUserUseCase(userRepo, auditRepo)

	httpLog := log.Component("http")
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    cfg.HTTP.BodyLimitMB * 1024 * 1024,
		ErrorHandler: httpRouter.ErrorHandler(httpLog),
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(httpLog))

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.HTTP.EnableSwagger {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Portal UNAMAD API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		Authz:      authzSvc,
		Assignment: assignmentUC,
		Resolver:   resolver,
		Catalog:    catalogUC,
		Documents:  documentSvc,
		Students:   studentUC,
		Users:      userUC,
		Files:      fileStore,
		Session:    httpRouter.SessionConfig{Secret: cfg.JWT.Secret, CookieName: cfg.JWT.CookieName, Users: userRepo},
		Cookie:     httpRouter.CookieConfig{Name: cfg.JWT.CookieName, Secure: cfg.App.Env == "production"},
		Log:        httpLog,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
