// Comando seed: aplica migraciones (incluido el catálogo base de módulos y permisos)
// y crea o promueve el superusuario inicial definido en SEED_ADMIN_*.
package main

import (
	"context"
	"os"

	"github.com/jhoicas/portal-unamad/internal/application/auth"
	"github.com/jhoicas/portal-unamad/internal/application/authz"
	"github.com/jhoicas/portal-unamad/internal/infrastructure/mail"
	"github.com/jhoicas/portal-unamad/internal/infrastructure/postgres"
	"github.com/jhoicas/portal-unamad/pkg/config"
	"github.com/jhoicas/portal-unamad/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

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
	log.Info().Strs("migrations", applied).Msg("migraciones al día")

	if cfg.Seed.AdminEmail == "" || cfg.Seed.AdminPassword == "" {
		log.Warn().Msg("SEED_ADMIN_EMAIL o SEED_ADMIN_PASSWORD vacíos, no se crea superusuario")
		os.Exit(0)
	}

	userRepo := postgres.NewUserRepository(pool)
	authUC := auth.NewAuthUseCase(
		userRepo,
		postgres.NewAuditLogRepository(pool),
		authz.NewService(postgres.NewPermissionRepository(pool)),
		mail.NewLogMailer(log.Component("mail"), false),
		auth.Config{JWTSecret: cfg.JWT.Secret, JWTIssuer: cfg.JWT.Issuer, JWTExpMinutes: cfg.JWT.Expiration, BaseURL: cfg.App.BaseURL},
		log.Component("seed"),
	)

	created, err := authUC.EnsureSuperAdmin(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminName, cfg.Seed.AdminPassword)
	if err != nil {
		log.Fatal().Err(err).Str("email", cfg.Seed.AdminEmail).Msg("superusuario")
	}
	if created {
		log.Info().Str("email", cfg.Seed.AdminEmail).Msg("superusuario creado")
	} else {
		log.Info().Str("email", cfg.Seed.AdminEmail).Msg("usuario existente promovido a SUPER_ADMIN")
	}
}
