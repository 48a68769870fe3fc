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
	"github.com/jhoicas/Identidad-api/internal/application/auth"
	"github.com/jhoicas/Identidad-api/internal/application/credential"
	"github.com/jhoicas/Identidad-api/internal/application/usecase"
	"github.com/jhoicas/Identidad-api/internal/infrastructure/facial"
	"github.com/jhoicas/Identidad-api/internal/infrastructure/mailer"
	"github.com/jhoicas/Identidad-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Identidad-api/internal/interfaces/http"
	"github.com/jhoicas/Identidad-api/pkg/config"
	"github.com/jhoicas/Identidad-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
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

	// La migración corre como paso exclusivo antes de servir tráfico. Un fallo
	// estructural es fatal para el arranque: no se sirve sobre un esquema a medias.
	migrator := postgres.NewMigrator(postgres.NewPgSchemaStore(pool), log)
	if err := migrator.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("migración de esquema")
	}

	userRepo := postgres.NewUserRepository(pool)
	tokenRepo := postgres.NewResetTokenRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	hasher := credential.NewHasher(cfg.Auth.BcryptCost)
	matcher := facial.NewEuclideanMatcher()
	manager := credential.NewManager(userRepo, hasher, matcher, cfg.Auth.MinPasswordLen)

	// SMTP sin host = sin envío de correo (local/test).
	var notifier credential.ResetNotifier
	if cfg.SMTP.Host != "" {
		notifier = mailer.NewMailer(cfg.SMTP, cfg.Auth.ResetBaseURL)
	}
	resetSvc := credential.NewResetService(
		userRepo, tokenRepo, txRunner, hasher, notifier,
		time.Duration(cfg.Auth.ResetTTLMinutes)*time.Minute,
		cfg.Auth.MinPasswordLen, log,
	)

	authUC := auth.NewAuthUseCase(userRepo, manager, cfg.Auth.FacialThreshold, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	userUC := usecase.NewUserUseCase(userRepo, hasher, cfg.Auth.MinPasswordLen)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Identidad API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		ResetSvc:     resetSvc,
		CredentialUC: manager,
		UserUC:       userUC,
		JWTSecret:    cfg.JWT.Secret,
	})

	// Barrido periódico de tokens de restablecimiento vencidos.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if _, err := resetSvc.PurgeExpired(sweepCtx); err != nil {
					log.Warn().Err(err).Msg("barrido de tokens expirados")
				}
			}
		}
	}()

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
