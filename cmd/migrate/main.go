// Runner independiente de la migración de esquema, para correrla en el
// despliegue antes de levantar la API (o reintentarla tras un fallo parcial).
package main

import (
	"context"
	"errors"
	"os"

	"github.com/jhoicas/Identidad-api/internal/domain"
	"github.com/jhoicas/Identidad-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Identidad-api/pkg/config"
	"github.com/jhoicas/Identidad-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "debug"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	migrator := postgres.NewMigrator(postgres.NewPgSchemaStore(pool), log)
	if err := migrator.Run(ctx); err != nil {
		if errors.Is(err, domain.ErrMigrationPartial) {
			log.Error().Err(err).Msg("la estructura quedó incompleta; revisar permisos y re-ejecutar")
		} else {
			log.Error().Err(err).Msg("migración abortada")
		}
		os.Exit(1)
	}
	log.Info().Msg("migración completa")
}
