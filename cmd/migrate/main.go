package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/rack-inventory/internal/infrastructure/postgres"
	"github.com/jhoicas/rack-inventory/pkg/config"
	"github.com/jhoicas/rack-inventory/pkg/logger"
)

// Uso: migrate [-cmd up|down|status|version|redo|reset] [args...]
func main() {
	cmd := flag.String("cmd", "up", "comando goose: up|up-to|down|down-to|status|version|redo|reset")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Named("migrate")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("conexión a PostgreSQL")
		os.Exit(1)
	}
	defer pool.Close()

	log.Info().Str("cmd", *cmd).Strs("args", flag.Args()).Msg("ejecutando migraciones")
	if err := postgres.Migrate(ctx, pool, *cmd, flag.Args()...); err != nil {
		log.Error().Err(err).Msg("migración fallida")
		pool.Close()
		os.Exit(1)
	}
	log.Info().Str("cmd", *cmd).Msg("migraciones completadas")
}
