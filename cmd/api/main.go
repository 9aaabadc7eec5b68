package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/rack-inventory/internal/application/inventory"
	"github.com/jhoicas/rack-inventory/internal/application/usecase"
	"github.com/jhoicas/rack-inventory/internal/infrastructure/postgres"
	"github.com/jhoicas/rack-inventory/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/rack-inventory/internal/interfaces/http"
	"github.com/jhoicas/rack-inventory/pkg/config"
	"github.com/jhoicas/rack-inventory/pkg/logger"
	"github.com/jhoicas/rack-inventory/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
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

	if cfg.Migrations.AutoRun {
		log.Info().Msg("ejecutando migraciones (auto-run)")
		if err := postgres.Migrate(ctx, pool, "up"); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	deps := httpRouter.RouterDeps{AppName: cfg.App.Name, Log: log}

	var idem *redis.IdempotencyStore
	if cfg.Redis.Enabled() {
		idem, err = redis.NewIdempotencyStore(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer idem.Close()
		deps.Idempotency = idem
		log.Info().Dur("ttl", idem.TTL()).Msg("idempotencia habilitada")
	} else {
		log.Warn().Msg("REDIS_URL/REDIS_ADDR vacíos: Idempotency-Key deshabilitado")
	}

	var m *metrics.InventoryMetrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m = metrics.NewInventoryMetrics(reg)
		deps.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	txRunner := postgres.NewTxRunner(pool)
	lotRepo := postgres.NewLotRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	masterRepo := postgres.NewMasterProductRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)

	deps.Lots = inventory.NewLotUseCase(txRunner, lotRepo, locationRepo, masterRepo, log, m)
	deps.Locations = usecase.NewLocationUseCase(txRunner, locationRepo, ledgerRepo, log)
	deps.Health = func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if idem != nil {
			if err := idem.Ping(ctx); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	}

	app := httpRouter.NewApp(deps)

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
