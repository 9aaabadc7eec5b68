package http

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/jhoicas/rack-inventory/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName     string
	Lots        LotService
	Locations   LocationService
	Idempotency IdempotencyStore // nil = sin idempotencia
	Metrics     nethttp.Handler  // nil = sin /metrics
	Health      func(ctx context.Context) error
	Log         *logger.Logger
}

// NewApp construye la app Fiber con middlewares globales y todas las rutas.
func NewApp(deps RouterDeps) *fiber.App {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	app := fiber.New(fiber.Config{
		AppName:      deps.AppName,
		ErrorHandler: fiberErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		BodyLimit:    1 << 20,
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(RequestLogger(deps.Log.Named("http")))

	Router(app, deps)
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", healthHandler(deps.Health))
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api", Idempotency(deps.Idempotency, deps.Log.Named("idempotency")))
	v := NewRequestValidator()

	// Lots
	lots := api.Group("/lots")
	lotHandler := NewLotHandler(deps.Lots, v)
	lots.Post("/", lotHandler.Create)
	lots.Get("/picking", lotHandler.Picking)
	lots.Post("/transitions", lotHandler.TransitionBatch)
	lots.Post("/disable", lotHandler.DisableBatch)
	lots.Post("/relocate", lotHandler.Relocate)
	lots.Post("/cancel-reallocation", lotHandler.CancelReallocation)
	lots.Post("/assign-location", lotHandler.AssignLocation)
	lots.Post("/scan", lotHandler.Scan)
	lots.Get("/:id", lotHandler.GetByID)
	lots.Delete("/:id", lotHandler.Disable)
	lots.Post("/:id/transition", lotHandler.Transition)
	lots.Post("/:id/split", lotHandler.Split)

	// Locations
	locations := api.Group("/locations")
	locationHandler := NewLocationHandler(deps.Locations, v)
	locations.Post("/", locationHandler.Create)
	locations.Post("/batch", locationHandler.CreateBatch)
	locations.Get("/", locationHandler.List)
	locations.Get("/recommend", lotHandler.Recommend)
	locations.Get("/:id", locationHandler.GetByID)
	locations.Delete("/:id", locationHandler.Remove)
	locations.Get("/:id/ledger", locationHandler.Ledger)
}

func healthHandler(check func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if check != nil {
			if err := check(c.Context()); err != nil {
				c.Locals(localsErrorKey, err)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
