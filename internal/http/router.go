package http

import (
	"log/slog"

	"github.com/gabriel/bigfinish-metadata/internal/config"
	"github.com/gabriel/bigfinish-metadata/internal/connectors"
	"github.com/gabriel/bigfinish-metadata/internal/http/handlers"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewServer(cfg config.Config, registry *connectors.Registry) *fiber.App {
	return NewServerWithLogger(cfg, registry, slog.Default())
}

func NewServerWithLogger(cfg config.Config, registry *connectors.Registry, logger *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ErrorHandler: handlers.NewErrorHandler(logger),
	})

	app.Use(recover.New())
	if cfg.UseCORS {
		app.Use(cors.New())
	}

	// /health and /metrics stay reachable for probes when auth is on.
	guard := func(c *fiber.Ctx) error { return c.Next() }
	if cfg.UseAuth {
		guard = handlers.RequireAuthorization()
	}

	health := handlers.NewHealthHandler()
	search := handlers.NewSearchHandler(registry, logger)
	connectorHandlers := handlers.NewConnectorsHandler(registry)

	app.Get("/health", health.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/search", guard, search.Search)

	v1 := app.Group("/v1", guard)
	v1.Get("/search", search.Search)
	v1.Get("/connectors", connectorHandlers.List)
	v1.Get("/connectors/health", connectorHandlers.Health)

	return app
}
