package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"respondapi/docs"
	"respondapi/internal/apitemplate"
	"respondapi/internal/config"
	handlers "respondapi/internal/http/handler"
	"respondapi/internal/http/middleware"
	"respondapi/internal/logger"
	"respondapi/internal/otel"
	"respondapi/internal/service"
	"respondapi/internal/storage"
	"respondapi/internal/templates"
)

const shutdownTimeout = 10 * time.Second

// @title Respond API
// @version 1.0
// @description Users rendered through named API templates as JSON or XML.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server_exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Error("tracing_shutdown_failed", "error", err)
		}
	}()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	// Object storage is optional; it only serves API template definitions.
	var objStore storage.Storage
	if cfg.MinIO.Enabled() {
		objStore, err = storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			return err
		}
	}

	registry, _, err := service.NewTemplateLoader(objStore, cfg.Templates, templates.FS, log).Load(ctx)
	if err != nil {
		return err
	}
	renderer := apitemplate.NewRenderer(registry, apitemplate.Options{
		IncludeRootInJSON: cfg.Templates.IncludeRootInJSON,
		Dasherize:         cfg.Templates.Dasherize,
	})

	metrics := prometheus.NewRegistry()
	metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMiddleware, err := middleware.NewPrometheusMiddleware(metrics)
	if err != nil {
		return err
	}
	responder, err := handlers.NewResponder(renderer, cfg.Templates.DefaultTemplate, metrics, log)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())
	// Negotiates json/xml and strips /users/:id.xml style suffixes before routing
	app.Use(middleware.NegotiateFormat("/users"))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(metrics, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, handlers.Dependencies{
		Ping:      st.ping,
		Users:     service.NewUserService(st.repo),
		Responder: responder,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("server_starting", "addr", ":"+cfg.Port, "store", cfg.Store.Backend)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server_stopping")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
