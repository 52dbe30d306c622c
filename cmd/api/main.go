package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jharkhandtours/tripfinder/internal/adapters/catalog"
	"github.com/jharkhandtours/tripfinder/internal/adapters/http"
	"github.com/jharkhandtours/tripfinder/internal/adapters/ipapi"
	natsadapter "github.com/jharkhandtours/tripfinder/internal/adapters/nats"
	"github.com/jharkhandtours/tripfinder/internal/adapters/nominatim"
	"github.com/jharkhandtours/tripfinder/internal/adapters/osrm"
	"github.com/jharkhandtours/tripfinder/internal/adapters/valkey"
	"github.com/jharkhandtours/tripfinder/internal/core/ports"
	"github.com/jharkhandtours/tripfinder/internal/core/usecases"
	"github.com/jharkhandtours/tripfinder/internal/pkg/config"
	"github.com/jharkhandtours/tripfinder/internal/pkg/logging"
	"github.com/jharkhandtours/tripfinder/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("tripfinder-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Place catalog (embedded)
	places, err := catalog.Load()
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
	}

	// NATS
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer publisher.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// External resolvers
	var geocoder ports.Geocoder = nominatim.NewClient(cfg.Nominatim.BaseURL, cfg.Nominatim.UserAgent)
	if cache != nil {
		geocoder = usecases.NewCachedGeocoder(geocoder, cache)
	}
	routes := osrm.NewClient(cfg.OSRM.BaseURL)

	var locator ports.Locator
	if cfg.Geolocate.Enabled {
		locator = ipapi.NewClient(cfg.Geolocate.BaseURL)
	}

	// Use cases
	renderer := usecases.NewMapSync(places.All(""), cfg.Pricing.RatePerKm)
	sessionDeps := usecases.SessionDeps{
		Geocoder:  geocoder,
		Routes:    routes,
		Locator:   locator,
		Renderer:  renderer,
		RatePerKm: cfg.Pricing.RatePerKm,
	}
	if publisher != nil {
		sessionDeps.Views = publisher
	}
	sessions := usecases.NewSessionManager(sessionDeps)

	deps := &http.Dependencies{
		Sessions: sessions,
		Catalog:  places,
		MapSync:  renderer,
		NATS:     natsConn,
		Cache:    cache,
		Currency: cfg.Pricing.Currency,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "TripFinder API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.jharkhandtours.in",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, X-Session-ID",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
