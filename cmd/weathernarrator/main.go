package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-narrator/internal/api/http"
	"github.com/i474232898/weather-narrator/internal/config"
	"github.com/i474232898/weather-narrator/internal/narrative"
	"github.com/i474232898/weather-narrator/internal/refresh"
	"github.com/i474232898/weather-narrator/internal/scheduler"
	"github.com/i474232898/weather-narrator/internal/store"
	"github.com/i474232898/weather-narrator/internal/suggest"
	"github.com/i474232898/weather-narrator/internal/weather"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Durable store when sqlite is available; in-memory otherwise.
	// Degradation is never fatal.
	var st weather.Store
	sqliteStore, err := store.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		log.Printf("WARN: durable store unavailable (%v), falling back to in-memory store", err)
		st = store.NewMemoryStore()
	} else {
		st = sqliteStore
		defer sqliteStore.Close()
	}

	// Weather provider with resilience (backoff + circuit breaker).
	fetcher := weather.NewClient(httpClient, weather.ClientConfig{
		APIKey:          cfg.OpenWeatherAPIKey,
		WeatherEndpoint: cfg.WeatherEndpoint,
		GeoEndpoint:     cfg.GeoEndpoint,
		OneCallEndpoint: cfg.OneCallEndpoint,
		GeocoderAPIKey:  cfg.GeocoderAPIKey,
	})

	// Text generation collaborator; narratives degrade to fallback
	// text when it is not configured.
	var textGen narrative.TextGenerator
	dsClient, err := narrative.NewClient(narrative.ClientConfig{
		APIKey:     cfg.DeepSeekAPIKey,
		BaseURL:    cfg.DeepSeekBaseURL,
		Model:      cfg.DeepSeekModel,
		MaxRetries: 2,
	})
	if err != nil {
		log.Printf("WARN: text generation unavailable (%v), narratives will use fallback text", err)
	} else {
		textGen = dsClient
	}
	narrator := narrative.NewGenerator(textGen, cfg.Language, cfg.Timezone)

	selector := suggest.NewSelector(rand.NewSource(time.Now().UnixNano()))

	var defaultLoc weather.Location
	if len(cfg.Locations) > 0 {
		defaultLoc = cfg.Locations[0]
	}

	orch := refresh.New(refresh.Config{
		Fetcher:         fetcher,
		Store:           st,
		Narrator:        narrator,
		Selector:        selector,
		Language:        cfg.Language,
		DefaultLocation: defaultLoc,
	})

	// Scheduler that periodically refreshes and houses-keeps.
	sched := scheduler.New(orch, st, cfg.RefreshInterval, cfg.Locations)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-narrator",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-narrator",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, st, orch)

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
