package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/kgrid/weather-gateway/internal/air"
	httpapi "github.com/kgrid/weather-gateway/internal/api/http"
	"github.com/kgrid/weather-gateway/internal/cache"
	"github.com/kgrid/weather-gateway/internal/cctv"
	"github.com/kgrid/weather-gateway/internal/config"
	"github.com/kgrid/weather-gateway/internal/kma"
	"github.com/kgrid/weather-gateway/internal/scheduler"
	"github.com/kgrid/weather-gateway/internal/station"
	"github.com/kgrid/weather-gateway/internal/weather"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Cache store: Redis when configured, in-process memory otherwise.
	var store cache.Store
	if cfg.RedisAddr != "" {
		redisStore := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisStore.Ping(pingCtx); err != nil {
			cancel()
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable")
		}
		cancel()
		store = redisStore
	} else {
		log.Warn().Msg("REDIS_ADDR not set; using in-process cache")
		store = cache.NewMemoryStore()
	}

	stations, err := station.Load(cfg.StationTablePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load station table")
	}

	kmaClient := kma.NewClient(httpClient, cfg.KMAServiceKey, log)
	airClient := air.NewClient(httpClient, cfg.AirServiceKey)

	var cameras *cctv.Client
	if cfg.CCTVAPIKey != "" {
		cameras = cctv.NewClient(httpClient, cfg.CCTVAPIKey)
	} else {
		log.Info().Msg("ITS_CCTV_API_KEY not set; cctv lookup disabled")
	}

	// Core service composing the cache-aside fetches.
	service := weather.NewService(store, kmaClient, kmaClient, airClient, stations, log)

	// Optional cache warmer for configured grid cells.
	warmer := scheduler.New(cfg.WarmCoords, cfg.WarmInterval, service, log)
	if err := warmer.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start cache warmer")
	}
	defer warmer.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-gateway",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
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

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-gateway",
		})
	})

	httpapi.RegisterRoutes(app, service, cameras)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}
