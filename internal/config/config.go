package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kgrid/weather-gateway/internal/weather"
)

// AppConfig is the once-at-startup process configuration. Nothing in it is
// mutated after Load returns.
type AppConfig struct {
	// KMAServiceKey authenticates against the data.go.kr weather services;
	// AirServiceKey against the AirKorea service. They are often the same
	// key, so the air key falls back to the weather key when unset.
	KMAServiceKey string
	AirServiceKey string
	CCTVAPIKey    string

	// RedisAddr selects the cache backend; empty means the in-process
	// memory store (development only).
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// HTTPTimeout bounds each outbound upstream call.
	HTTPTimeout time.Duration

	// WarmInterval and WarmCoords drive the optional cache warmer.
	WarmInterval time.Duration
	WarmCoords   []weather.GridCoordinate

	// StationTablePath overrides the embedded station table.
	StationTablePath string

	Port string
}

// Load reads configuration from the environment with sensible defaults.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.KMAServiceKey = os.Getenv("KMA_SERVICE_KEY")
	if cfg.KMAServiceKey == "" {
		return nil, fmt.Errorf("KMA_SERVICE_KEY is required")
	}
	cfg.AirServiceKey = getenvDefault("AIR_SERVICE_KEY", cfg.KMAServiceKey)
	cfg.CCTVAPIKey = os.Getenv("ITS_CCTV_API_KEY")

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = getenvInt("REDIS_DB", 0)

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	warmStr := getenvDefault("WARM_INTERVAL", "5m")
	warm, err := time.ParseDuration(warmStr)
	if err != nil {
		return nil, fmt.Errorf("invalid WARM_INTERVAL: %w", err)
	}
	cfg.WarmInterval = warm

	coords, err := parseCoords(os.Getenv("WARM_COORDS"))
	if err != nil {
		return nil, err
	}
	cfg.WarmCoords = coords

	cfg.StationTablePath = os.Getenv("STATION_TABLE_PATH")
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

// parseCoords parses a semicolon-separated list of nx,ny pairs, e.g.
// "60,127;98,76".
func parseCoords(raw string) ([]weather.GridCoordinate, error) {
	if raw == "" {
		return nil, nil
	}

	var coords []weather.GridCoordinate
	for _, pair := range strings.Split(raw, ";") {
		parts := strings.Split(strings.TrimSpace(pair), ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid WARM_COORDS entry %q", pair)
		}
		nx, errX := strconv.Atoi(strings.TrimSpace(parts[0]))
		ny, errY := strconv.Atoi(strings.TrimSpace(parts[1]))
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("invalid WARM_COORDS entry %q", pair)
		}
		coords = append(coords, weather.GridCoordinate{NX: nx, NY: ny})
	}
	return coords, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
