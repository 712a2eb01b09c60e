// README: Config loader with env defaults for the backend URL, maps key and preview tuning.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	API struct {
		BaseURL string
	}
	Maps struct {
		APIKey string
	}
	Preview struct {
		Debounce time.Duration
	}
}

type SimConfig struct {
	Addr   string
	Secret string
}

// Load reads console configuration. The maps key has no sane default;
// the console cannot draw previews without it.
func Load() (Config, error) {
	var cfg Config
	cfg.API.BaseURL = envOrDefault("FLEETOPS_API_URL", "http://localhost:8000")
	cfg.Maps.APIKey = envOrError("FLEETOPS_MAPS_KEY")
	cfg.Preview.Debounce = time.Duration(envOrDefaultInt("FLEETOPS_PREVIEW_DEBOUNCE_MS", 1200)) * time.Millisecond
	return cfg, nil
}

// LoadSim reads simulator configuration.
func LoadSim() (SimConfig, error) {
	var cfg SimConfig
	cfg.Addr = envOrDefault("FLEETOPS_HTTP_ADDR", ":8000")
	cfg.Secret = envOrDefault("FLEETOPS_SIM_SECRET", "fleetops-dev-secret")
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrError(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	panic("environment variable " + key + " is required")
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
