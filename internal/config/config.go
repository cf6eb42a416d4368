package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/wildfire-risk/internal/common"
	"github.com/i474232898/wildfire-risk/internal/risk"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendBolt     = "bolt"
	BackendPostgres = "postgres"
)

type AppConfig struct {
	Port        string
	HTTPTimeout time.Duration

	OpenWeatherAPIKey     string
	WeatherAPIKey         string
	GoogleGeocodingAPIKey string
	GeocoderCacheSize     int
	VegetationAPIURL      string

	// WeatherStaleAfter bridges a full provider outage with the last good snapshot.
	WeatherStaleAfter time.Duration

	// Model tuning. ForestSeed and ForestTrees override the params file when set.
	ModelParamsFile string
	ForestSeed      int64
	ForestTrees     int

	StoreBackend    string
	StoreMaxHistory int           // max predictions per location (0 = unlimited)
	StoreMaxAge     time.Duration // max age of predictions (0 = unlimited)
	BoltPath        string
	DatabaseURL     string

	KafkaBrokers []string
	KafkaTopic   string

	// WatchLocations are re-assessed every FetchInterval.
	WatchLocations []string
	FetchInterval  time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
	cfg := &AppConfig{}
	var err error

	cfg.Port = getenvDefault("PORT", "8080")
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.GoogleGeocodingAPIKey = os.Getenv("GOOGLE_GEOCODING_API_KEY")
	cfg.GeocoderCacheSize = getenvInt("GEOCODER_CACHE_SIZE", 1024)
	cfg.VegetationAPIURL = os.Getenv("VEGETATION_API_URL")
	if cfg.WeatherStaleAfter, err = getenvDuration("WEATHER_STALE_AFTER", "30m"); err != nil {
		return nil, err
	}

	cfg.ModelParamsFile = os.Getenv("MODEL_PARAMS_FILE")
	cfg.ForestSeed = getenvInt64("FOREST_SEED", 0)
	cfg.ForestTrees = getenvInt("FOREST_TREES", 0)

	cfg.StoreBackend = strings.ToLower(getenvDefault("STORE_BACKEND", BackendMemory))
	switch cfg.StoreBackend {
	case BackendMemory, BackendBolt, BackendPostgres:
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: want memory, bolt or postgres", cfg.StoreBackend)
	}
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "168h"); err != nil {
		return nil, err
	}
	cfg.BoltPath = getenvDefault("BOLT_PATH", "data/predictions.db")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.StoreBackend == BackendPostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the postgres store")
	}

	cfg.KafkaBrokers = common.SplitList(os.Getenv("KAFKA_BROKERS"), ",")
	cfg.KafkaTopic = getenvDefault("KAFKA_TOPIC", "wildfire.predictions")

	// Place names contain commas, so the watchlist is semicolon separated.
	cfg.WatchLocations = common.SplitList(os.Getenv("WATCH_LOCATIONS"), ";")
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "json")

	return cfg, nil
}

// ModelParams loads the ensemble parameters and applies env overrides.
func (c *AppConfig) ModelParams() (risk.Params, error) {
	p, err := risk.LoadParams(c.ModelParamsFile)
	if err != nil {
		return p, err
	}
	if c.ForestSeed != 0 {
		p.Seed = c.ForestSeed
	}
	if c.ForestTrees > 0 {
		p.NumTrees = c.ForestTrees
	}
	return p, p.Validate()
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
		log.Warn().Str("key", key).Str("value", v).Msg("ignoring non-integer env value")
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return n
		}
		log.Warn().Str("key", key).Str("value", v).Msg("ignoring non-integer env value")
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
