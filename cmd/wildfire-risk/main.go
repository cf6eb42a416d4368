package main

import (
	"context"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	httpapi "github.com/i474232898/wildfire-risk/internal/api/http"
	"github.com/i474232898/wildfire-risk/internal/assessment"
	"github.com/i474232898/wildfire-risk/internal/config"
	"github.com/i474232898/wildfire-risk/internal/events"
	"github.com/i474232898/wildfire-risk/internal/observability"
	"github.com/i474232898/wildfire-risk/internal/risk"
	"github.com/i474232898/wildfire-risk/internal/scheduler"
	"github.com/i474232898/wildfire-risk/internal/store"
	"github.com/i474232898/wildfire-risk/internal/weather"
	"github.com/i474232898/wildfire-risk/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.SetupLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	params, err := cfg.ModelParams()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid model params")
	}
	forest, err := risk.NewForest(params)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build forest")
	}
	log.Info().Int("trees", forest.Size()).Int64("seed", forest.Params().Seed).Msg("forest ready")

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	openWeather := providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey)
	provs := []weather.Provider{providers.NewOpenMeteoProvider(httpClient)}
	if cfg.OpenWeatherAPIKey != "" {
		provs = append(provs, openWeather)
	}
	if cfg.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey))
	}
	weatherService := weather.NewService(provs, cfg.WeatherStaleAfter)

	var chain providers.GeocoderChain
	if cfg.GoogleGeocodingAPIKey != "" {
		chain = append(chain, providers.NewGoogleGeocoder(cfg.GoogleGeocodingAPIKey))
	}
	chain = append(chain, providers.NewOpenMeteoGeocoder(cfg.HTTPTimeout))
	geocoder := providers.NewCachedGeocoder(chain, cfg.GeocoderCacheSize).OnLookup(metrics.GeocodeCacheHook())

	deps := assessment.Dependencies{
		Geocoder: geocoder,
		Weather:  weatherService,
		Forest:   forest,
		Metrics:  metrics,
	}
	if cfg.OpenWeatherAPIKey != "" {
		deps.AirQuality = openWeather
	} else {
		log.Warn().Msg("OPENWEATHER_API_KEY not set; air quality defaults will be used")
	}
	if cfg.VegetationAPIURL != "" {
		deps.Vegetation = providers.NewVegetationClient(cfg.VegetationAPIURL, cfg.HTTPTimeout)
	}

	predictionStore, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("failed to open prediction store")
	}
	defer closeStore.Close()
	deps.Store = predictionStore

	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer publisher.Close()
		deps.Publisher = publisher
	} else {
		deps.Publisher = events.NopPublisher{}
	}

	service, err := assessment.NewService(deps)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build assessment service")
	}

	sched := scheduler.New(cfg.WatchLocations, cfg.FetchInterval, service, metrics.SchedulerRuns)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "wildfire-risk",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	httpapi.RegisterHealth(app, forest)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpapi.RegisterRoutes(app, service)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStore builds the configured prediction store and its closer.
func openStore(ctx context.Context, cfg *config.AppConfig) (assessment.Store, io.Closer, error) {
	switch cfg.StoreBackend {
	case config.BackendBolt:
		s, err := store.NewBoltStore(cfg.BoltPath, cfg.StoreMaxHistory, cfg.StoreMaxAge)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.BackendPostgres:
		s, err := store.NewPostgresStore(ctx, cfg.DatabaseURL, cfg.StoreMaxHistory, cfg.StoreMaxAge)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge), nopCloser{}, nil
	}
}

