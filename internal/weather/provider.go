package weather

//go:generate mockgen -destination=weathermock/mock.go -package=weathermock . Provider,AirQualityProvider,VegetationProvider,Geocoder

import (
	"context"
	"time"
)

// ProviderReading represents a single provider's normalized reading
// that can be aggregated into a WeatherSnapshot.
type ProviderReading struct {
	ProviderName string
	Timestamp    time.Time

	TemperatureC float64
	HumidityPct  float64
	// HasHumidity is false for sources that do not report humidity.
	HasHumidity bool
	WindSpeedMS float64
	PressureHpa float64
	PrecipMm    float64
	Condition   Condition
}

// Provider abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (ProviderReading, error)
}

// AirQualityProvider returns current air pollution for a location.
type AirQualityProvider interface {
	FetchAirQuality(ctx context.Context, loc Location) (AirQuality, error)
}

// VegetationProvider returns vegetation indices and land cover for a location.
type VegetationProvider interface {
	FetchVegetation(ctx context.Context, loc Location) (VegetationReport, error)
}

// Geocoder resolves a free-form place name to coordinates.
// Implementations return ErrLocationNotFound when nothing matches.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (Location, error)
}
