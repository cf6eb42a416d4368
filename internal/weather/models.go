package weather

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrLocationNotFound is returned by geocoders when a place name does not resolve.
	ErrLocationNotFound = errors.New("location not found")
	// ErrNoReadings is returned when every weather provider failed.
	ErrNoReadings = errors.New("no weather readings available")
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Location is a resolved place.
type Location struct {
	Name      string  `json:"name"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Key returns a canonical string key for indexing this location.
func (l Location) Key() string {
	return NormalizeName(l.Name)
}

// NormalizeName folds a user supplied place name into a lookup key.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// WeatherSnapshot is the normalized, aggregated weather view at a point in time.
type WeatherSnapshot struct {
	Location    Location  `json:"location"`
	Timestamp   time.Time `json:"timestamp"` // always UTC
	Temperature float64   `json:"temperatureC"`
	// Humidity is nil when no provider reported it.
	Humidity  *float64  `json:"humidityPercent,omitempty"`
	WindSpeed float64   `json:"windSpeed"`
	Pressure  float64   `json:"pressureHpa"`
	PrecipMM  float64   `json:"precipMm"`
	Condition Condition `json:"condition"`

	// Providers contributing to this snapshot.
	Providers []ProviderContribution `json:"providers,omitempty"`
}

// ProviderContribution describes data coming from a single provider used in aggregation.
type ProviderContribution struct {
	ProviderName string    `json:"provider"`
	Timestamp    time.Time `json:"timestamp"`
}

// AirQuality is an air-pollution reading. AQI is the 1-5 ordinal scale,
// concentrations are μg/m³.
type AirQuality struct {
	AQI       float64   `json:"aqi"`
	PM25      float64   `json:"pm2_5"`
	PM10      float64   `json:"pm10"`
	CO        float64   `json:"co"`
	Timestamp time.Time `json:"timestamp"`
}

type Vegetation struct {
	NDVI *float64 `json:"ndvi,omitempty"`
	EVI  *float64 `json:"evi,omitempty"`
}

type LandCover struct {
	ForestPercent    *float64 `json:"forest_percent,omitempty"`
	GrasslandPercent *float64 `json:"grassland_percent,omitempty"`
}

// VegetationReport bundles the satellite-derived signals for a location.
// Either part may be nil when the source has no coverage.
type VegetationReport struct {
	Vegetation *Vegetation `json:"vegetation,omitempty"`
	LandCover  *LandCover  `json:"land_cover,omitempty"`
}
