package assessment

import (
	"context"
	"errors"
	"time"

	"github.com/i474232898/wildfire-risk/internal/weather"
)

// ModelType labels every prediction produced by the tree ensemble.
const ModelType = "random_forest"

// ErrNotFound is returned by stores when nothing matches a query.
var ErrNotFound = errors.New("no predictions for location")

// VegetationIndex is the satellite greenness part of a prediction.
type VegetationIndex struct {
	NDVI *float64 `json:"ndvi,omitempty"`
	EVI  *float64 `json:"evi,omitempty"`
}

// LandCover is the coverage share part of a prediction.
type LandCover struct {
	ForestPercent    *float64 `json:"forest_percent,omitempty"`
	GrasslandPercent *float64 `json:"grassland_percent,omitempty"`
}

// Prediction is one scored assessment for a location, as returned by the
// API and persisted by stores.
type Prediction struct {
	ID        string  `json:"id"`
	Location  string  `json:"location"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	Probability     float64 `json:"probability"`
	CO2Level        float64 `json:"co2_level"`
	Temperature     float64 `json:"temperature"`
	Humidity        float64 `json:"humidity"`
	DroughtIndex    float64 `json:"drought_index"`
	AirQualityIndex float64 `json:"air_quality_index"`
	PM25            float64 `json:"pm2_5"`
	PM10            float64 `json:"pm10"`

	VegetationIndex *VegetationIndex `json:"vegetation_index,omitempty"`
	LandCover       *LandCover       `json:"land_cover,omitempty"`

	ModelType         string             `json:"model_type"`
	FeatureImportance map[string]float64 `json:"feature_importance"`
	CreatedAt         time.Time          `json:"created_at"`
}

// Key is the canonical store key of the prediction's location.
func (p Prediction) Key() string {
	return LocationKey(p.Location)
}

// LocationKey folds a user supplied location into a store key.
func LocationKey(location string) string {
	return weather.NormalizeName(location)
}

// Store persists predictions per location.
type Store interface {
	Save(ctx context.Context, p Prediction) error
	// Latest returns ErrNotFound when the location has no predictions.
	Latest(ctx context.Context, location string) (Prediction, error)
	// Range returns predictions created within [from, to], oldest first,
	// or ErrNotFound when none match.
	Range(ctx context.Context, location string, from, to time.Time) ([]Prediction, error)
}

// Publisher announces new predictions to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, p Prediction) error
}

// WeatherSource returns aggregated current weather for a location.
type WeatherSource interface {
	Current(ctx context.Context, loc weather.Location) (weather.WeatherSnapshot, error)
}
