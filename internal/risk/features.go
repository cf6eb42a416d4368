package risk

import (
	"math"
	"time"
)

// Climate-average fallbacks used when a required signal is missing.
const (
	FallbackTemperature = 15.0
	FallbackHumidity    = 60.0
	FallbackAQI         = 1.0
)

// FeatureRecord is the validated, fully populated input to the forest.
type FeatureRecord struct {
	Temperature     float64 `json:"temperature"`
	Humidity        float64 `json:"humidity"`
	DroughtIndex    float64 `json:"drought_index"`
	AirQualityIndex float64 `json:"air_quality_index"`
	PM25            float64 `json:"pm2_5"`
	PM10            float64 `json:"pm10"`
	CO2Level        float64 `json:"co2_level"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`

	NDVI             *float64 `json:"ndvi,omitempty"`
	EVI              *float64 `json:"evi,omitempty"`
	ForestPercent    *float64 `json:"forest_percent,omitempty"`
	GrasslandPercent *float64 `json:"grassland_percent,omitempty"`

	Month int `json:"month"`
}

// WeatherInput is the raw weather payload. Nil fields are missing.
type WeatherInput struct {
	Temperature *float64
	Humidity    *float64
}

// AirQualityInput is the raw air-pollution payload.
type AirQualityInput struct {
	AQI  *float64
	PM25 *float64
	PM10 *float64
	CO   *float64
}

type VegetationInput struct {
	NDVI *float64
	EVI  *float64
}

type LandCoverInput struct {
	ForestPercent    *float64
	GrasslandPercent *float64
}

// Inputs gathers everything the collaborators fetched for one location.
type Inputs struct {
	Weather      WeatherInput
	AirQuality   AirQualityInput
	DroughtIndex *float64
	CO2Level     float64
	Latitude     float64
	Longitude    float64
	Vegetation   *VegetationInput
	LandCover    *LandCoverInput
	// Month overrides the calendar month of now when in 1..12.
	Month int
}

// Float returns a pointer to v, for filling optional inputs.
func Float(v float64) *float64 { return &v }

// PrepareInputData clamps and defaults raw inputs into a FeatureRecord.
// It never fails: non-finite values count as missing and out-of-range
// values are clamped.
func PrepareInputData(in Inputs, now time.Time) FeatureRecord {
	rec := FeatureRecord{
		Temperature:     clamp(valueOr(in.Weather.Temperature, FallbackTemperature), -50, 60),
		Humidity:        clamp(valueOr(in.Weather.Humidity, FallbackHumidity), 0, 100),
		AirQualityIndex: clamp(valueOr(in.AirQuality.AQI, FallbackAQI), 1, 5),
		PM25:            clamp(valueOr(in.AirQuality.PM25, 0), 0, 1000),
		PM10:            clamp(valueOr(in.AirQuality.PM10, 0), 0, 1000),
		CO2Level:        finiteOr(in.CO2Level, 0),
		Latitude:        clamp(finiteOr(in.Latitude, 0), -90, 90),
		Longitude:       clamp(finiteOr(in.Longitude, 0), -180, 180),
		Month:           in.Month,
	}

	if d, ok := present(in.DroughtIndex); ok {
		rec.DroughtIndex = clamp(d, 0, 100)
	} else {
		rec.DroughtIndex = EstimateDroughtIndex(rec.Temperature, rec.Humidity)
	}

	if in.Vegetation != nil {
		rec.NDVI = clampedPtr(in.Vegetation.NDVI, -1, 1)
		rec.EVI = clampedPtr(in.Vegetation.EVI, -1, 1)
	}
	if in.LandCover != nil {
		rec.ForestPercent = clampedPtr(in.LandCover.ForestPercent, 0, 100)
		rec.GrasslandPercent = clampedPtr(in.LandCover.GrasslandPercent, 0, 100)
	}

	if rec.Month < 1 || rec.Month > 12 {
		rec.Month = int(now.Month())
	}
	return rec
}

// EstimateDroughtIndex derives a 0-100 fuel dryness proxy from temperature
// and relative humidity.
func EstimateDroughtIndex(temperature, humidity float64) float64 {
	return clamp(temperature*1.5+(100-humidity)*0.6-10, 0, 100)
}

func present(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}

func valueOr(v *float64, def float64) float64 {
	if x, ok := present(v); ok {
		return x
	}
	return def
}

func finiteOr(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

func clampedPtr(v *float64, lo, hi float64) *float64 {
	x, ok := present(v)
	if !ok {
		return nil
	}
	return Float(clamp(x, lo, hi))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
