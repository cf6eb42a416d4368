package risk

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TreeParams holds the baseline thresholds and contribution weights every
// tree starts from before its specialization and jitter are applied.
type TreeParams struct {
	TemperatureThreshold float64 `yaml:"temperature_threshold"`
	TemperatureWeight    float64 `yaml:"temperature_weight"`
	HumidityThreshold    float64 `yaml:"humidity_threshold"`
	HumidityWeight       float64 `yaml:"humidity_weight"`
	DroughtThreshold     float64 `yaml:"drought_threshold"`
	DroughtWeight        float64 `yaml:"drought_weight"`
	AQIThreshold         float64 `yaml:"aqi_threshold"`
	AQIWeight            float64 `yaml:"aqi_weight"`
	PM25Threshold        float64 `yaml:"pm25_threshold"`
	PM25Weight           float64 `yaml:"pm25_weight"`
	NDVILow              float64 `yaml:"ndvi_low"`
	NDVIHigh             float64 `yaml:"ndvi_high"`
	NDVIWeight           float64 `yaml:"ndvi_weight"`
	ForestBandMin        float64 `yaml:"forest_band_min"`
	ForestBandMax        float64 `yaml:"forest_band_max"`
	ForestWeight         float64 `yaml:"forest_weight"`
	GrasslandWeight      float64 `yaml:"grassland_weight"`
	LatitudeFullMin      float64 `yaml:"latitude_full_min"`
	LatitudeFullMax      float64 `yaml:"latitude_full_max"`
	LatitudePartialMin   float64 `yaml:"latitude_partial_min"`
	LatitudePartialMax   float64 `yaml:"latitude_partial_max"`
	LatitudeWeight       float64 `yaml:"latitude_weight"`
	SeasonalBonus        float64 `yaml:"seasonal_bonus"`
	InteractionWeight    float64 `yaml:"interaction_weight"`
}

// Params are the tunables of the ensemble. The zero value is not useful;
// start from DefaultParams.
type Params struct {
	NumTrees int `yaml:"num_trees"`
	// Seed makes tree jitter reproducible. Zero draws from an unseeded source.
	Seed int64 `yaml:"seed"`

	BaseProbability float64 `yaml:"base_probability"`
	MaxProbability  float64 `yaml:"max_probability"`
	TrimFraction    float64 `yaml:"trim_fraction"`

	HighCalibrationThreshold float64 `yaml:"high_calibration_threshold"`
	HighCalibrationFactor    float64 `yaml:"high_calibration_factor"`
	LowCalibrationThreshold  float64 `yaml:"low_calibration_threshold"`
	LowCalibrationFactor     float64 `yaml:"low_calibration_factor"`

	JitterMin float64 `yaml:"jitter_min"`
	JitterMax float64 `yaml:"jitter_max"`

	// Applicability filter.
	HotTemperature        float64 `yaml:"hot_temperature"`
	DryHumidity           float64 `yaml:"dry_humidity"`
	ColdTunedBelow        float64 `yaml:"cold_tuned_below"`
	HumidTunedAbove       float64 `yaml:"humid_tuned_above"`
	MinApplicableFraction float64 `yaml:"min_applicable_fraction"`

	Tree TreeParams `yaml:"tree"`
}

// DefaultParams returns the stock ensemble configuration.
func DefaultParams() Params {
	return Params{
		NumTrees:                 50,
		BaseProbability:          25,
		MaxProbability:           97,
		TrimFraction:             0.10,
		HighCalibrationThreshold: 70,
		HighCalibrationFactor:    1.05,
		LowCalibrationThreshold:  30,
		LowCalibrationFactor:     0.95,
		JitterMin:                0.95,
		JitterMax:                1.05,
		HotTemperature:           30,
		DryHumidity:              30,
		ColdTunedBelow:           20,
		HumidTunedAbove:          50,
		MinApplicableFraction:    0.7,
		Tree: TreeParams{
			TemperatureThreshold: 25,
			TemperatureWeight:    12,
			HumidityThreshold:    40,
			HumidityWeight:       20,
			DroughtThreshold:     50,
			DroughtWeight:        10,
			AQIThreshold:         2,
			AQIWeight:            5,
			PM25Threshold:        25,
			PM25Weight:           5,
			NDVILow:              0.2,
			NDVIHigh:             0.5,
			NDVIWeight:           8,
			ForestBandMin:        40,
			ForestBandMax:        80,
			ForestWeight:         4,
			GrasslandWeight:      5,
			LatitudeFullMin:      30,
			LatitudeFullMax:      42,
			LatitudePartialMin:   25,
			LatitudePartialMax:   50,
			LatitudeWeight:       4,
			SeasonalBonus:        5,
			InteractionWeight:    10,
		},
	}
}

// LoadParams reads a YAML overlay on top of DefaultParams. Keys missing
// from the file keep their defaults.
func LoadParams(path string) (Params, error) {
	p := DefaultParams()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read model params: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse model params: %w", err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Validate rejects parameter sets the ensemble cannot be built from.
func (p Params) Validate() error {
	switch {
	case p.NumTrees <= 0:
		return fmt.Errorf("num_trees must be positive, got %d", p.NumTrees)
	case p.TrimFraction < 0 || p.TrimFraction >= 0.5:
		return fmt.Errorf("trim_fraction must be in [0, 0.5), got %g", p.TrimFraction)
	case p.JitterMin <= 0 || p.JitterMax < p.JitterMin:
		return fmt.Errorf("invalid jitter band [%g, %g]", p.JitterMin, p.JitterMax)
	case p.MaxProbability <= 0:
		return fmt.Errorf("max_probability must be positive, got %g", p.MaxProbability)
	case p.Tree.TemperatureThreshold <= 0 || p.Tree.HumidityThreshold <= 0 ||
		p.Tree.HumidityThreshold >= 100 || p.Tree.DroughtThreshold <= 0:
		return fmt.Errorf("tree thresholds out of range")
	}
	return nil
}
