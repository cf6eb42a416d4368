package risk

import "math"

// Specialization shifts the regime a tree is most sensitive to.
type Specialization int

const (
	SpecBalanced Specialization = iota
	SpecCool
	SpecHumid
	SpecFuel
	SpecArid

	numSpecializations = 5
)

func (s Specialization) String() string {
	switch s {
	case SpecBalanced:
		return "balanced"
	case SpecCool:
		return "cool"
	case SpecHumid:
		return "humid"
	case SpecFuel:
		return "fuel"
	case SpecArid:
		return "arid"
	default:
		return "unknown"
	}
}

// Specialization overrides, applied before jitter.
const (
	coolTemperatureThreshold = 18.0
	coolTemperatureBoost     = 1.2
	humidHumidityThreshold   = 55.0
	fuelWeightBoost          = 1.5
	aridHumidityThreshold    = 30.0
	aridDroughtThreshold     = 40.0
	aridDroughtBoost         = 1.2
)

// RiskBand is the result of the latitude test.
type RiskBand int

const (
	BandNone RiskBand = iota
	BandPartial
	BandFull
)

type Hemisphere int

const (
	Northern Hemisphere = iota
	Southern
)

// HemisphereOf places the equator in the northern hemisphere.
func HemisphereOf(latitude float64) Hemisphere {
	if latitude < 0 {
		return Southern
	}
	return Northern
}

// TreeRule is one ensemble member. Rules are plain values; all behaviour
// lives in the package functions that read them.
type TreeRule struct {
	Index          int            `json:"index"`
	Specialization Specialization `json:"specialization"`
	Jitter         float64        `json:"jitter"`

	TemperatureThreshold float64 `json:"temperature_threshold"`
	TemperatureWeight    float64 `json:"temperature_weight"`
	HumidityThreshold    float64 `json:"humidity_threshold"`
	HumidityWeight       float64 `json:"humidity_weight"`
	DroughtThreshold     float64 `json:"drought_threshold"`
	DroughtWeight        float64 `json:"drought_weight"`
	AQIThreshold         float64 `json:"aqi_threshold"`
	AQIWeight            float64 `json:"aqi_weight"`
	PM25Threshold        float64 `json:"pm25_threshold"`
	PM25Weight           float64 `json:"pm25_weight"`
	NDVILow              float64 `json:"ndvi_low"`
	NDVIHigh             float64 `json:"ndvi_high"`
	NDVIWeight           float64 `json:"ndvi_weight"`
	ForestBandMin        float64 `json:"forest_band_min"`
	ForestBandMax        float64 `json:"forest_band_max"`
	ForestWeight         float64 `json:"forest_weight"`
	GrasslandWeight      float64 `json:"grassland_weight"`
	LatitudeFullMin      float64 `json:"latitude_full_min"`
	LatitudeFullMax      float64 `json:"latitude_full_max"`
	LatitudePartialMin   float64 `json:"latitude_partial_min"`
	LatitudePartialMax   float64 `json:"latitude_partial_max"`
	LatitudeWeight       float64 `json:"latitude_weight"`
	SeasonalBonus        float64 `json:"seasonal_bonus"`
	InteractionWeight    float64 `json:"interaction_weight"`
}

func newTreeRule(index int, jitter float64, base TreeParams) TreeRule {
	t := TreeRule{
		Index:                index,
		Specialization:       Specialization(index % numSpecializations),
		Jitter:               jitter,
		TemperatureThreshold: base.TemperatureThreshold,
		TemperatureWeight:    base.TemperatureWeight,
		HumidityThreshold:    base.HumidityThreshold,
		HumidityWeight:       base.HumidityWeight,
		DroughtThreshold:     base.DroughtThreshold,
		DroughtWeight:        base.DroughtWeight,
		AQIThreshold:         base.AQIThreshold,
		AQIWeight:            base.AQIWeight,
		PM25Threshold:        base.PM25Threshold,
		PM25Weight:           base.PM25Weight,
		NDVILow:              base.NDVILow,
		NDVIHigh:             base.NDVIHigh,
		NDVIWeight:           base.NDVIWeight,
		ForestBandMin:        base.ForestBandMin,
		ForestBandMax:        base.ForestBandMax,
		ForestWeight:         base.ForestWeight,
		GrasslandWeight:      base.GrasslandWeight,
		LatitudeFullMin:      base.LatitudeFullMin,
		LatitudeFullMax:      base.LatitudeFullMax,
		LatitudePartialMin:   base.LatitudePartialMin,
		LatitudePartialMax:   base.LatitudePartialMax,
		LatitudeWeight:       base.LatitudeWeight,
		SeasonalBonus:        base.SeasonalBonus,
		InteractionWeight:    base.InteractionWeight,
	}

	switch t.Specialization {
	case SpecCool:
		t.TemperatureThreshold = coolTemperatureThreshold
		t.TemperatureWeight *= coolTemperatureBoost
	case SpecHumid:
		t.HumidityThreshold = humidHumidityThreshold
	case SpecFuel:
		t.NDVIWeight *= fuelWeightBoost
		t.ForestWeight *= fuelWeightBoost
	case SpecArid:
		t.HumidityThreshold = aridHumidityThreshold
		t.DroughtThreshold = aridDroughtThreshold
		t.DroughtWeight *= aridDroughtBoost
	}

	t.TemperatureThreshold *= jitter
	t.HumidityThreshold *= jitter
	t.DroughtThreshold *= jitter
	return t
}

// LatitudeRisk reports whether |latitude| falls in the tree's fire-prone band.
func LatitudeRisk(t TreeRule, latitude float64) RiskBand {
	abs := math.Abs(latitude)
	switch {
	case abs >= t.LatitudeFullMin && abs <= t.LatitudeFullMax:
		return BandFull
	case abs >= t.LatitudePartialMin && abs <= t.LatitudePartialMax:
		return BandPartial
	default:
		return BandNone
	}
}

// SeasonalAdjustment returns the tree's bonus when month lies in the local
// fire season: May-September in the north, November-March in the south.
func SeasonalAdjustment(t TreeRule, latitude float64, month int) float64 {
	if inFireSeason(HemisphereOf(latitude), month) {
		return t.SeasonalBonus
	}
	return 0
}

func inFireSeason(h Hemisphere, month int) bool {
	if h == Southern {
		return month >= 11 || month <= 3
	}
	return month >= 5 && month <= 9
}
