package risk

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Feature names as reported in importance maps.
const (
	FeatureTemperature      = "temperature"
	FeatureHumidity         = "humidity"
	FeatureDroughtIndex     = "drought_index"
	FeatureAirQualityIndex  = "air_quality_index"
	FeaturePM25             = "pm2_5"
	FeatureCO2Level         = "co2_level"
	FeatureLatitude         = "latitude"
	FeatureLongitude        = "longitude"
	FeatureNDVI             = "ndvi"
	FeatureForestPercent    = "forest_percent"
	FeatureGrasslandPercent = "grassland_percent"
)

const (
	summerShift            = 0.05
	summerHumidityFloor    = 0.15
	summerTemperatureShare = 0.6
	summerDroughtShare     = 0.4
)

func baseImportance() map[string]float64 {
	return map[string]float64{
		FeatureTemperature:      0.25,
		FeatureHumidity:         0.20,
		FeatureDroughtIndex:     0.22,
		FeatureAirQualityIndex:  0.06,
		FeaturePM25:             0.07,
		FeatureCO2Level:         0.04,
		FeatureLatitude:         0.04,
		FeatureLongitude:        0.02,
		FeatureNDVI:             0.06,
		FeatureForestPercent:    0.03,
		FeatureGrasslandPercent: 0.01,
	}
}

// Explain returns feature importance for the given date. In June-August
// and December-February weight moves from humidity to temperature and
// drought. The result always sums to 1.
func Explain(now time.Time) map[string]float64 {
	w := baseImportance()

	if isSummerMonth(now.Month()) {
		hum := w[FeatureHumidity]
		shifted := hum - summerShift
		if shifted < summerHumidityFloor {
			shifted = summerHumidityFloor
		}
		if moved := hum - shifted; moved > 0 {
			w[FeatureHumidity] = shifted
			w[FeatureTemperature] += moved * summerTemperatureShare
			w[FeatureDroughtIndex] += moved * summerDroughtShare
		}
	}

	var total float64
	for _, v := range w {
		total += v
	}
	for k, v := range w {
		w[k] = v / total
	}
	return w
}

func isSummerMonth(m time.Month) bool {
	switch m {
	case time.June, time.July, time.August, time.December, time.January, time.February:
		return true
	}
	return false
}

// Explainer binds Explain to a clock.
type Explainer struct {
	clock clockwork.Clock
}

// NewExplainer uses the real clock when c is nil.
func NewExplainer(c clockwork.Clock) *Explainer {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	return &Explainer{clock: c}
}

func (e *Explainer) Explain() map[string]float64 {
	return Explain(e.clock.Now())
}
