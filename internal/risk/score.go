package risk

import "math"

const (
	temperatureExponent = 1.2
	humidityExponent    = 1.3
	droughtExponent     = 1.2

	// Fractions of a weight used on the benign side of a threshold.
	belowTemperatureFactor = 0.15
	aboveHumidityFactor    = 0.5
	belowDroughtFactor     = 0.2
	dryNDVIFactor          = 0.5
	wetNDVIFactor          = 0.2

	pm25FlatMultiple   = 2.0
	pm25Saturation     = 100.0
	grasslandDryBelow  = 50.0
	grasslandDryFactor = 1.5
)

// ScoreTree evaluates a single tree against a populated record and returns
// a raw probability in [0, maxProbability].
func ScoreTree(t TreeRule, f FeatureRecord, base, maxProbability float64) float64 {
	p := base

	hot := f.Temperature > t.TemperatureThreshold
	if hot {
		p += t.TemperatureWeight * math.Pow(f.Temperature/t.TemperatureThreshold, temperatureExponent)
	} else {
		p += belowTemperatureFactor * t.TemperatureWeight * f.Temperature / t.TemperatureThreshold
	}

	dry := f.Humidity < t.HumidityThreshold
	if dry {
		p += t.HumidityWeight * math.Pow((t.HumidityThreshold-f.Humidity)/t.HumidityThreshold, humidityExponent)
	} else {
		p -= aboveHumidityFactor * t.HumidityWeight * (f.Humidity - t.HumidityThreshold) / (100 - t.HumidityThreshold)
	}

	if f.DroughtIndex > t.DroughtThreshold {
		p += t.DroughtWeight * math.Pow(f.DroughtIndex/t.DroughtThreshold, droughtExponent)
	} else {
		p += belowDroughtFactor * t.DroughtWeight * f.DroughtIndex / t.DroughtThreshold
	}

	if f.AirQualityIndex > t.AQIThreshold {
		p += t.AQIWeight * f.AirQualityIndex / 5
	}

	if f.PM25 > pm25FlatMultiple*t.PM25Threshold {
		p += t.PM25Weight
	} else {
		p += t.PM25Weight * math.Min(f.PM25, pm25Saturation) / pm25Saturation
	}

	if f.NDVI != nil {
		ndvi := *f.NDVI
		switch {
		case ndvi < t.NDVILow:
			dryness := 1 - f.Humidity/100
			p += dryNDVIFactor * t.NDVIWeight * dryness
		case ndvi > t.NDVIHigh:
			p += wetNDVIFactor * t.NDVIWeight
		default:
			p += t.NDVIWeight
		}
	}

	if f.ForestPercent != nil {
		cover := *f.ForestPercent
		if cover >= t.ForestBandMin && cover <= t.ForestBandMax {
			p += t.ForestWeight
		} else {
			p += t.ForestWeight * cover / 100
		}
	}

	if f.GrasslandPercent != nil {
		g := t.GrasslandWeight * *f.GrasslandPercent / 100
		if f.Humidity < grasslandDryBelow {
			g *= grasslandDryFactor
		}
		p += g
	}

	switch LatitudeRisk(t, f.Latitude) {
	case BandFull:
		p += t.LatitudeWeight
	case BandPartial:
		p += t.LatitudeWeight / 2
	}

	p += SeasonalAdjustment(t, f.Latitude, f.Month)

	// Compounding hot and dry conditions.
	if hot && dry {
		excessT := (f.Temperature - t.TemperatureThreshold) / t.TemperatureThreshold
		excessH := (t.HumidityThreshold - f.Humidity) / t.HumidityThreshold
		p += t.InteractionWeight * excessT * excessH
	}

	return clamp(p, 0, maxProbability)
}
