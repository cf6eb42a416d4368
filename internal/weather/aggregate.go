package weather

import "time"

// AggregateReadings combines multiple provider readings into a single WeatherSnapshot.
// Numeric fields are averaged over the providers that report them. The
// condition is chosen by majority; ties go to the condition seen first.
func AggregateReadings(loc Location, readings []ProviderReading) WeatherSnapshot {
	if len(readings) == 0 {
		return WeatherSnapshot{
			Location:  loc,
			Timestamp: time.Now().UTC(),
			Condition: ConditionUnknown,
		}
	}

	var (
		sumTemp, sumWind, sumPressure, sumPrecip float64
		sumHumidity                              float64
		humidityCount                            int
		newestTS                                 time.Time
	)

	counts := make(map[Condition]int)
	order := make([]Condition, 0, len(readings))
	providers := make([]ProviderContribution, 0, len(readings))

	for _, r := range readings {
		sumTemp += r.TemperatureC
		sumWind += r.WindSpeedMS
		sumPressure += r.PressureHpa
		sumPrecip += r.PrecipMm
		if r.HasHumidity {
			sumHumidity += r.HumidityPct
			humidityCount++
		}

		if _, seen := counts[r.Condition]; !seen {
			order = append(order, r.Condition)
		}
		counts[r.Condition]++

		if r.Timestamp.After(newestTS) {
			newestTS = r.Timestamp
		}
		providers = append(providers, ProviderContribution{
			ProviderName: r.ProviderName,
			Timestamp:    r.Timestamp,
		})
	}

	bestCond := ConditionUnknown
	bestCount := 0
	for _, cond := range order {
		if counts[cond] > bestCount {
			bestCount = counts[cond]
			bestCond = cond
		}
	}

	if newestTS.IsZero() {
		newestTS = time.Now().UTC()
	}

	n := float64(len(readings))
	snap := WeatherSnapshot{
		Location:    loc,
		Timestamp:   newestTS,
		Temperature: sumTemp / n,
		WindSpeed:   sumWind / n,
		Pressure:    sumPressure / n,
		PrecipMM:    sumPrecip / n,
		Condition:   bestCond,
		Providers:   providers,
	}
	if humidityCount > 0 {
		h := sumHumidity / float64(humidityCount)
		snap.Humidity = &h
	}
	return snap
}
