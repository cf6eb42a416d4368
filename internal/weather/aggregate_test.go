package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateReadings(t *testing.T) {
	loc := Location{Name: "Fresno", Latitude: 36.7, Longitude: -119.8}
	t1 := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(10 * time.Minute)

	snap := AggregateReadings(loc, []ProviderReading{
		{ProviderName: "a", Timestamp: t1, TemperatureC: 30, HumidityPct: 20, HasHumidity: true, PrecipMm: 0, Condition: ConditionClear},
		{ProviderName: "b", Timestamp: t2, TemperatureC: 34, HumidityPct: 30, HasHumidity: true, PrecipMm: 2, Condition: ConditionCloudy},
		{ProviderName: "c", Timestamp: t1, TemperatureC: 32, Condition: ConditionClear},
	})

	assert.Equal(t, loc, snap.Location)
	assert.Equal(t, t2, snap.Timestamp)
	assert.InDelta(t, 32.0, snap.Temperature, 1e-9)
	require.NotNil(t, snap.Humidity)
	assert.InDelta(t, 25.0, *snap.Humidity, 1e-9)
	assert.InDelta(t, 2.0/3.0, snap.PrecipMM, 1e-9)
	assert.Equal(t, ConditionClear, snap.Condition)
	assert.Len(t, snap.Providers, 3)
}

func TestAggregateReadings_NoHumidity(t *testing.T) {
	snap := AggregateReadings(Location{Name: "x"}, []ProviderReading{{TemperatureC: 10, Condition: ConditionRain}})
	assert.Nil(t, snap.Humidity)
	assert.Equal(t, ConditionRain, snap.Condition)
}

func TestAggregateReadings_TieGoesToFirstSeen(t *testing.T) {
	for range 20 {
		snap := AggregateReadings(Location{Name: "x"}, []ProviderReading{
			{Condition: ConditionStorm},
			{Condition: ConditionRain},
		})
		assert.Equal(t, ConditionStorm, snap.Condition)
	}
}

func TestAggregateReadings_Empty(t *testing.T) {
	snap := AggregateReadings(Location{Name: "x"}, nil)
	assert.Equal(t, ConditionUnknown, snap.Condition)
	assert.False(t, snap.Timestamp.IsZero())
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "los angeles, ca", NormalizeName("  Los   Angeles, CA "))
	assert.Equal(t, Location{Name: "PARIS"}.Key(), Location{Name: "paris"}.Key())
}
