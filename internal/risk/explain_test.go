package risk

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func sum(m map[string]float64) float64 {
	var s float64
	for _, v := range m {
		s += v
	}
	return s
}

func TestExplain_SumsToOne(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		w := Explain(time.Date(2025, m, 10, 0, 0, 0, 0, time.UTC))
		assert.InDelta(t, 1.0, sum(w), 1e-9, "month %s", m)
		assert.Len(t, w, 11)
	}
}

func TestExplain_SeasonalShift(t *testing.T) {
	off := Explain(time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC))
	assert.InDelta(t, 0.25, off[FeatureTemperature], 1e-9)
	assert.InDelta(t, 0.20, off[FeatureHumidity], 1e-9)
	assert.InDelta(t, 0.22, off[FeatureDroughtIndex], 1e-9)

	for _, m := range []time.Month{time.July, time.January} {
		w := Explain(time.Date(2025, m, 1, 0, 0, 0, 0, time.UTC))
		assert.InDelta(t, 0.15, w[FeatureHumidity], 1e-9)
		assert.InDelta(t, 0.28, w[FeatureTemperature], 1e-9)
		assert.InDelta(t, 0.24, w[FeatureDroughtIndex], 1e-9)
		assert.InDelta(t, 0.07, w[FeaturePM25], 1e-9)
	}
}

func TestExplainer_UsesClock(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC))
	e := NewExplainer(clock)
	assert.InDelta(t, 0.20, e.Explain()[FeatureHumidity], 1e-9)

	clock.Advance(24 * time.Hour * 70)
	assert.InDelta(t, 0.15, e.Explain()[FeatureHumidity], 1e-9)
}

func TestForest_FeatureImportanceIsCopy(t *testing.T) {
	f := newTestForest(t, 5, 1)
	w := f.FeatureImportance()
	w[FeatureTemperature] = 0
	assert.InDelta(t, 0.25, f.FeatureImportance()[FeatureTemperature], 1e-9)
}
