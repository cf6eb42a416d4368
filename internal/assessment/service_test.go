package assessment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/i474232898/wildfire-risk/internal/assessment"
	"github.com/i474232898/wildfire-risk/internal/observability"
	"github.com/i474232898/wildfire-risk/internal/risk"
	"github.com/i474232898/wildfire-risk/internal/store"
	"github.com/i474232898/wildfire-risk/internal/weather"
	"github.com/i474232898/wildfire-risk/internal/weather/weathermock"
)

var deathValley = weather.Location{Name: "Death Valley", Latitude: 36.46, Longitude: -116.87}

type fakeWeather struct {
	snap weather.WeatherSnapshot
	err  error
}

func (f fakeWeather) Current(context.Context, weather.Location) (weather.WeatherSnapshot, error) {
	return f.snap, f.err
}

type recordingPublisher struct {
	published []assessment.Prediction
	err       error
}

func (r *recordingPublisher) Publish(_ context.Context, p assessment.Prediction) error {
	r.published = append(r.published, p)
	return r.err
}

type fixture struct {
	geo     *weathermock.MockGeocoder
	air     *weathermock.MockAirQualityProvider
	veg     *weathermock.MockVegetationProvider
	store   *store.MemoryStore
	pub     *recordingPublisher
	metrics *observability.Metrics
	clock   *clockwork.FakeClock
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	return &fixture{
		geo:     weathermock.NewMockGeocoder(ctrl),
		air:     weathermock.NewMockAirQualityProvider(ctrl),
		veg:     weathermock.NewMockVegetationProvider(ctrl),
		store:   store.NewMemoryStore(10, 0),
		pub:     &recordingPublisher{},
		metrics: observability.NewMetricsWithRegistry(prometheus.NewRegistry()),
		clock:   clockwork.NewFakeClockAt(time.Date(2024, 8, 1, 20, 0, 0, 0, time.UTC)),
	}
}

func (f *fixture) service(t *testing.T, w assessment.WeatherSource) *assessment.Service {
	t.Helper()
	params := risk.DefaultParams()
	params.Seed = 7
	forest, err := risk.NewForest(params)
	require.NoError(t, err)

	svc, err := assessment.NewService(assessment.Dependencies{
		Geocoder:   f.geo,
		Weather:    w,
		AirQuality: f.air,
		Vegetation: f.veg,
		Forest:     forest,
		Store:      f.store,
		Publisher:  f.pub,
		Metrics:    f.metrics,
		Clock:      f.clock,
	})
	require.NoError(t, err)
	return svc
}

func hotDry() fakeWeather {
	return fakeWeather{snap: weather.WeatherSnapshot{
		Location:    deathValley,
		Temperature: 45,
		Humidity:    risk.Float(8),
	}}
}

func TestAssess_FullSignal(t *testing.T) {
	f := newFixture(t)
	f.geo.EXPECT().Geocode(gomock.Any(), "Death Valley").Return(deathValley, nil)
	f.air.EXPECT().FetchAirQuality(gomock.Any(), deathValley).Return(weather.AirQuality{AQI: 3, PM25: 30, PM10: 45, CO: 500}, nil)
	f.veg.EXPECT().FetchVegetation(gomock.Any(), deathValley).Return(weather.VegetationReport{
		Vegetation: &weather.Vegetation{NDVI: risk.Float(0.1)},
		LandCover:  &weather.LandCover{GrasslandPercent: risk.Float(20)},
	}, nil)

	svc := f.service(t, hotDry())
	p, err := svc.Assess(context.Background(), "  Death Valley ")
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Death Valley", p.Location)
	assert.Equal(t, deathValley.Latitude, p.Latitude)
	assert.Equal(t, assessment.ModelType, p.ModelType)
	assert.Greater(t, p.Probability, 70.0)
	assert.LessOrEqual(t, p.Probability, 97.0)
	assert.Equal(t, 45.0, p.Temperature)
	assert.Equal(t, 8.0, p.Humidity)
	assert.Equal(t, 100.0, p.DroughtIndex)
	assert.Equal(t, 3.0, p.AirQualityIndex)
	assert.InDelta(t, 0.785, p.CO2Level, 1e-9)
	require.NotNil(t, p.VegetationIndex)
	assert.Equal(t, 0.1, *p.VegetationIndex.NDVI)
	require.NotNil(t, p.LandCover)
	assert.Nil(t, p.LandCover.ForestPercent)
	assert.True(t, p.CreatedAt.Equal(f.clock.Now()))
	assert.InDelta(t, 1.0, sum(p.FeatureImportance), 1e-9)

	stored, err := svc.Latest(context.Background(), "death valley")
	require.NoError(t, err)
	assert.Equal(t, p.ID, stored.ID)
	require.Len(t, f.pub.published, 1)
	assert.Equal(t, p.ID, f.pub.published[0].ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PredictionsTotal.WithLabelValues("success")))
	assert.Equal(t, 50.0, testutil.ToFloat64(f.metrics.ForestTrees))
}

func TestAssess_OptionalSignalsDegrade(t *testing.T) {
	f := newFixture(t)
	f.geo.EXPECT().Geocode(gomock.Any(), "Death Valley").Return(deathValley, nil)
	f.air.EXPECT().FetchAirQuality(gomock.Any(), gomock.Any()).Return(weather.AirQuality{}, errors.New("quota"))
	f.veg.EXPECT().FetchVegetation(gomock.Any(), gomock.Any()).Return(weather.VegetationReport{}, errors.New("timeout"))

	p, err := f.service(t, hotDry()).Assess(context.Background(), "Death Valley")
	require.NoError(t, err)

	assert.Equal(t, risk.FallbackAQI, p.AirQualityIndex)
	assert.Zero(t, p.CO2Level)
	assert.Nil(t, p.VegetationIndex)
	assert.Nil(t, p.LandCover)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.UpstreamErrors.WithLabelValues("air_quality")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.UpstreamErrors.WithLabelValues("vegetation")))
}

func TestAssess_GeocodeFailure(t *testing.T) {
	f := newFixture(t)
	f.geo.EXPECT().Geocode(gomock.Any(), "Atlantis").Return(weather.Location{}, weather.ErrLocationNotFound)

	_, err := f.service(t, hotDry()).Assess(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, weather.ErrLocationNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PredictionsTotal.WithLabelValues("error")))
	assert.Empty(t, f.pub.published)
}

func TestAssess_WeatherFailure(t *testing.T) {
	f := newFixture(t)
	f.geo.EXPECT().Geocode(gomock.Any(), gomock.Any()).Return(deathValley, nil)
	f.air.EXPECT().FetchAirQuality(gomock.Any(), gomock.Any()).Return(weather.AirQuality{}, nil).AnyTimes()
	f.veg.EXPECT().FetchVegetation(gomock.Any(), gomock.Any()).Return(weather.VegetationReport{}, nil).AnyTimes()

	_, err := f.service(t, fakeWeather{err: weather.ErrNoReadings}).Assess(context.Background(), "Death Valley")
	assert.ErrorIs(t, err, weather.ErrNoReadings)

	_, err = f.store.Latest(context.Background(), "Death Valley")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAssess_PublishFailureStillReturnsPrediction(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")
	f.geo.EXPECT().Geocode(gomock.Any(), gomock.Any()).Return(deathValley, nil)
	f.air.EXPECT().FetchAirQuality(gomock.Any(), gomock.Any()).Return(weather.AirQuality{AQI: 1}, nil)
	f.veg.EXPECT().FetchVegetation(gomock.Any(), gomock.Any()).Return(weather.VegetationReport{}, nil)

	p, err := f.service(t, hotDry()).Assess(context.Background(), "Death Valley")
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.UpstreamErrors.WithLabelValues("events")))
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	f.geo.EXPECT().Geocode(gomock.Any(), gomock.Any()).Return(deathValley, nil).Times(3)
	f.air.EXPECT().FetchAirQuality(gomock.Any(), gomock.Any()).Return(weather.AirQuality{AQI: 2}, nil).Times(3)
	f.veg.EXPECT().FetchVegetation(gomock.Any(), gomock.Any()).Return(weather.VegetationReport{}, nil).Times(3)

	svc := f.service(t, hotDry())
	start := f.clock.Now()
	for range 3 {
		_, err := svc.Assess(context.Background(), "Death Valley")
		require.NoError(t, err)
		f.clock.Advance(time.Hour)
	}

	got, err := svc.History(context.Background(), "Death Valley", start, start.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFeatureImportance_UsesClock(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t, hotDry())

	imp := svc.FeatureImportance()
	assert.InDelta(t, 0.15, imp[risk.FeatureHumidity], 1e-9)
}

func TestNewService_RequiresCollaborators(t *testing.T) {
	_, err := assessment.NewService(assessment.Dependencies{})
	assert.Error(t, err)
}

func TestDroughtIndex(t *testing.T) {
	tests := []struct {
		name string
		snap weather.WeatherSnapshot
		want float64
	}{
		{"hot dry", weather.WeatherSnapshot{Temperature: 40, Humidity: risk.Float(10)}, 100},
		{"rain damps", weather.WeatherSnapshot{Temperature: 20, Humidity: risk.Float(50), PrecipMM: 2}, 40},
		{"missing humidity", weather.WeatherSnapshot{Temperature: 20}, 44},
		{"floor", weather.WeatherSnapshot{Temperature: 5, Humidity: risk.Float(95), PrecipMM: 10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, assessment.DroughtIndex(tt.snap), 1e-9)
		})
	}
}

func sum(m map[string]float64) float64 {
	var s float64
	for _, v := range m {
		s += v
	}
	return s
}
