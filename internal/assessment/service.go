package assessment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/wildfire-risk/internal/observability"
	"github.com/i474232898/wildfire-risk/internal/risk"
	"github.com/i474232898/wildfire-risk/internal/weather"
)

const (
	// coToCO2Factor converts a CO concentration in μg/m³ to the CO2-equivalent
	// figure reported as co2_level.
	coToCO2Factor = 1.57 / 1000
	// precipitationDamping is subtracted from the drought index per mm of rain.
	precipitationDamping = 5.0
)

// Dependencies wires the collaborators of a Service. Geocoder, Weather,
// Forest and Store are required; the rest are optional.
type Dependencies struct {
	Geocoder   weather.Geocoder
	Weather    WeatherSource
	AirQuality weather.AirQualityProvider
	Vegetation weather.VegetationProvider
	Forest     *risk.Forest
	Store      Store
	Publisher  Publisher
	Metrics    *observability.Metrics
	Clock      clockwork.Clock
}

// Service turns a place name into a scored, persisted Prediction.
type Service struct {
	geocoder   weather.Geocoder
	weather    WeatherSource
	airQuality weather.AirQualityProvider
	vegetation weather.VegetationProvider
	forest     *risk.Forest
	explainer  *risk.Explainer
	store      Store
	publisher  Publisher
	metrics    *observability.Metrics
	clock      clockwork.Clock
}

// NewService validates deps and fills defaults for the optional ones.
func NewService(deps Dependencies) (*Service, error) {
	switch {
	case deps.Geocoder == nil:
		return nil, errors.New("assessment: geocoder is required")
	case deps.Weather == nil:
		return nil, errors.New("assessment: weather source is required")
	case deps.Forest == nil:
		return nil, errors.New("assessment: forest is required")
	case deps.Store == nil:
		return nil, errors.New("assessment: store is required")
	}

	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Metrics == nil {
		deps.Metrics = observability.NewMetricsWithRegistry(prometheus.NewRegistry())
	}
	deps.Metrics.ForestTrees.Set(float64(deps.Forest.Size()))

	return &Service{
		geocoder:   deps.Geocoder,
		weather:    deps.Weather,
		airQuality: deps.AirQuality,
		vegetation: deps.Vegetation,
		forest:     deps.Forest,
		explainer:  risk.NewExplainer(deps.Clock),
		store:      deps.Store,
		publisher:  deps.Publisher,
		metrics:    deps.Metrics,
		clock:      deps.Clock,
	}, nil
}

// Assess geocodes location, gathers its signals, scores them and records
// the prediction. Only geocoding and weather are fatal; air quality and
// vegetation degrade to defaults when their sources fail.
func (s *Service) Assess(ctx context.Context, location string) (Prediction, error) {
	start := s.clock.Now()
	p, err := s.assess(ctx, strings.TrimSpace(location))
	s.metrics.PredictionDuration.Observe(s.clock.Since(start).Seconds())
	if err != nil {
		s.metrics.PredictionsTotal.WithLabelValues("error").Inc()
		return Prediction{}, err
	}
	s.metrics.PredictionsTotal.WithLabelValues("success").Inc()
	s.metrics.Probability.Observe(p.Probability)
	return p, nil
}

func (s *Service) assess(ctx context.Context, location string) (Prediction, error) {
	loc, err := s.geocoder.Geocode(ctx, location)
	if err != nil {
		s.metrics.UpstreamErrors.WithLabelValues("geocoder").Inc()
		return Prediction{}, fmt.Errorf("geocode %q: %w", location, err)
	}

	var (
		snap weather.WeatherSnapshot
		air  *weather.AirQuality
		veg  *weather.VegetationReport
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap, err = s.weather.Current(gctx, loc)
		if err != nil {
			s.metrics.UpstreamErrors.WithLabelValues("weather").Inc()
			return fmt.Errorf("weather for %q: %w", location, err)
		}
		return nil
	})
	if s.airQuality != nil {
		g.Go(func() error {
			aq, err := s.airQuality.FetchAirQuality(gctx, loc)
			if err != nil {
				s.metrics.UpstreamErrors.WithLabelValues("air_quality").Inc()
				log.Warn().Err(err).Str("location", location).Msg("air quality unavailable; using defaults")
				return nil
			}
			air = &aq
			return nil
		})
	}
	if s.vegetation != nil {
		g.Go(func() error {
			report, err := s.vegetation.FetchVegetation(gctx, loc)
			if err != nil {
				s.metrics.UpstreamErrors.WithLabelValues("vegetation").Inc()
				log.Warn().Err(err).Str("location", location).Msg("vegetation unavailable; scoring without it")
				return nil
			}
			veg = &report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Prediction{}, err
	}

	now := s.clock.Now().UTC()
	rec := risk.PrepareInputData(buildInputs(loc, snap, air, veg), now)
	p := Prediction{
		ID:                uuid.NewString(),
		Location:          location,
		Latitude:          rec.Latitude,
		Longitude:         rec.Longitude,
		Probability:       s.forest.Predict(rec),
		CO2Level:          rec.CO2Level,
		Temperature:       rec.Temperature,
		Humidity:          rec.Humidity,
		DroughtIndex:      rec.DroughtIndex,
		AirQualityIndex:   rec.AirQualityIndex,
		PM25:              rec.PM25,
		PM10:              rec.PM10,
		ModelType:         ModelType,
		FeatureImportance: s.explainer.Explain(),
		CreatedAt:         now,
	}
	if rec.NDVI != nil || rec.EVI != nil {
		p.VegetationIndex = &VegetationIndex{NDVI: rec.NDVI, EVI: rec.EVI}
	}
	if rec.ForestPercent != nil || rec.GrasslandPercent != nil {
		p.LandCover = &LandCover{ForestPercent: rec.ForestPercent, GrasslandPercent: rec.GrasslandPercent}
	}

	log.Info().
		Str("id", p.ID).
		Str("location", location).
		Float64("probability", p.Probability).
		Float64("temperature", p.Temperature).
		Float64("humidity", p.Humidity).
		Msg("wildfire risk assessed")

	// The prediction is still returned if persisting or announcing it fails.
	if err := s.store.Save(ctx, p); err != nil {
		s.metrics.UpstreamErrors.WithLabelValues("store").Inc()
		log.Error().Err(err).Str("id", p.ID).Msg("failed to store prediction")
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, p); err != nil {
			s.metrics.UpstreamErrors.WithLabelValues("events").Inc()
			log.Error().Err(err).Str("id", p.ID).Msg("failed to publish prediction")
		}
	}
	return p, nil
}

// Latest returns the most recent stored prediction for location.
func (s *Service) Latest(ctx context.Context, location string) (Prediction, error) {
	return s.store.Latest(ctx, strings.TrimSpace(location))
}

// History returns stored predictions for location within [from, to].
func (s *Service) History(ctx context.Context, location string, from, to time.Time) ([]Prediction, error) {
	return s.store.Range(ctx, strings.TrimSpace(location), from, to)
}

// FeatureImportance returns the seasonally adjusted importance for today.
func (s *Service) FeatureImportance() map[string]float64 {
	return s.explainer.Explain()
}

func buildInputs(loc weather.Location, snap weather.WeatherSnapshot, air *weather.AirQuality, veg *weather.VegetationReport) risk.Inputs {
	in := risk.Inputs{
		Weather: risk.WeatherInput{
			Temperature: risk.Float(snap.Temperature),
			Humidity:    snap.Humidity,
		},
		DroughtIndex: risk.Float(DroughtIndex(snap)),
		Latitude:     loc.Latitude,
		Longitude:    loc.Longitude,
	}

	if air != nil {
		in.AirQuality = risk.AirQualityInput{
			AQI:  risk.Float(air.AQI),
			PM25: risk.Float(air.PM25),
			PM10: risk.Float(air.PM10),
			CO:   risk.Float(air.CO),
		}
		in.CO2Level = CO2Equivalent(air.CO)
	}

	if veg != nil {
		if veg.Vegetation != nil {
			in.Vegetation = &risk.VegetationInput{NDVI: veg.Vegetation.NDVI, EVI: veg.Vegetation.EVI}
		}
		if veg.LandCover != nil {
			in.LandCover = &risk.LandCoverInput{
				ForestPercent:    veg.LandCover.ForestPercent,
				GrasslandPercent: veg.LandCover.GrasslandPercent,
			}
		}
	}
	return in
}

// DroughtIndex estimates fuel dryness from a weather snapshot, damped by
// recent precipitation.
func DroughtIndex(snap weather.WeatherSnapshot) float64 {
	humidity := risk.FallbackHumidity
	if snap.Humidity != nil {
		humidity = *snap.Humidity
	}
	d := risk.EstimateDroughtIndex(snap.Temperature, humidity) - snap.PrecipMM*precipitationDamping
	return math.Max(0, math.Min(100, d))
}

// CO2Equivalent converts a CO concentration (μg/m³) into co2_level.
func CO2Equivalent(co float64) float64 {
	return co * coToCO2Factor
}
