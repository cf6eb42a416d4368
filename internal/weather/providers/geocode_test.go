package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/i474232898/wildfire-risk/internal/weather"
	"github.com/i474232898/wildfire-risk/internal/weather/weathermock"
)

func TestGoogleGeocoder(t *testing.T) {
	g := NewGoogleGeocoder("key")
	g.lookup = func(a geocoder.Address) (geocoder.Location, error) {
		assert.Equal(t, "Paradise, CA", a.City)
		assert.Equal(t, "key", geocoder.ApiKey)
		return geocoder.Location{Latitude: 39.76, Longitude: -121.62}, nil
	}

	loc, err := g.Geocode(context.Background(), " Paradise, CA ")
	require.NoError(t, err)
	assert.Equal(t, weather.Location{Name: "Paradise, CA", Latitude: 39.76, Longitude: -121.62}, loc)
}

func TestGoogleGeocoder_NotFound(t *testing.T) {
	g := NewGoogleGeocoder("key")
	g.lookup = func(geocoder.Address) (geocoder.Location, error) {
		return geocoder.Location{}, errors.New("ZERO_RESULTS")
	}

	_, err := g.Geocode(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, weather.ErrLocationNotFound)
}

func TestGoogleGeocoder_MissingKey(t *testing.T) {
	_, err := NewGoogleGeocoder("").Geocode(context.Background(), "Paris")
	assert.ErrorIs(t, err, errMissingAPIKey)
}

func TestOpenMeteoGeocoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("name") != "Redding" {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"name":"Redding","latitude":40.58,"longitude":-122.39,"country":"United States"}]}`))
	}))
	defer srv.Close()

	g := NewOpenMeteoGeocoder(time.Second)
	g.baseURL = srv.URL

	loc, err := g.Geocode(context.Background(), "Redding, CA")
	require.NoError(t, err)
	assert.Equal(t, "Redding, CA", loc.Name)
	assert.Equal(t, "United States", loc.Country)
	assert.Equal(t, 40.58, loc.Latitude)

	_, err = g.Geocode(context.Background(), "Nowhere")
	assert.ErrorIs(t, err, weather.ErrLocationNotFound)

	_, err = g.Geocode(context.Background(), " , ")
	assert.ErrorIs(t, err, weather.ErrLocationNotFound)
}

func TestCachedGeocoder(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := weathermock.NewMockGeocoder(ctrl)

	redding := weather.Location{Name: "Redding", Latitude: 40.58, Longitude: -122.39}
	inner.EXPECT().Geocode(gomock.Any(), "Redding").Return(redding, nil).Times(1)
	inner.EXPECT().Geocode(gomock.Any(), "Atlantis").Return(weather.Location{}, weather.ErrLocationNotFound).Times(2)

	var hits, misses int
	cached := NewCachedGeocoder(inner, 10).OnLookup(func(hit bool) {
		if hit {
			hits++
		} else {
			misses++
		}
	})

	for _, q := range []string{"Redding", "redding", "  REDDING "} {
		loc, err := cached.Geocode(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, redding, loc)
	}

	// Failures are not cached.
	for range 2 {
		_, err := cached.Geocode(context.Background(), "Atlantis")
		assert.ErrorIs(t, err, weather.ErrLocationNotFound)
	}

	assert.Equal(t, 2, hits)
	assert.Equal(t, 3, misses)
}

func TestCachedGeocoder_Evicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := weathermock.NewMockGeocoder(ctrl)
	inner.EXPECT().Geocode(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, q string) (weather.Location, error) {
			return weather.Location{Name: q}, nil
		}).Times(4)

	cached := NewCachedGeocoder(inner, 2)
	for _, q := range []string{"a", "b", "c", "a"} {
		_, err := cached.Geocode(context.Background(), q)
		require.NoError(t, err)
	}
}

func TestGeocoderChain(t *testing.T) {
	ctrl := gomock.NewController(t)
	first := weathermock.NewMockGeocoder(ctrl)
	second := weathermock.NewMockGeocoder(ctrl)

	first.EXPECT().Geocode(gomock.Any(), "Chico").Return(weather.Location{}, errors.New("quota"))
	second.EXPECT().Geocode(gomock.Any(), "Chico").Return(weather.Location{Name: "Chico"}, nil)

	loc, err := GeocoderChain{first, second}.Geocode(context.Background(), "Chico")
	require.NoError(t, err)
	assert.Equal(t, "Chico", loc.Name)
}

func TestGeocoderChain_AllMiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	only := weathermock.NewMockGeocoder(ctrl)
	only.EXPECT().Geocode(gomock.Any(), "x").Return(weather.Location{}, weather.ErrLocationNotFound)

	_, err := GeocoderChain{only}.Geocode(context.Background(), "x")
	assert.ErrorIs(t, err, weather.ErrLocationNotFound)

	_, err = GeocoderChain{}.Geocode(context.Background(), "x")
	assert.ErrorIs(t, err, weather.ErrLocationNotFound)
}
