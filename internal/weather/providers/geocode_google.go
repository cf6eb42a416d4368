package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/wildfire-risk/internal/common"
	"github.com/i474232898/wildfire-risk/internal/weather"
)

// The geocoder package keeps its key in a package variable.
var googleKeyMu sync.Mutex

// GoogleGeocoder resolves place names through the Google Geocoding API.
type GoogleGeocoder struct {
	apiKey string
	lookup func(geocoder.Address) (geocoder.Location, error)
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{apiKey: apiKey, lookup: geocoder.Geocoding}
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, query string) (weather.Location, error) {
	if g.apiKey == "" {
		return weather.Location{}, fmt.Errorf("google geocoder: %w", errMissingAPIKey)
	}
	query = strings.TrimSpace(query)

	type result struct {
		loc geocoder.Location
		err error
	}
	done := make(chan result, 1)
	go func() {
		googleKeyMu.Lock()
		defer googleKeyMu.Unlock()

		geocoder.ApiKey = g.apiKey
		loc, err := g.lookup(geocoder.Address{City: query})
		done <- result{loc, err}
	}()

	select {
	case <-ctx.Done():
		return weather.Location{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			if common.HasAny(r.err.Error(), "ZERO_RESULTS", "no results") {
				return weather.Location{}, fmt.Errorf("%q: %w", query, weather.ErrLocationNotFound)
			}
			return weather.Location{}, fmt.Errorf("google geocoder: %w", r.err)
		}
		if r.loc.Latitude == 0 && r.loc.Longitude == 0 {
			return weather.Location{}, fmt.Errorf("%q: %w", query, weather.ErrLocationNotFound)
		}
		return weather.Location{Name: query, Latitude: r.loc.Latitude, Longitude: r.loc.Longitude}, nil
	}
}
