package providers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/i474232898/wildfire-risk/internal/weather"
)

// OpenMeteoGeocoder uses the keyless Open-Meteo geocoding search.
type OpenMeteoGeocoder struct {
	client  *resty.Client
	baseURL string
}

func NewOpenMeteoGeocoder(timeout time.Duration) *OpenMeteoGeocoder {
	return &OpenMeteoGeocoder{
		client:  resty.New().SetTimeout(timeout).SetRetryCount(2),
		baseURL: "https://geocoding-api.open-meteo.com/v1/search",
	}
}

type openMeteoSearch struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Country   string  `json:"country"`
		Admin1    string  `json:"admin1"`
	} `json:"results"`
}

// Geocode searches on the first comma-separated token ("Fresno, CA" searches
// "Fresno") and returns the best match.
func (g *OpenMeteoGeocoder) Geocode(ctx context.Context, query string) (weather.Location, error) {
	name := strings.TrimSpace(strings.SplitN(query, ",", 2)[0])
	if name == "" {
		return weather.Location{}, fmt.Errorf("%q: %w", query, weather.ErrLocationNotFound)
	}

	var out openMeteoSearch
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"name":     name,
			"count":    strconv.Itoa(1),
			"language": "en",
			"format":   "json",
		}).
		SetResult(&out).
		Get(g.baseURL)
	if err != nil {
		return weather.Location{}, fmt.Errorf("open-meteo geocoding: %w", err)
	}
	if resp.IsError() {
		return weather.Location{}, fmt.Errorf("open-meteo geocoding: status %d", resp.StatusCode())
	}
	if len(out.Results) == 0 {
		return weather.Location{}, fmt.Errorf("%q: %w", query, weather.ErrLocationNotFound)
	}

	r := out.Results[0]
	return weather.Location{
		Name:      strings.TrimSpace(query),
		Country:   r.Country,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}, nil
}
