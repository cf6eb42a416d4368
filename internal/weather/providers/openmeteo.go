package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/wildfire-risk/internal/weather"
)

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// It needs no API key.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuitBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", loc.Latitude))
	values.Set("longitude", fmt.Sprintf("%f", loc.Longitude))
	values.Set("current", "temperature_2m,relative_humidity_2m,precipitation,weather_code,wind_speed_10m,surface_pressure")
	values.Set("wind_speed_unit", "ms")
	values.Set("timezone", "GMT")

	var payload struct {
		Current struct {
			Time        string   `json:"time"`
			Temperature float64  `json:"temperature_2m"`
			Humidity    *float64 `json:"relative_humidity_2m"`
			Precip      float64  `json:"precipitation"`
			WeatherCode int      `json:"weather_code"`
			WindSpeed   float64  `json:"wind_speed_10m"`
			Pressure    float64  `json:"surface_pressure"`
		} `json:"current"`
	}
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	ts, err := time.Parse("2006-01-02T15:04", payload.Current.Time)
	if err != nil {
		ts = time.Now()
	}

	r := weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts.UTC(),
		TemperatureC: payload.Current.Temperature,
		WindSpeedMS:  payload.Current.WindSpeed,
		PressureHpa:  payload.Current.Pressure,
		PrecipMm:     payload.Current.Precip,
		Condition:    mapOpenMeteoCondition(payload.Current.WeatherCode),
	}
	if payload.Current.Humidity != nil {
		r.HumidityPct = *payload.Current.Humidity
		r.HasHumidity = true
	}
	return r, nil
}

// mapOpenMeteoCondition maps WMO weather codes.
func mapOpenMeteoCondition(code int) weather.Condition {
	switch {
	case code == 0:
		return weather.ConditionClear
	case code >= 1 && code <= 3:
		return weather.ConditionCloudy
	case code == 45 || code == 48:
		return weather.ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow
	case code >= 95:
		return weather.ConditionStorm
	default:
		return weather.ConditionUnknown
	}
}
