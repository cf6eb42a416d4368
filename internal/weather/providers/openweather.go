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

// OpenWeatherProvider serves current weather and air pollution from OpenWeatherMap.
// It implements weather.Provider and weather.AirQualityProvider.
type OpenWeatherProvider struct {
	name       string
	apiKey     string
	baseURL    string
	httpCfg    HTTPClientConfig
	circuit    *gobreaker.CircuitBreaker
	// airCircuit trips independently so an air-pollution outage does not
	// take weather readings down with it.
	airCircuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:       "openweathermap",
		apiKey:     apiKey,
		baseURL:    "https://api.openweathermap.org/data/2.5",
		httpCfg:    defaultHTTPConfig(client),
		circuit:    newCircuitBreaker("openweather"),
		airCircuit: newCircuitBreaker("openweather-air"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) query(loc weather.Location) url.Values {
	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("lat", fmt.Sprintf("%f", loc.Latitude))
	values.Set("lon", fmt.Sprintf("%f", loc.Longitude))
	return values
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	if p.apiKey == "" {
		return weather.ProviderReading{}, fmt.Errorf("openweather: %w", errMissingAPIKey)
	}

	values := p.query(loc)
	values.Set("units", "metric")

	var payload struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
			Pressure float64 `json:"pressure"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Rain struct {
			OneH   float64 `json:"1h"`
			ThreeH float64 `json:"3h"`
		} `json:"rain"`
		Weather []struct {
			Main string `json:"main"`
		} `json:"weather"`
	}
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.baseURL+"/weather?"+values.Encode(), &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	ts := time.Now().UTC()
	if payload.Dt > 0 {
		ts = time.Unix(payload.Dt, 0).UTC()
	}

	precip := payload.Rain.OneH
	if precip == 0 {
		precip = payload.Rain.ThreeH
	}

	var main string
	if len(payload.Weather) > 0 {
		main = payload.Weather[0].Main
	}

	return weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts,
		TemperatureC: payload.Main.Temp,
		HumidityPct:  payload.Main.Humidity,
		HasHumidity:  true,
		WindSpeedMS:  payload.Wind.Speed,
		PressureHpa:  payload.Main.Pressure,
		PrecipMm:     precip,
		Condition:    mapOpenWeatherCondition(main),
	}, nil
}

// FetchAirQuality reads the air_pollution endpoint. Its AQI is already on
// the 1-5 scale.
func (p *OpenWeatherProvider) FetchAirQuality(ctx context.Context, loc weather.Location) (weather.AirQuality, error) {
	if p.apiKey == "" {
		return weather.AirQuality{}, fmt.Errorf("openweather: %w", errMissingAPIKey)
	}

	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				AQI float64 `json:"aqi"`
			} `json:"main"`
			Components struct {
				CO   float64 `json:"co"`
				PM25 float64 `json:"pm2_5"`
				PM10 float64 `json:"pm10"`
			} `json:"components"`
		} `json:"list"`
	}
	if err := getJSON(ctx, p.httpCfg, p.airCircuit, p.baseURL+"/air_pollution?"+p.query(loc).Encode(), &payload); err != nil {
		return weather.AirQuality{}, err
	}
	if len(payload.List) == 0 {
		return weather.AirQuality{}, fmt.Errorf("openweather: empty air pollution response")
	}

	item := payload.List[0]
	return weather.AirQuality{
		AQI:       item.Main.AQI,
		PM25:      item.Components.PM25,
		PM10:      item.Components.PM10,
		CO:        item.Components.CO,
		Timestamp: time.Unix(item.Dt, 0).UTC(),
	}, nil
}

func mapOpenWeatherCondition(main string) weather.Condition {
	switch main {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionCloudy
	case "Rain", "Drizzle":
		return weather.ConditionRain
	case "Snow":
		return weather.ConditionSnow
	case "Thunderstorm":
		return weather.ConditionStorm
	case "Mist", "Fog", "Haze", "Smoke":
		return weather.ConditionMist
	default:
		return weather.ConditionUnknown
	}
}
