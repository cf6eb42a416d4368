package providers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/i474232898/wildfire-risk/internal/weather"
)

// VegetationClient reads NDVI/EVI and land-cover fractions from an HTTP
// service that fronts the satellite imagery pipeline. The service answers
// GET {base}?lat=..&lon=.. with a flat JSON object; absent fields mean no
// coverage.
type VegetationClient struct {
	client  *resty.Client
	baseURL string
}

func NewVegetationClient(baseURL string, timeout time.Duration) *VegetationClient {
	return &VegetationClient{
		client:  resty.New().SetTimeout(timeout).SetRetryCount(1),
		baseURL: baseURL,
	}
}

type vegetationPayload struct {
	NDVI             *float64 `json:"ndvi"`
	EVI              *float64 `json:"evi"`
	ForestPercent    *float64 `json:"forest_percent"`
	GrasslandPercent *float64 `json:"grassland_percent"`
}

func (v *VegetationClient) FetchVegetation(ctx context.Context, loc weather.Location) (weather.VegetationReport, error) {
	var out vegetationPayload
	resp, err := v.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat": strconv.FormatFloat(loc.Latitude, 'f', 6, 64),
			"lon": strconv.FormatFloat(loc.Longitude, 'f', 6, 64),
		}).
		SetResult(&out).
		Get(v.baseURL)
	if err != nil {
		return weather.VegetationReport{}, fmt.Errorf("vegetation: %w", err)
	}
	if resp.IsError() {
		return weather.VegetationReport{}, fmt.Errorf("vegetation: status %d", resp.StatusCode())
	}

	var report weather.VegetationReport
	if out.NDVI != nil || out.EVI != nil {
		report.Vegetation = &weather.Vegetation{NDVI: out.NDVI, EVI: out.EVI}
	}
	if out.ForestPercent != nil || out.GrasslandPercent != nil {
		report.LandCover = &weather.LandCover{ForestPercent: out.ForestPercent, GrasslandPercent: out.GrasslandPercent}
	}
	return report, nil
}
