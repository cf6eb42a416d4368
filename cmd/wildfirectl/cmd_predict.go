package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/i474232898/wildfire-risk/internal/risk"
)

type predictOptions struct {
	temperature, humidity, drought float64
	aqi, pm25, pm10, co2           float64
	lat, lon                       float64
	ndvi, evi, forest, grassland   float64
	month                          int
	seed                           int64
	trees                          int
	paramsFile                     string
}

type predictOutput struct {
	Probability       float64            `json:"probability"`
	Features          risk.FeatureRecord `json:"features"`
	FeatureImportance map[string]float64 `json:"feature_importance"`
}

func newPredictCommand() *cobra.Command {
	var opts predictOptions

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score explicit conditions offline",
		Long: `Score a set of conditions with the tree ensemble without calling any
external service. Unset signals fall back to the same defaults the server uses.`,
		Example: `  wildfirectl predict --temperature 42 --humidity 12 --lat 36.5 --lon -117 --month 8`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := risk.LoadParams(opts.paramsFile)
			if err != nil {
				return err
			}
			if opts.seed != 0 {
				params.Seed = opts.seed
			}
			if opts.trees > 0 {
				params.NumTrees = opts.trees
			}
			forest, err := risk.NewForest(params)
			if err != nil {
				return fmt.Errorf("build forest: %w", err)
			}

			now := time.Now()
			rec := risk.PrepareInputData(opts.inputs(cmd.Flags()), now)
			month := time.Month(rec.Month)

			return writeJSON(cmd.OutOrStdout(), predictOutput{
				Probability:       forest.Predict(rec),
				Features:          rec,
				FeatureImportance: risk.Explain(time.Date(now.Year(), month, 15, 0, 0, 0, 0, time.UTC)),
			})
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.temperature, "temperature", 0, "Air temperature in °C")
	f.Float64Var(&opts.humidity, "humidity", 0, "Relative humidity in %")
	f.Float64Var(&opts.drought, "drought", 0, "Drought index 0-100 (estimated when unset)")
	f.Float64Var(&opts.aqi, "aqi", 0, "Air quality index 1-5")
	f.Float64Var(&opts.pm25, "pm25", 0, "PM2.5 in μg/m³")
	f.Float64Var(&opts.pm10, "pm10", 0, "PM10 in μg/m³")
	f.Float64Var(&opts.co2, "co2", 0, "CO2 level")
	f.Float64Var(&opts.lat, "lat", 0, "Latitude")
	f.Float64Var(&opts.lon, "lon", 0, "Longitude")
	f.Float64Var(&opts.ndvi, "ndvi", 0, "NDVI -1..1")
	f.Float64Var(&opts.evi, "evi", 0, "EVI -1..1")
	f.Float64Var(&opts.forest, "forest", 0, "Forest cover %")
	f.Float64Var(&opts.grassland, "grassland", 0, "Grassland cover %")
	f.IntVar(&opts.month, "month", 0, "Month 1-12 (current month when unset)")
	f.Int64Var(&opts.seed, "seed", 0, "Ensemble seed (0 = random jitter)")
	f.IntVar(&opts.trees, "trees", 0, "Number of trees (params default when unset)")
	f.StringVar(&opts.paramsFile, "params", "", "YAML model params file")

	return cmd
}

// inputs maps flags to preparer inputs; only flags the user set count as
// present.
func (o predictOptions) inputs(flags *pflag.FlagSet) risk.Inputs {
	opt := func(name string, v float64) *float64 {
		if !flags.Changed(name) {
			return nil
		}
		return risk.Float(v)
	}

	in := risk.Inputs{
		Weather: risk.WeatherInput{
			Temperature: opt("temperature", o.temperature),
			Humidity:    opt("humidity", o.humidity),
		},
		AirQuality: risk.AirQualityInput{
			AQI:  opt("aqi", o.aqi),
			PM25: opt("pm25", o.pm25),
			PM10: opt("pm10", o.pm10),
		},
		DroughtIndex: opt("drought", o.drought),
		CO2Level:     o.co2,
		Latitude:     o.lat,
		Longitude:    o.lon,
		Month:        o.month,
	}
	if flags.Changed("ndvi") || flags.Changed("evi") {
		in.Vegetation = &risk.VegetationInput{NDVI: opt("ndvi", o.ndvi), EVI: opt("evi", o.evi)}
	}
	if flags.Changed("forest") || flags.Changed("grassland") {
		in.LandCover = &risk.LandCoverInput{
			ForestPercent:    opt("forest", o.forest),
			GrasslandPercent: opt("grassland", o.grassland),
		}
	}
	return in
}
