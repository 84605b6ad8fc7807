// Package weather derives the per-request weather snapshot from forecast
// data and classifies short-term weather risk.
package weather

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/saitejamanchi/rythumitra/internal/clients/nasapower"
	"github.com/saitejamanchi/rythumitra/internal/clients/openmeteo"
	"github.com/saitejamanchi/rythumitra/internal/domain"
)

// A day counts as rainy above this precipitation sum. Filters out trace
// drizzle that does not water a field.
const rainyDayThresholdMM = 1.0

// ForecastProvider is implemented by the Open-Meteo client.
type ForecastProvider interface {
	GetForecast(ctx context.Context, lat, lon float64) (*openmeteo.Forecast, error)
}

// ClimatologyProvider is implemented by the NASA POWER client.
type ClimatologyProvider interface {
	GetClimatology(ctx context.Context, lat, lon float64) (*nasapower.Climatology, error)
}

// Service builds weather snapshots. Safe for concurrent use.
type Service struct {
	forecasts   ForecastProvider
	climatology ClimatologyProvider
	log         zerolog.Logger
}

// NewService creates the weather provider. climatology may be nil; history
// enrichment is then unavailable.
func NewService(forecasts ForecastProvider, climatology ClimatologyProvider, log zerolog.Logger) *Service {
	return &Service{
		forecasts:   forecasts,
		climatology: climatology,
		log:         log.With().Str("service", "weather").Logger(),
	}
}

// GetSnapshot fetches the forecast and derives the snapshot consumed by
// scoring and risk analysis.
func (s *Service) GetSnapshot(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error) {
	forecast, err := s.forecasts.GetForecast(ctx, lat, lon)
	if err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("failed to fetch forecast: %w", err)
	}
	return BuildSnapshot(forecast), nil
}

// GetClimatology returns the trailing climate summary for enrichment.
func (s *Service) GetClimatology(ctx context.Context, lat, lon float64) (*nasapower.Climatology, error) {
	if s.climatology == nil {
		return nil, fmt.Errorf("climatology provider not configured")
	}
	return s.climatology.GetClimatology(ctx, lat, lon)
}

// BuildSnapshot derives the request snapshot from a raw forecast.
func BuildSnapshot(f *openmeteo.Forecast) domain.WeatherSnapshot {
	rainDays := 0
	totalRain := 0.0
	for _, mm := range f.DailyRainMM {
		totalRain += mm
		if mm >= rainyDayThresholdMM {
			rainDays++
		}
	}

	avgTemp := f.CurrentTempC
	if len(f.DailyMaxC) > 0 && len(f.DailyMinC) == len(f.DailyMaxC) {
		sum := 0.0
		for i := range f.DailyMaxC {
			sum += (f.DailyMaxC[i] + f.DailyMinC[i]) / 2
		}
		avgTemp = sum / float64(len(f.DailyMaxC))
	}

	return domain.WeatherSnapshot{
		TempC:           f.CurrentTempC,
		Humidity:        f.CurrentHumidity,
		RainDays:        rainDays,
		AvgTemp:         avgTemp,
		TotalRainfallMM: totalRain,
		Risk:            ClassifyRisk(avgTemp, totalRain, rainDays),
		ForecastHours:   f.HorizonHours(),
	}
}

// ClassifyRisk grades the coming week. Extreme heat, flooding rain or a
// bone-dry week are High; elevated heat or a wet/dry lean are Medium.
func ClassifyRisk(avgTemp, totalRainMM float64, rainDays int) domain.Level {
	switch {
	case avgTemp > 40, totalRainMM > 150, rainDays >= 6 && totalRainMM > 100:
		return domain.LevelHigh
	case avgTemp > 36, totalRainMM > 100, totalRainMM < 5, avgTemp < 12:
		return domain.LevelMedium
	default:
		return domain.LevelLow
	}
}
