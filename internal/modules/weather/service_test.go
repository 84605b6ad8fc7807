package weather

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/saitejamanchi/rythumitra/internal/clients/openmeteo"
	"github.com/saitejamanchi/rythumitra/internal/domain"
)

type stubForecasts struct {
	forecast *openmeteo.Forecast
	err      error
}

func (s *stubForecasts) GetForecast(ctx context.Context, lat, lon float64) (*openmeteo.Forecast, error) {
	return s.forecast, s.err
}

func monsoonWeek() *openmeteo.Forecast {
	return &openmeteo.Forecast{
		CurrentTempC:    29,
		CurrentHumidity: 78,
		DailyMaxC:       []float64{32, 31, 30, 33, 32, 31, 30},
		DailyMinC:       []float64{24, 24, 23, 25, 24, 23, 23},
		DailyRainMM:     []float64{12, 0.4, 8, 0, 22, 5, 0},
	}
}

func TestBuildSnapshot(t *testing.T) {
	snap := BuildSnapshot(monsoonWeek())

	// 0.4mm drizzle is not a rainy day
	assert.Equal(t, 4, snap.RainDays)
	assert.InDelta(t, 47.4, snap.TotalRainfallMM, 0.001)
	assert.InDelta(t, 27.5, snap.AvgTemp, 0.01)
	assert.Equal(t, 29.0, snap.TempC)
	assert.Equal(t, 168, snap.ForecastHours)
	assert.Equal(t, domain.LevelLow, snap.Risk)
}

func TestClassifyRisk(t *testing.T) {
	cases := []struct {
		name     string
		avgTemp  float64
		rainMM   float64
		rainDays int
		want     domain.Level
	}{
		{"mild week", 28, 60, 4, domain.LevelLow},
		{"extreme heat", 42, 20, 1, domain.LevelHigh},
		{"flooding", 29, 180, 5, domain.LevelHigh},
		{"persistent heavy rain", 28, 120, 6, domain.LevelHigh},
		{"hot spell", 37, 40, 2, domain.LevelMedium},
		{"dry week", 30, 2, 0, domain.LevelMedium},
		{"cold snap", 10, 20, 2, domain.LevelMedium},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyRisk(tc.avgTemp, tc.rainMM, tc.rainDays))
		})
	}
}

func TestGetSnapshot_PropagatesClientError(t *testing.T) {
	svc := NewService(&stubForecasts{err: fmt.Errorf("upstream down")}, nil, zerolog.Nop())

	_, err := svc.GetSnapshot(context.Background(), 16.3, 80.44)
	assert.Error(t, err)
}

func TestGetSnapshot_DerivesFromForecast(t *testing.T) {
	svc := NewService(&stubForecasts{forecast: monsoonWeek()}, nil, zerolog.Nop())

	snap, err := svc.GetSnapshot(context.Background(), 16.3, 80.44)
	require.NoError(t, err)
	assert.Equal(t, 4, snap.RainDays)
	assert.Equal(t, 78.0, snap.Humidity)
}
