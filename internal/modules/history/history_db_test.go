package history

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/saitejamanchi/rythumitra/internal/domain"
	_ "github.com/mattn/go-sqlite3"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := sql.Open("sqlite3", "file:history_test?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h, err := NewDB(db, zerolog.Nop())
	require.NoError(t, err)
	return h
}

func TestPriceSeries_ChronologicalOrder(t *testing.T) {
	h := newTestDB(t)

	base := time.Now().AddDate(0, 0, -3)
	for i, price := range []float64{7000, 7100, 7250} {
		require.NoError(t, h.RecordPrice("Cotton", base.AddDate(0, 0, i), price, 0, 0))
	}

	series, err := h.GetPriceSeries("Cotton", 10)
	require.NoError(t, err)
	assert.Equal(t, []float64{7000, 7100, 7250}, series)

	// Limit keeps the newest points
	series, err = h.GetPriceSeries("Cotton", 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{7100, 7250}, series)
}

func TestRecordPrice_UpsertsSameDay(t *testing.T) {
	h := newTestDB(t)
	day := time.Now()

	require.NoError(t, h.RecordPrice("Turmeric", day, 9000, 0, 0))
	require.NoError(t, h.RecordPrice("Turmeric", day, 9100, 0, 0))

	series, err := h.GetPriceSeries("Turmeric", 10)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, 9100.0, series[0])
}

func TestWeatherDays_NewestFirst(t *testing.T) {
	h := newTestDB(t)

	base := time.Now().AddDate(0, 0, -2)
	for i, temp := range []float64{30, 32} {
		snap := domain.WeatherSnapshot{TempC: temp, Humidity: 60}
		require.NoError(t, h.RecordWeatherDay("Guntur", base.AddDate(0, 0, i), snap))
	}

	days, err := h.GetWeatherDays("Guntur", 10)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, 32.0, days[0].TempC)
}

func TestCleanup_RemovesOldRows(t *testing.T) {
	h := newTestDB(t)

	require.NoError(t, h.RecordPrice("Cotton", time.Now().AddDate(0, 0, -400), 6500, 0, 0))
	require.NoError(t, h.RecordPrice("Cotton", time.Now(), 7200, 0, 0))

	removed, err := h.Cleanup(365)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	series, err := h.GetPriceSeries("Cotton", 10)
	require.NoError(t, err)
	assert.Equal(t, []float64{7200}, series)
}
