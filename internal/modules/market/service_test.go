package market

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/saitejamanchi/rythumitra/internal/clients/agmarknet"
	"github.com/saitejamanchi/rythumitra/internal/modules/history"
	_ "github.com/mattn/go-sqlite3"
)

func newHistoryDB(t *testing.T) *history.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", "file:market_test?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h, err := history.NewDB(db, zerolog.Nop())
	require.NoError(t, err)
	return h
}

type stubPrices struct {
	prices []agmarknet.Price
	err    error
}

func (s *stubPrices) GetPrices(ctx context.Context, district string) ([]agmarknet.Price, error) {
	return s.prices, s.err
}

func seedSeries(t *testing.T, h *history.DB, commodity string, prices []float64) {
	t.Helper()
	day := time.Now().AddDate(0, 0, -len(prices))
	for _, p := range prices {
		require.NoError(t, h.RecordPrice(commodity, day, p, p*0.9, p*1.1))
		day = day.AddDate(0, 0, 1)
	}
}

func TestCommodityAliases(t *testing.T) {
	assert.Equal(t, "Paddy(Dhan)(Common)", Commodity("Rice"))
	assert.Equal(t, "Cotton", Commodity("Cotton"))
}

func TestSyncPrices_RecordsHistory(t *testing.T) {
	h := newHistoryDB(t)
	svc := NewService(&stubPrices{prices: []agmarknet.Price{
		{Commodity: "Cotton", Market: "Guntur", ModalPrice: 7200, MinPrice: 7000, MaxPrice: 7400},
		{Commodity: "Turmeric", Market: "Duggirala", ModalPrice: 0}, // skipped
	}}, h, zerolog.Nop())

	recorded, err := svc.SyncPrices(context.Background(), "Guntur")
	require.NoError(t, err)
	assert.Equal(t, 1, recorded)

	series, err := h.GetPriceSeries("Cotton", 10)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, 7200.0, series[0])
}

func TestTrendAnnotations_Rising(t *testing.T) {
	h := newHistoryDB(t)
	svc := NewService(&stubPrices{}, h, zerolog.Nop())

	// Steady climb: last price well above its 10-day average
	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 6000 + float64(i)*120
	}
	seedSeries(t, h, "Cotton", prices)

	notes := svc.TrendAnnotations([]string{"Cotton"})
	require.Contains(t, notes, "Cotton")
	assert.Contains(t, notes["Cotton"], "trending up")
}

func TestTrendAnnotations_FlatSeriesOmitted(t *testing.T) {
	h := newHistoryDB(t)
	svc := NewService(&stubPrices{}, h, zerolog.Nop())

	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 7000
	}
	seedSeries(t, h, "Cotton", prices)

	notes := svc.TrendAnnotations([]string{"Cotton"})
	assert.NotContains(t, notes, "Cotton")
}

func TestTrendAnnotations_InsufficientHistoryOmitted(t *testing.T) {
	h := newHistoryDB(t)
	svc := NewService(&stubPrices{}, h, zerolog.Nop())

	seedSeries(t, h, "Cotton", []float64{7000, 7100, 7050})

	notes := svc.TrendAnnotations([]string{"Cotton", "Rice"})
	assert.Empty(t, notes)
}
