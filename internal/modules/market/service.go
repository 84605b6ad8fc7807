// Package market serves mandi price data: live quotes from the Agmarknet
// feed, a rolling daily price history, and simple trend annotations consumed
// by the decision simulator's market risk factors.
package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/markcheno/go-talib"
	"github.com/rs/zerolog"

	"github.com/saitejamanchi/rythumitra/internal/clients/agmarknet"
	"github.com/saitejamanchi/rythumitra/internal/modules/history"
)

// smaPeriod is the moving-average window for trend detection; trendBand is
// the dead zone around the average treated as flat.
const (
	smaPeriod = 10
	trendBand = 0.03
)

// commodityAliases maps catalog crop names to Agmarknet commodity names.
var commodityAliases = map[string]string{
	"Rice":        "Paddy(Dhan)(Common)",
	"Ground Nuts": "Groundnut",
	"Chilli":      "Dry Chillies",
	"Bengal Gram": "Bengal Gram(Gram)(Whole)",
	"Pulses":      "Green Gram (Moong)(Whole)",
	"Jowar":       "Jowar(Sorghum)",
}

// PriceProvider is implemented by the Agmarknet client.
type PriceProvider interface {
	GetPrices(ctx context.Context, district string) ([]agmarknet.Price, error)
}

// Service serves mandi prices and trend annotations.
type Service struct {
	client  PriceProvider
	history *history.DB
	log     zerolog.Logger
}

// NewService creates the market service. history may be nil; trend
// annotations are then unavailable.
func NewService(client PriceProvider, historyDB *history.DB, log zerolog.Logger) *Service {
	return &Service{
		client:  client,
		history: historyDB,
		log:     log.With().Str("service", "market").Logger(),
	}
}

// Commodity resolves a catalog crop name to its mandi commodity name.
func Commodity(crop string) string {
	if alias, ok := commodityAliases[crop]; ok {
		return alias
	}
	return crop
}

// GetPrices fetches current mandi quotes for a district.
func (s *Service) GetPrices(ctx context.Context, district string) ([]agmarknet.Price, error) {
	return s.client.GetPrices(ctx, district)
}

// SyncPrices fetches current quotes and records them into the daily history.
// Run by the scheduler once per trading day.
func (s *Service) SyncPrices(ctx context.Context, district string) (int, error) {
	prices, err := s.client.GetPrices(ctx, district)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch prices for sync: %w", err)
	}
	if s.history == nil {
		return 0, fmt.Errorf("history database not configured")
	}

	today := time.Now()
	recorded := 0
	for _, p := range prices {
		if p.ModalPrice <= 0 {
			continue
		}
		if err := s.history.RecordPrice(p.Commodity, today, p.ModalPrice, p.MinPrice, p.MaxPrice); err != nil {
			s.log.Warn().Err(err).Str("commodity", p.Commodity).Msg("Failed to record price")
			continue
		}
		recorded++
	}

	s.log.Info().Str("district", district).Int("recorded", recorded).Msg("Price sync complete")
	return recorded, nil
}

// TrendAnnotations compares the latest price against its moving average for
// each crop and returns human-readable notes. Crops without enough history
// are omitted; this is enrichment, never an error.
func (s *Service) TrendAnnotations(crops []string) map[string]string {
	if s.history == nil {
		return nil
	}

	notes := make(map[string]string)
	for _, crop := range crops {
		note, ok := s.trendFor(crop)
		if ok {
			notes[crop] = note
		}
	}
	return notes
}

func (s *Service) trendFor(crop string) (string, bool) {
	series, err := s.history.GetPriceSeries(Commodity(crop), smaPeriod*3)
	if err != nil {
		s.log.Warn().Err(err).Str("crop", crop).Msg("Failed to load price series")
		return "", false
	}
	if len(series) <= smaPeriod {
		return "", false
	}

	sma := talib.Sma(series, smaPeriod)
	latest := series[len(series)-1]
	avg := sma[len(sma)-1]
	if avg <= 0 {
		return "", false
	}

	ratio := latest / avg
	switch {
	case ratio > 1+trendBand:
		return fmt.Sprintf("Mandi prices for %s are trending up (%.0f%% above the %d-day average)",
			strings.ToLower(crop), (ratio-1)*100, smaPeriod), true
	case ratio < 1-trendBand:
		return fmt.Sprintf("Mandi prices for %s are trending down (%.0f%% below the %d-day average)",
			strings.ToLower(crop), (1-ratio)*100, smaPeriod), true
	default:
		return "", false
	}
}
