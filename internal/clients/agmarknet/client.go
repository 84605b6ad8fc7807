// Package agmarknet fetches mandi (wholesale market) commodity prices from
// the data.gov.in Agmarknet feed with persistent caching. Prices refresh once
// per trading day, so the cache TTL is generous.
package agmarknet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/saitejamanchi/rythumitra/internal/clientdata"
)

// Client for the Agmarknet current-price resource.
type Client struct {
	baseURL   string
	apiKey    string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewClient creates an Agmarknet client.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(baseURL, apiKey string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.data.gov.in/resource/9ef84268-d588-465a-a308-a864a43d0070"
	}
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		client:    &http.Client{Timeout: 15 * time.Second},
		log:       log.With().Str("client", "agmarknet").Logger(),
		cacheRepo: cacheRepo,
	}
}

// Price is one commodity quote from a mandi.
type Price struct {
	Commodity  string  `json:"commodity" msgpack:"commodity"`
	Market     string  `json:"market" msgpack:"market"`
	ModalPrice float64 `json:"modal_price" msgpack:"modal_price"` // rupees per quintal
	MinPrice   float64 `json:"min_price" msgpack:"min_price"`
	MaxPrice   float64 `json:"max_price" msgpack:"max_price"`
	ArrivalDay string  `json:"arrival_day" msgpack:"arrival_day"`
}

type priceList struct {
	Prices    []Price `json:"prices" msgpack:"prices"`
	FetchedAt int64   `json:"fetched_at" msgpack:"fetched_at"`
}

type apiResponse struct {
	Records []struct {
		Commodity   string `json:"commodity"`
		Market      string `json:"market"`
		ModalPrice  string `json:"modal_price"`
		MinPrice    string `json:"min_price"`
		MaxPrice    string `json:"max_price"`
		ArrivalDate string `json:"arrival_date"`
	} `json:"records"`
}

// GetPrices fetches current mandi prices for a district with cache.
// If the API fails, returns stale cached data if available.
func (c *Client) GetPrices(ctx context.Context, district string) ([]Price, error) {
	cacheKey := district

	if c.cacheRepo != nil {
		blob, err := c.cacheRepo.GetIfFresh("market_prices", cacheKey)
		if err == nil && blob != nil {
			var cached priceList
			if err := clientdata.Decode(blob, &cached); err == nil {
				c.log.Debug().Str("district", district).Msg("Cache hit")
				return cached.Prices, nil
			}
		}
	}

	query := url.Values{}
	query.Set("api-key", c.apiKey)
	query.Set("format", "json")
	query.Set("limit", "200")
	query.Set("filters[district]", district)

	endpoint := c.baseURL + "?" + query.Encode()
	c.log.Debug().Str("district", district).Msg("Fetching mandi prices")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if stale, ok := c.getStale(cacheKey); ok {
			c.log.Warn().Err(err).Str("district", district).Msg("API failed, using stale cached prices")
			return stale, nil
		}
		return nil, fmt.Errorf("mandi price request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if stale, ok := c.getStale(cacheKey); ok {
			c.log.Warn().Int("status", resp.StatusCode).Str("district", district).Msg("API error, using stale cached prices")
			return stale, nil
		}
		return nil, fmt.Errorf("mandi price API returned status %d", resp.StatusCode)
	}

	var raw apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		if stale, ok := c.getStale(cacheKey); ok {
			c.log.Warn().Err(err).Str("district", district).Msg("Failed to parse prices, using stale cache")
			return stale, nil
		}
		return nil, fmt.Errorf("failed to parse mandi price response: %w", err)
	}

	prices := make([]Price, 0, len(raw.Records))
	for _, rec := range raw.Records {
		prices = append(prices, Price{
			Commodity:  rec.Commodity,
			Market:     rec.Market,
			ModalPrice: parsePrice(rec.ModalPrice),
			MinPrice:   parsePrice(rec.MinPrice),
			MaxPrice:   parsePrice(rec.MaxPrice),
			ArrivalDay: rec.ArrivalDate,
		})
	}

	if c.cacheRepo != nil {
		cached := priceList{Prices: prices, FetchedAt: time.Now().Unix()}
		if err := c.cacheRepo.Store("market_prices", cacheKey, cached, clientdata.TTLMarketPrices); err != nil {
			c.log.Warn().Err(err).Str("district", district).Msg("Failed to cache prices")
		}
	}

	c.log.Info().Str("district", district).Int("quotes", len(prices)).Msg("Fetched mandi prices")
	return prices, nil
}

// parsePrice tolerates the feed's string-typed numbers; bad values become 0.
func parsePrice(s string) float64 {
	var v float64
	fmt.Sscanf(s, "%f", &v)
	return v
}

func (c *Client) getStale(cacheKey string) ([]Price, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}
	blob, err := c.cacheRepo.GetStale("market_prices", cacheKey)
	if err != nil || blob == nil {
		return nil, false
	}
	var cached priceList
	if err := clientdata.Decode(blob, &cached); err != nil {
		return nil, false
	}
	return cached.Prices, true
}
