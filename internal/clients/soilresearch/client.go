// Package soilresearch queries an external soil research service for regions
// missing from the seeded zone table. Results are cached for 30 days; the
// soil module degrades to a regional default when research fails.
package soilresearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/saitejamanchi/rythumitra/internal/clientdata"
)

// Client for the soil research service.
type Client struct {
	baseURL   string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewClient creates a soil research client. An empty baseURL disables the
// client entirely (Research always errors, callers degrade).
func NewClient(baseURL string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 20 * time.Second},
		log:       log.With().Str("client", "soil-research").Logger(),
		cacheRepo: cacheRepo,
	}
}

// Result is a researched soil record for a region.
type Result struct {
	SoilType string  `json:"soil_type" msgpack:"soil_type"`
	PH       float64 `json:"ph" msgpack:"ph"`
	N        float64 `json:"n" msgpack:"n"`
	P        float64 `json:"p" msgpack:"p"`
	K        float64 `json:"k" msgpack:"k"`
}

// Research looks up soil characteristics for an unknown district/mandal.
// If the API fails, returns stale cached data if available.
func (c *Client) Research(ctx context.Context, district, mandal string) (*Result, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("soil research service not configured")
	}

	cacheKey := strings.ToLower(district + ":" + mandal)

	if c.cacheRepo != nil {
		blob, err := c.cacheRepo.GetIfFresh("soil_research", cacheKey)
		if err == nil && blob != nil {
			var cached Result
			if err := clientdata.Decode(blob, &cached); err == nil {
				c.log.Debug().Str("key", cacheKey).Msg("Cache hit")
				return &cached, nil
			}
		}
	}

	query := url.Values{}
	query.Set("district", district)
	if mandal != "" {
		query.Set("mandal", mandal)
	}
	endpoint := c.baseURL + "?" + query.Encode()
	c.log.Debug().Str("district", district).Str("mandal", mandal).Msg("Researching soil")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if stale, ok := c.getStale(cacheKey); ok {
			c.log.Warn().Err(err).Str("key", cacheKey).Msg("Research failed, using stale cached result")
			return stale, nil
		}
		return nil, fmt.Errorf("soil research request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if stale, ok := c.getStale(cacheKey); ok {
			c.log.Warn().Int("status", resp.StatusCode).Str("key", cacheKey).Msg("Research error, using stale cached result")
			return stale, nil
		}
		return nil, fmt.Errorf("soil research returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse soil research response: %w", err)
	}
	if result.SoilType == "" {
		return nil, fmt.Errorf("soil research returned no soil type for %s", district)
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("soil_research", cacheKey, result, clientdata.TTLSoilResearch); err != nil {
			c.log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache research result")
		}
	}

	c.log.Info().Str("district", district).Str("soil_type", result.SoilType).Msg("Soil researched")
	return &result, nil
}

func (c *Client) getStale(cacheKey string) (*Result, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}
	blob, err := c.cacheRepo.GetStale("soil_research", cacheKey)
	if err != nil || blob == nil {
		return nil, false
	}
	var cached Result
	if err := clientdata.Decode(blob, &cached); err != nil {
		return nil, false
	}
	return &cached, true
}
