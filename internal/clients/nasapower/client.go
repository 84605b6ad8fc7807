// Package nasapower fetches climatology data from the NASA POWER API with
// persistent caching. POWER serves reanalysis data, so results are stable and
// cached for days.
package nasapower

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/saitejamanchi/rythumitra/internal/clientdata"
)

// Client for the NASA POWER daily-point API.
type Client struct {
	baseURL   string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewClient creates a NASA POWER client.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(baseURL string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://power.larc.nasa.gov/api/temporal/daily/point"
	}
	return &Client{
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
		log:       log.With().Str("client", "nasa-power").Logger(),
		cacheRepo: cacheRepo,
	}
}

// Climatology is the recent-history summary used to sanity-check forecasts
// and seed long-horizon risk estimates.
type Climatology struct {
	AvgTempC    float64 `json:"avg_temp_c" msgpack:"avg_temp_c"`
	AvgHumidity float64 `json:"avg_humidity" msgpack:"avg_humidity"`
	TotalRainMM float64 `json:"total_rain_mm" msgpack:"total_rain_mm"`
	DaysCovered int     `json:"days_covered" msgpack:"days_covered"`
	FetchedAt   int64   `json:"fetched_at" msgpack:"fetched_at"`
}

type apiResponse struct {
	Properties struct {
		Parameter struct {
			Temp     map[string]float64 `json:"T2M"`
			Humidity map[string]float64 `json:"RH2M"`
			Rain     map[string]float64 `json:"PRECTOTCORR"`
		} `json:"parameter"`
	} `json:"properties"`
}

// GetClimatology fetches the trailing 30-day daily summary for a point.
// If the API fails, returns stale cached data if available.
func (c *Client) GetClimatology(ctx context.Context, lat, lon float64) (*Climatology, error) {
	cacheKey := fmt.Sprintf("%.3f:%.3f", lat, lon)

	if c.cacheRepo != nil {
		blob, err := c.cacheRepo.GetIfFresh("nasa_power", cacheKey)
		if err == nil && blob != nil {
			var cached Climatology
			if err := clientdata.Decode(blob, &cached); err == nil {
				c.log.Debug().Str("key", cacheKey).Msg("Cache hit")
				return &cached, nil
			}
		}
	}

	end := time.Now()
	start := end.AddDate(0, 0, -30)
	url := fmt.Sprintf(
		"%s?parameters=T2M,RH2M,PRECTOTCORR&community=AG&latitude=%.4f&longitude=%.4f&start=%s&end=%s&format=JSON",
		c.baseURL, lat, lon, start.Format("20060102"), end.Format("20060102"),
	)
	c.log.Debug().Str("url", url).Msg("Fetching climatology")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if stale, ok := c.getStale(cacheKey); ok {
			c.log.Warn().Err(err).Str("key", cacheKey).Msg("API failed, using stale cached climatology")
			return stale, nil
		}
		return nil, fmt.Errorf("NASA POWER request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if stale, ok := c.getStale(cacheKey); ok {
			c.log.Warn().Int("status", resp.StatusCode).Str("key", cacheKey).Msg("API error, using stale cached climatology")
			return stale, nil
		}
		return nil, fmt.Errorf("NASA POWER returned status %d", resp.StatusCode)
	}

	var raw apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		if stale, ok := c.getStale(cacheKey); ok {
			c.log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to parse climatology, using stale cache")
			return stale, nil
		}
		return nil, fmt.Errorf("failed to parse NASA POWER response: %w", err)
	}

	clim := summarize(raw)
	if clim.DaysCovered == 0 {
		if stale, ok := c.getStale(cacheKey); ok {
			c.log.Warn().Str("key", cacheKey).Msg("Empty climatology response, using stale cache")
			return stale, nil
		}
		return nil, fmt.Errorf("NASA POWER returned no data points")
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("nasa_power", cacheKey, clim, clientdata.TTLNASAPower); err != nil {
			c.log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache climatology")
		}
	}

	c.log.Info().
		Float64("lat", lat).
		Float64("lon", lon).
		Int("days", clim.DaysCovered).
		Msg("Fetched climatology")

	return clim, nil
}

// summarize collapses the per-day parameter maps into period averages.
// POWER marks missing observations as -999; those days are skipped.
func summarize(raw apiResponse) *Climatology {
	var tempSum, humiditySum, rainSum float64
	days := 0

	for date, temp := range raw.Properties.Parameter.Temp {
		if temp <= -900 {
			continue
		}
		tempSum += temp
		humiditySum += raw.Properties.Parameter.Humidity[date]
		if rain := raw.Properties.Parameter.Rain[date]; rain > 0 {
			rainSum += rain
		}
		days++
	}

	clim := &Climatology{DaysCovered: days, FetchedAt: time.Now().Unix()}
	if days > 0 {
		clim.AvgTempC = tempSum / float64(days)
		clim.AvgHumidity = humiditySum / float64(days)
		clim.TotalRainMM = rainSum
	}
	return clim
}

func (c *Client) getStale(cacheKey string) (*Climatology, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}
	blob, err := c.cacheRepo.GetStale("nasa_power", cacheKey)
	if err != nil || blob == nil {
		return nil, false
	}
	var cached Climatology
	if err := clientdata.Decode(blob, &cached); err != nil {
		return nil, false
	}
	return &cached, true
}
