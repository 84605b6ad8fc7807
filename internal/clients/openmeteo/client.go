// Package openmeteo fetches current weather and 7-day forecasts from the
// Open-Meteo API with persistent caching.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/saitejamanchi/rythumitra/internal/clientdata"
)

const forecastDays = 7

// Client for the Open-Meteo forecast API.
type Client struct {
	baseURL   string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewClient creates an Open-Meteo client.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(baseURL string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.open-meteo.com/v1/forecast"
	}
	return &Client{
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		log:       log.With().Str("client", "open-meteo").Logger(),
		cacheRepo: cacheRepo,
	}
}

// Forecast is the normalized weather payload consumed by the weather module.
type Forecast struct {
	CurrentTempC    float64   `json:"current_temp_c" msgpack:"current_temp_c"`
	CurrentHumidity float64   `json:"current_humidity" msgpack:"current_humidity"`
	DailyMaxC       []float64 `json:"daily_max_c" msgpack:"daily_max_c"`
	DailyMinC       []float64 `json:"daily_min_c" msgpack:"daily_min_c"`
	DailyRainMM     []float64 `json:"daily_rain_mm" msgpack:"daily_rain_mm"`
	FetchedAt       int64     `json:"fetched_at" msgpack:"fetched_at"`
}

// HorizonHours is the forecast horizon backing this payload.
func (f Forecast) HorizonHours() int {
	return len(f.DailyMaxC) * 24
}

// apiResponse mirrors the Open-Meteo JSON shape.
type apiResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		Humidity    float64 `json:"relative_humidity_2m"`
	} `json:"current"`
	Daily struct {
		TempMax       []float64 `json:"temperature_2m_max"`
		TempMin       []float64 `json:"temperature_2m_min"`
		Precipitation []float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

// GetForecast fetches the current conditions plus 7-day forecast with cache.
// If the API fails, returns stale cached data if available.
func (c *Client) GetForecast(ctx context.Context, lat, lon float64) (*Forecast, error) {
	cacheKey := fmt.Sprintf("%.3f:%.3f", lat, lon)

	if c.cacheRepo != nil {
		blob, err := c.cacheRepo.GetIfFresh("weather_forecast", cacheKey)
		if err == nil && blob != nil {
			var cached Forecast
			if err := clientdata.Decode(blob, &cached); err == nil {
				c.log.Debug().Str("key", cacheKey).Msg("Cache hit")
				return &cached, nil
			}
		}
	}

	url := fmt.Sprintf(
		"%s?latitude=%.4f&longitude=%.4f&current=temperature_2m,relative_humidity_2m&daily=temperature_2m_max,temperature_2m_min,precipitation_sum&forecast_days=%d&timezone=auto",
		c.baseURL, lat, lon, forecastDays,
	)
	c.log.Debug().Str("url", url).Msg("Fetching forecast")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if stale, ok := c.getStale(cacheKey); ok {
			c.log.Warn().Err(err).Str("key", cacheKey).Msg("API failed, using stale cached forecast")
			return stale, nil
		}
		return nil, fmt.Errorf("weather API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if stale, ok := c.getStale(cacheKey); ok {
			c.log.Warn().Int("status", resp.StatusCode).Str("key", cacheKey).Msg("API error, using stale cached forecast")
			return stale, nil
		}
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var raw apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		if stale, ok := c.getStale(cacheKey); ok {
			c.log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to parse forecast, using stale cache")
			return stale, nil
		}
		return nil, fmt.Errorf("failed to parse weather response: %w", err)
	}

	forecast := &Forecast{
		CurrentTempC:    raw.Current.Temperature,
		CurrentHumidity: raw.Current.Humidity,
		DailyMaxC:       raw.Daily.TempMax,
		DailyMinC:       raw.Daily.TempMin,
		DailyRainMM:     raw.Daily.Precipitation,
		FetchedAt:       time.Now().Unix(),
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("weather_forecast", cacheKey, forecast, clientdata.TTLWeatherForecast); err != nil {
			c.log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache forecast")
		}
	}

	c.log.Info().
		Float64("lat", lat).
		Float64("lon", lon).
		Float64("temp", forecast.CurrentTempC).
		Msg("Fetched forecast")

	return forecast, nil
}

func (c *Client) getStale(cacheKey string) (*Forecast, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}
	blob, err := c.cacheRepo.GetStale("weather_forecast", cacheKey)
	if err != nil || blob == nil {
		return nil, false
	}
	var cached Forecast
	if err := clientdata.Decode(blob, &cached); err != nil {
		return nil, false
	}
	return &cached, true
}
