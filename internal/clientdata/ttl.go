package clientdata

import "time"

// Cache TTLs per data source. Forecasts age fast; NASA POWER climatology is
// stable for days; mandi prices refresh once per trading day.
const (
	TTLWeatherForecast = 1 * time.Hour
	TTLNASAPower       = 72 * time.Hour
	TTLMarketPrices    = 24 * time.Hour
	TTLSoilResearch    = 30 * 24 * time.Hour
)
