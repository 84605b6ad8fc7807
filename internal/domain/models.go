// Package domain holds the shared data model for the advisory pipeline.
// The domain layer is pure: no infrastructure dependencies. Providers (soil,
// weather, catalog) construct these records at the boundary; the pipeline
// treats them as immutable once built.
package domain

import (
	"fmt"
	"strings"
)

// Level is a coarse Low/Medium/High grading used for water needs,
// yield potential and risk factors.
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// Rank orders levels for comparisons and downgrades (Low=0, Medium=1, High=2).
func (l Level) Rank() int {
	switch l {
	case LevelMedium:
		return 1
	case LevelHigh:
		return 2
	default:
		return 0
	}
}

// Downgrade returns the level one step lower (High -> Medium -> Low).
func (l Level) Downgrade() Level {
	switch l {
	case LevelHigh:
		return LevelMedium
	case LevelMedium:
		return LevelLow
	default:
		return LevelLow
	}
}

// Season is a cropping season in the Telangana/Andhra calendar.
type Season string

const (
	SeasonKharif Season = "Kharif"
	SeasonRabi   Season = "Rabi"
	SeasonZaid   Season = "Zaid"
)

// SoilSource tags where a soil record came from. The confidence scorer
// assigns trust per source.
type SoilSource string

const (
	SoilSourceDatabase     SoilSource = "database"
	SoilSourceAIResearched SoilSource = "ai_researched"
	SoilSourceUserSelected SoilSource = "user_selected"
	SoilSourceSoilReport   SoilSource = "soil_report"
	SoilSourceImage        SoilSource = "image_classified"
)

// SoilParams is a normalized soil record. Constructed once at the request
// boundary via NewSoilParams and immutable afterwards.
type SoilParams struct {
	SoilType string     `json:"soil_type"`
	PH       float64    `json:"ph"`
	N        float64    `json:"n"` // mg/kg
	P        float64    `json:"p"` // mg/kg
	K        float64    `json:"k"` // mg/kg
	Source   SoilSource `json:"source"`
}

// NewSoilParams validates and builds a soil record.
// Invariants enforced here so call sites never re-check: pH in [3.0, 10.0],
// N/P/K non-negative.
func NewSoilParams(soilType string, ph, n, p, k float64, source SoilSource) (SoilParams, error) {
	if strings.TrimSpace(soilType) == "" {
		return SoilParams{}, fmt.Errorf("soil type is required")
	}
	if ph < 3.0 || ph > 10.0 {
		return SoilParams{}, fmt.Errorf("soil pH %.2f out of range [3.0, 10.0]", ph)
	}
	if n < 0 || p < 0 || k < 0 {
		return SoilParams{}, fmt.Errorf("soil N/P/K values must be non-negative (got n=%.1f p=%.1f k=%.1f)", n, p, k)
	}
	if source == "" {
		source = SoilSourceDatabase
	}
	return SoilParams{SoilType: soilType, PH: ph, N: n, P: p, K: k, Source: source}, nil
}

// WeatherSnapshot is the per-request weather context derived once from
// current + forecast data. Read-only input to scoring and risk analysis.
type WeatherSnapshot struct {
	TempC           float64 `json:"temp_c"`
	Humidity        float64 `json:"humidity"`
	RainDays        int     `json:"rain_days"` // days with rain in the 7-day forecast, 0-7
	AvgTemp         float64 `json:"avg_temp"`  // forecast average
	TotalRainfallMM float64 `json:"total_rainfall_mm"`
	Risk            Level   `json:"weather_risk"`
	ForecastHours   int     `json:"forecast_hours"` // horizon of the forecast backing this snapshot
}

// CropProfile is a static catalog entry for one crop. Loaded once at process
// start; never mutated at request time.
type CropProfile struct {
	Name            string   `json:"name"`
	NameTe          string   `json:"name_te"` // Telugu crop name
	Seasons         []Season `json:"seasons"`
	SoilSuitability []string `json:"soil_suitability"`
	PHMin           float64  `json:"ph_min"`
	PHMax           float64  `json:"ph_max"`
	MinTemp         float64  `json:"min_temp"`
	MaxTemp         float64  `json:"max_temp"`
	WaterNeeds      Level    `json:"water_needs"`
	YieldPotential  Level    `json:"yield_potential"`
	Risk            Level    `json:"risk"`
	NNeeds          Level    `json:"n_needs"`
	PNeeds          Level    `json:"p_needs"`
	KNeeds          Level    `json:"k_needs"`
}

// SupportsSeason reports whether the crop is grown in the given season.
func (p CropProfile) SupportsSeason(season Season) bool {
	for _, s := range p.Seasons {
		if s == season {
			return true
		}
	}
	return false
}

// SuitsSoil reports whether any of the normalized soil aliases intersect
// the crop's soil suitability list.
func (p CropProfile) SuitsSoil(aliases []string) bool {
	for _, suitable := range p.SoilSuitability {
		for _, alias := range aliases {
			if strings.EqualFold(suitable, alias) {
				return true
			}
		}
	}
	return false
}
