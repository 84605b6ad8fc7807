// Package advisory orchestrates the recommendation pipeline: soil and
// weather resolution, engine scoring with fallback, risk simulation,
// confidence aggregation, bilingual explanations, enrichment fan-out and
// advisory persistence.
package advisory

import (
	"github.com/saitejamanchi/rythumitra/internal/clients/agmarknet"
	"github.com/saitejamanchi/rythumitra/internal/clients/nasapower"
	"github.com/saitejamanchi/rythumitra/internal/domain"
	"github.com/saitejamanchi/rythumitra/internal/modules/explain"
	"github.com/saitejamanchi/rythumitra/internal/modules/soil"
)

// Request is the recommendation request body.
type Request struct {
	LocationName        string          `json:"location_name"`
	Mandal              string          `json:"mandal,omitempty"`
	ManualSoilType      string          `json:"manual_soil_type,omitempty"`
	Lat                 *float64        `json:"lat,omitempty"`
	Lon                 *float64        `json:"lon,omitempty"`
	Season              string          `json:"season,omitempty"` // derived from the calendar when empty
	IncludeRiskAnalysis *bool           `json:"include_risk_analysis,omitempty"`
	ShowAlternatives    *bool           `json:"show_alternatives,omitempty"`
	CustomNPK           *soil.CustomNPK `json:"custom_npk,omitempty"`
}

func (r Request) includeRisk() bool {
	return r.IncludeRiskAnalysis == nil || *r.IncludeRiskAnalysis
}

func (r Request) showAlternatives() bool {
	return r.ShowAlternatives == nil || *r.ShowAlternatives
}

// Context describes the resolved inputs the recommendations were scored on.
type Context struct {
	Season     domain.Season           `json:"season"`
	SoilType   string                  `json:"soil_type"`
	SoilSource domain.SoilSource       `json:"soil_source"`
	SoilParams domain.SoilParams       `json:"soil_params"`
	Weather    domain.WeatherSnapshot  `json:"weather"`
	Confidence domain.ConfidenceReport `json:"confidence"`
}

// Recommendation pairs the scored crop with its bilingual explanation.
type Recommendation struct {
	domain.ScoredRecommendation
	Explanation explain.Explanation `json:"explanation"`
}

// Enrichment carries the optional fan-out extras. Any field may be nil when
// its source failed; a degraded response is still a success.
type Enrichment struct {
	MarketPrices []agmarknet.Price        `json:"market_prices,omitempty"`
	Climatology  *nasapower.Climatology   `json:"climatology,omitempty"`
	WeatherWeek  []domain.WeatherSnapshot `json:"weather_week,omitempty"`
}

// Response is the recommendation response body.
type Response struct {
	AdvisoryID      string           `json:"advisory_id"`
	Location        string           `json:"location"`
	ModelType       string           `json:"model_type"`
	Context         Context          `json:"context"`
	Recommendations []Recommendation `json:"recommendations"`
	Enrichment      *Enrichment      `json:"enrichment,omitempty"`
}

// StoredAdvisory is one persisted advisory run.
type StoredAdvisory struct {
	UUID         string `json:"uuid"`
	Location     string `json:"location"`
	Season       string `json:"season"`
	SoilType     string `json:"soil_type"`
	SoilSource   string `json:"soil_source"`
	ModelType    string `json:"model_type"`
	TopCrop      string `json:"top_crop"`
	Confidence   int    `json:"confidence"`
	OverallTrust int    `json:"overall_trust"`
	Payload      string `json:"payload,omitempty"`
	CreatedAt    int64  `json:"created_at"`
}
