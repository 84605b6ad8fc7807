package domain

// RiskComponent is one of the four risk sub-scores (weather/market/pest/cost).
type RiskComponent struct {
	Score   int      `json:"score"` // 0-100
	Level   Level    `json:"level"`
	Factors []string `json:"factors"`
}

// RiskBreakdown holds the four independent risk sub-scores.
type RiskBreakdown struct {
	WeatherRisk RiskComponent `json:"weather_risk"`
	MarketRisk  RiskComponent `json:"market_risk"`
	PestRisk    RiskComponent `json:"pest_risk"`
	CostRisk    RiskComponent `json:"cost_risk"`
}

// RiskAnalysis augments a recommendation with the decision simulator output.
// LossProbability is always clamped to [5, 95].
type RiskAnalysis struct {
	LossProbability  int           `json:"loss_probability"`
	RiskBreakdown    RiskBreakdown `json:"risk_breakdown"`
	DominantRisk     string        `json:"dominant_risk"`
	SuitabilityScore int           `json:"suitability_score"`
	DecisionGrade    string        `json:"decision_grade"`
}

// ScoredRecommendation is one crop recommendation produced by a scoring
// engine and enriched by the decision simulator.
type ScoredRecommendation struct {
	Crop                     string        `json:"crop"`
	CropTe                   string        `json:"crop_te,omitempty"`
	Confidence               int           `json:"confidence"` // 0-100
	YieldPotential           Level         `json:"yield_potential"`
	RiskFactor               Level         `json:"risk_factor"`
	WaterNeeds               Level         `json:"water_needs"`
	Reason                   string        `json:"reason"`
	Warnings                 []string      `json:"warnings"`
	FertilizerRecommendation string        `json:"fertilizer_recommendation,omitempty"`
	ForecastInsight          string        `json:"forecast_insight,omitempty"`
	RiskAnalysis             *RiskAnalysis `json:"risk_analysis,omitempty"`
}

// Clone returns a deep copy. Scenario simulations mutate copies, never the
// baseline recommendation.
func (r ScoredRecommendation) Clone() ScoredRecommendation {
	out := r
	out.Warnings = append([]string(nil), r.Warnings...)
	if r.RiskAnalysis != nil {
		ra := *r.RiskAnalysis
		ra.RiskBreakdown.WeatherRisk.Factors = append([]string(nil), r.RiskAnalysis.RiskBreakdown.WeatherRisk.Factors...)
		ra.RiskBreakdown.MarketRisk.Factors = append([]string(nil), r.RiskAnalysis.RiskBreakdown.MarketRisk.Factors...)
		ra.RiskBreakdown.PestRisk.Factors = append([]string(nil), r.RiskAnalysis.RiskBreakdown.PestRisk.Factors...)
		ra.RiskBreakdown.CostRisk.Factors = append([]string(nil), r.RiskAnalysis.RiskBreakdown.CostRisk.Factors...)
		out.RiskAnalysis = &ra
	}
	return out
}

// RecommendationInput is the normalized input every scoring engine consumes.
type RecommendationInput struct {
	Soil    SoilParams
	Season  Season
	Weather WeatherSnapshot
}

// ModelType identifies which engine produced a recommendation set.
const (
	ModelTypeMLTrained = "ml_trained"
	ModelTypeRuleBased = "rule_based"
)

// RecommendationEngine is implemented by the rule-based scorer and the
// trained-model wrapper. The engine is selected once at startup by a
// capability check (model artifact present or not); a trained engine that
// returns zero rows for a request falls back per request at the call site.
type RecommendationEngine interface {
	Recommend(input RecommendationInput) ([]ScoredRecommendation, error)
	ModelType() string
}
