package risk

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/saitejamanchi/rythumitra/internal/domain"
	"github.com/saitejamanchi/rythumitra/internal/utils"
)

// Sub-score weights for the loss probability.
const (
	weatherWeight = 0.40
	marketWeight  = 0.25
	pestWeight    = 0.20
	costWeight    = 0.15

	// The confidence penalty adds up to 20 points for a zero-confidence
	// recommendation. Loss probability never leaves [5, 95]: nothing is
	// certain either way.
	confidencePenaltyFactor = 0.2
	minLossProbability      = 5
	maxLossProbability      = 95

	weatherBase = 30
)

// Rank labels assigned after re-sorting by suitability.
var decisionGrades = []string{"Best Option", "Good Alternative", "Viable Option"}

const fallbackGrade = "Alternative"

// Context carries request-scoped inputs the simulator needs beyond the
// recommendations themselves. MarketTrends is optional enrichment from the
// mandi price module (crop name -> trend note).
type Context struct {
	Weather      domain.WeatherSnapshot
	Soil         domain.SoilParams
	MarketTrends map[string]string
}

// Simulator enriches scored recommendations with a four-way risk breakdown,
// a loss probability and a final suitability ranking.
type Simulator struct {
	log zerolog.Logger
}

func NewSimulator(log zerolog.Logger) *Simulator {
	return &Simulator{log: log.With().Str("component", "decision_simulator").Logger()}
}

// SimulateDecision computes the risk analysis for each recommendation and
// returns the set re-sorted by suitability score (descending), with rank
// labels attached. Input recommendations are copied, never mutated.
func (s *Simulator) SimulateDecision(recs []domain.ScoredRecommendation, ctx Context) []domain.ScoredRecommendation {
	out := make([]domain.ScoredRecommendation, 0, len(recs))

	for _, rec := range recs {
		enriched := rec.Clone()
		breakdown := domain.RiskBreakdown{
			WeatherRisk: s.weatherRisk(rec, ctx.Weather),
			MarketRisk:  s.marketRisk(rec, ctx.MarketTrends),
			PestRisk:    s.pestRisk(rec, ctx.Weather),
			CostRisk:    s.costRisk(rec, ctx.Soil),
		}

		loss := lossProbability(breakdown, rec.Confidence)
		suitability := int(float64(100-loss)*0.6 + float64(rec.Confidence)*0.4)

		enriched.RiskAnalysis = &domain.RiskAnalysis{
			LossProbability:  loss,
			RiskBreakdown:    breakdown,
			DominantRisk:     dominantRisk(breakdown),
			SuitabilityScore: suitability,
		}
		out = append(out, enriched)
	}

	sortBySuitability(out)
	for i := range out {
		out[i].RiskAnalysis.DecisionGrade = gradeForRank(i)
	}

	s.log.Debug().Int("recommendations", len(out)).Msg("Decision simulation complete")
	return out
}

// weatherRisk starts at the flat base and adds penalties for rainfall and
// temperature misalignment with the crop's water needs.
func (s *Simulator) weatherRisk(rec domain.ScoredRecommendation, weather domain.WeatherSnapshot) domain.RiskComponent {
	score := weatherBase
	var factors []string

	if rec.WaterNeeds == domain.LevelHigh {
		if weather.RainDays < 3 {
			score += 30
			factors = append(factors, fmt.Sprintf("High water needs but only %d rain days forecast", weather.RainDays))
		}
		if weather.TotalRainfallMM < 50 {
			score += 20
			factors = append(factors, fmt.Sprintf("Forecast rainfall %.0fmm is below the 50mm the crop needs", weather.TotalRainfallMM))
		}
	}
	if rec.WaterNeeds == domain.LevelLow && weather.RainDays > 6 {
		score += 15
		factors = append(factors, "Persistent rain forecast for a crop that prefers dry conditions")
	}
	if weather.AvgTemp > 35 {
		score += 15
		factors = append(factors, fmt.Sprintf("Forecast average %.1f°C brings heat stress", weather.AvgTemp))
	}
	if weather.AvgTemp < 15 {
		score += 10
		factors = append(factors, fmt.Sprintf("Forecast average %.1f°C risks cold damage", weather.AvgTemp))
	}

	return component(score, factors)
}

// marketRisk is the per-crop volatility base plus a glut penalty for
// high-yield crops (everyone plants them, prices crash at harvest).
func (s *Simulator) marketRisk(rec domain.ScoredRecommendation, trends map[string]string) domain.RiskComponent {
	score := baseFor(marketVolatilityBase, rec.Crop)
	factors := []string{fmt.Sprintf("Historical price volatility for %s", rec.Crop)}

	if rec.YieldPotential == domain.LevelHigh {
		score += 10
		factors = append(factors, "High-yield crops face oversupply pressure at harvest")
	}
	if note, ok := trends[rec.Crop]; ok && note != "" {
		factors = append(factors, note)
	}

	return component(score, factors)
}

// pestRisk is the per-crop pressure base plus a humid-warm window penalty.
func (s *Simulator) pestRisk(rec domain.ScoredRecommendation, weather domain.WeatherSnapshot) domain.RiskComponent {
	score := baseFor(pestPressureBase, rec.Crop)
	factors := []string{fmt.Sprintf("Typical pest pressure for %s", rec.Crop)}

	if weather.Humidity > 70 && weather.TempC > 25 && weather.TempC < 32 {
		score += 15
		factors = append(factors, "Warm humid conditions favour pest multiplication")
	}

	return component(score, factors)
}

// costRisk is the per-crop input cost base plus a penalty when the soil is
// deficient and fertilizer spend will be higher than usual.
func (s *Simulator) costRisk(rec domain.ScoredRecommendation, soil domain.SoilParams) domain.RiskComponent {
	score := baseFor(inputCostBase, rec.Crop)
	factors := []string{fmt.Sprintf("Typical input cost for %s", rec.Crop)}

	if soil.N < 100 || soil.P < 30 || soil.K < 100 {
		score += 15
		factors = append(factors, "Soil nutrient deficiency raises fertilizer cost")
	}

	return component(score, factors)
}

func component(score int, factors []string) domain.RiskComponent {
	score = utils.ClampInt(score, 0, 100)
	return domain.RiskComponent{
		Score:   score,
		Level:   levelForRiskScore(score),
		Factors: factors,
	}
}

func levelForRiskScore(score int) domain.Level {
	switch {
	case score >= 60:
		return domain.LevelHigh
	case score >= 40:
		return domain.LevelMedium
	default:
		return domain.LevelLow
	}
}

func lossProbability(b domain.RiskBreakdown, confidence int) int {
	weighted := float64(b.WeatherRisk.Score)*weatherWeight +
		float64(b.MarketRisk.Score)*marketWeight +
		float64(b.PestRisk.Score)*pestWeight +
		float64(b.CostRisk.Score)*costWeight

	weighted += float64(100-confidence) * confidencePenaltyFactor
	return utils.ClampInt(int(weighted), minLossProbability, maxLossProbability)
}

// dominantRisk is the argmax of the four sub-scores. Ties resolve in the
// fixed order weather > market > pest > cost so output stays deterministic.
func dominantRisk(b domain.RiskBreakdown) string {
	best, bestScore := "weather", b.WeatherRisk.Score
	for _, candidate := range []struct {
		name  string
		score int
	}{
		{"market", b.MarketRisk.Score},
		{"pest", b.PestRisk.Score},
		{"cost", b.CostRisk.Score},
	} {
		if candidate.score > bestScore {
			best, bestScore = candidate.name, candidate.score
		}
	}
	return best
}

func gradeForRank(rank int) string {
	if rank < len(decisionGrades) {
		return decisionGrades[rank]
	}
	return fallbackGrade
}

// sortBySuitability orders descending by suitability score, breaking ties by
// lower loss probability so the safer option ranks first.
func sortBySuitability(recs []domain.ScoredRecommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i].RiskAnalysis, recs[j].RiskAnalysis
		if a.SuitabilityScore != b.SuitabilityScore {
			return a.SuitabilityScore > b.SuitabilityScore
		}
		return a.LossProbability < b.LossProbability
	})
}
