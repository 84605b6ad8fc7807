package scenarios

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/saitejamanchi/rythumitra/internal/domain"
	"github.com/saitejamanchi/rythumitra/internal/utils"
)

// Engine runs counterfactual simulations against a baseline recommendation.
// Stateless apart from the logger; safe for concurrent use.
type Engine struct {
	log zerolog.Logger
}

func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{log: log.With().Str("component", "scenario_engine").Logger()}
}

// baseLoss reads the baseline loss probability, defaulting to a neutral
// midpoint when the recommendation skipped risk analysis.
func baseLoss(rec domain.ScoredRecommendation) int {
	if rec.RiskAnalysis != nil {
		return rec.RiskAnalysis.LossProbability
	}
	return 50
}

// SimulateSowingDelay scales the nearest season bracket to the actual delay.
// Delays at or below zero produce a no-op scenario.
func (e *Engine) SimulateSowingDelay(rec domain.ScoredRecommendation, season domain.Season, delayDays int) Recommendation {
	out := Recommendation{ScoredRecommendation: rec.Clone()}

	brackets, ok := delayBrackets[season]
	if !ok {
		brackets = delayBrackets[domain.SeasonKharif]
	}

	bracket := nearestBracket(delayDays)
	impact := brackets[bracket]

	scale := 0.0
	if delayDays > 0 {
		scale = float64(delayDays) / float64(bracket)
	}

	yieldLoss := round1(impact.yieldLoss * scale)
	riskIncrease := round1(impact.riskIncrease * scale)

	adjustedYield := out.YieldPotential
	switch {
	case yieldLoss > 25:
		adjustedYield = adjustedYield.Downgrade().Downgrade()
	case yieldLoss > 15:
		adjustedYield = adjustedYield.Downgrade()
	}

	out.Scenario = Scenario{
		Type:                TypeSowingDelay,
		Description:         fmt.Sprintf("Sowing delayed by %d days in %s", delayDays, season),
		YieldLossPercent:    yieldLoss,
		RiskIncreasePercent: riskIncrease,
		AdjustedLoss:        utils.ClampInt(baseLoss(rec)+int(math.Round(riskIncrease)), 5, 95),
		AdjustedYield:       adjustedYield,
	}
	return out
}

// SimulateRainfallFailure models a monsoon shortfall. High-water crops facing
// a failure longer than 30 days hit the catastrophic override.
func (e *Engine) SimulateRainfallFailure(rec domain.ScoredRecommendation, failurePercent float64, failureDays int) Recommendation {
	out := Recommendation{ScoredRecommendation: rec.Clone()}

	multiplier, ok := waterNeedsMultiplier[rec.WaterNeeds]
	if !ok {
		multiplier = 1.0
	}
	yieldLoss := round1(failurePercent * 0.6 * multiplier)

	scenario := Scenario{
		Type:             TypeRainfallFailure,
		Description:      fmt.Sprintf("Rainfall %.0f%% below normal for %d days", failurePercent, failureDays),
		YieldLossPercent: yieldLoss,
		AdjustedLoss:     utils.ClampInt(baseLoss(rec)+int(math.Round(yieldLoss*0.5)), 5, 95),
		AdjustedYield:    out.YieldPotential,
		Category:         categoryForLoss(yieldLoss),
	}

	if rec.WaterNeeds == domain.LevelHigh && failureDays > 30 {
		scenario.AdjustedLoss = 85
		scenario.Category = "Very High"
		scenario.AdjustedYield = domain.LevelLow
	}

	out.Scenario = scenario
	return out
}

// SimulateFertilizerReduction models cutting fertilizer spend. Losses stay
// mild up to a 30% cut, then steepen.
func (e *Engine) SimulateFertilizerReduction(rec domain.ScoredRecommendation, reductionPercent float64) Recommendation {
	out := Recommendation{ScoredRecommendation: rec.Clone()}

	reductionPercent = utils.Clamp(reductionPercent, 0, 100)

	var yieldLoss float64
	if reductionPercent <= 30 {
		yieldLoss = reductionPercent * 0.3
	} else {
		yieldLoss = 9 + (reductionPercent-30)*0.7
	}
	yieldLoss = round1(yieldLoss)

	planCost := fertilizerPlanCost[rec.Crop]
	if planCost == 0 {
		planCost = defaultPlanCost
	}

	out.Scenario = Scenario{
		Type:             TypeFertilizerReduction,
		Description:      fmt.Sprintf("Fertilizer use reduced by %.0f%%", reductionPercent),
		YieldLossPercent: yieldLoss,
		AdjustedLoss:     utils.ClampInt(baseLoss(rec)+int(math.Round(yieldLoss*0.4)), 5, 95),
		AdjustedYield:    out.YieldPotential,
		QualityRisk:      reductionPercent > 40,
		CostSavings:      math.Round(planCost * reductionPercent / 100),
	}
	return out
}

// SimulatePestOutbreak applies the severity lookup, amplified for crops with
// a history of severe outbreaks.
func (e *Engine) SimulatePestOutbreak(rec domain.ScoredRecommendation, severity string) (Recommendation, error) {
	impact, ok := pestSeverityImpact[severity]
	if !ok {
		return Recommendation{}, fmt.Errorf("unknown pest severity %q (want mild, moderate or severe)", severity)
	}

	out := Recommendation{ScoredRecommendation: rec.Clone()}

	yieldLoss := impact.yieldLoss
	costIncrease := impact.costIncrease
	if pestProneCrops[rec.Crop] {
		yieldLoss *= pestProneMultiplier
		costIncrease *= pestProneMultiplier
	}

	out.Scenario = Scenario{
		Type:                TypePestOutbreak,
		Description:         fmt.Sprintf("%s pest outbreak on %s", severity, rec.Crop),
		YieldLossPercent:    round1(yieldLoss),
		CostIncreasePercent: round1(costIncrease),
		AdjustedLoss:        utils.ClampInt(baseLoss(rec)+int(math.Round(yieldLoss*0.5)), 5, 95),
		AdjustedYield:       out.YieldPotential,
	}
	return out, nil
}

// CompareScenarios finds the loss-probability spread across variants and
// issues a qualitative verdict.
func (e *Engine) CompareScenarios(base domain.ScoredRecommendation, variants []Recommendation) Comparison {
	cmp := Comparison{BaselineLoss: baseLoss(base)}
	if len(variants) == 0 {
		cmp.Verdict = "no scenarios to compare"
		return cmp
	}

	cmp.MinLoss, cmp.MaxLoss = variants[0].Scenario.AdjustedLoss, variants[0].Scenario.AdjustedLoss
	cmp.BestCase, cmp.WorstCase = variants[0].Scenario.Type, variants[0].Scenario.Type

	for _, v := range variants[1:] {
		if v.Scenario.AdjustedLoss < cmp.MinLoss {
			cmp.MinLoss = v.Scenario.AdjustedLoss
			cmp.BestCase = v.Scenario.Type
		}
		if v.Scenario.AdjustedLoss > cmp.MaxLoss {
			cmp.MaxLoss = v.Scenario.AdjustedLoss
			cmp.WorstCase = v.Scenario.Type
		}
	}
	cmp.Spread = cmp.MaxLoss - cmp.MinLoss

	switch {
	case cmp.Spread > 30:
		cmp.Verdict = "high variability across scenarios; outcome depends heavily on conditions"
		cmp.Advisories = append(cmp.Advisories, "Plan for the worst case before committing the full acreage")
	case cmp.MaxLoss > 70:
		cmp.Verdict = "worst case is severe; ensure mitigation is in place"
		cmp.Advisories = append(cmp.Advisories, fmt.Sprintf("Mitigate the %s scenario first", cmp.WorstCase))
	default:
		cmp.Verdict = "risk is manageable across all simulated scenarios"
	}

	e.log.Debug().
		Int("variants", len(variants)).
		Int("spread", cmp.Spread).
		Msg("Scenario comparison complete")

	return cmp
}

// nearestBracket picks the defined bracket closest to the delay. Delays at or
// below the smallest bracket map to it (and scale toward zero).
func nearestBracket(delayDays int) int {
	best := bracketDays[0]
	bestDist := math.Abs(float64(delayDays - best))
	for _, b := range bracketDays[1:] {
		if d := math.Abs(float64(delayDays - b)); d < bestDist {
			best, bestDist = b, d
		}
	}
	return best
}

func categoryForLoss(yieldLoss float64) string {
	switch {
	case yieldLoss >= 40:
		return "High"
	case yieldLoss >= 20:
		return "Medium"
	default:
		return "Low"
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
