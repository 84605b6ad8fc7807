package scenarios

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/saitejamanchi/rythumitra/internal/domain"
)

func baseRec() domain.ScoredRecommendation {
	return domain.ScoredRecommendation{
		Crop:           "Cotton",
		Confidence:     85,
		YieldPotential: domain.LevelHigh,
		WaterNeeds:     domain.LevelMedium,
		Warnings:       []string{"baseline warning"},
		RiskAnalysis:   &domain.RiskAnalysis{LossProbability: 40},
	}
}

func TestSowingDelay_ZeroDelayIsNoOp(t *testing.T) {
	engine := NewEngine(zerolog.Nop())

	out := engine.SimulateSowingDelay(baseRec(), domain.SeasonKharif, 0)

	assert.InDelta(t, 0, out.Scenario.YieldLossPercent, 0.001)
	assert.InDelta(t, 0, out.Scenario.RiskIncreasePercent, 0.001)
	assert.Equal(t, 40, out.Scenario.AdjustedLoss)
	assert.Equal(t, domain.LevelHigh, out.Scenario.AdjustedYield)
}

func TestSowingDelay_ScalesWithinBracket(t *testing.T) {
	engine := NewEngine(zerolog.Nop())

	// 5 days scales the 10-day Kharif bracket (5% loss) by half
	out := engine.SimulateSowingDelay(baseRec(), domain.SeasonKharif, 5)
	assert.InDelta(t, 2.5, out.Scenario.YieldLossPercent, 0.001)
	assert.InDelta(t, 2.0, out.Scenario.RiskIncreasePercent, 0.001)
	assert.Equal(t, 42, out.Scenario.AdjustedLoss)
}

func TestSowingDelay_YieldDowngrades(t *testing.T) {
	engine := NewEngine(zerolog.Nop())

	// 20-day Kharif bracket: 20% loss -> one downgrade
	out := engine.SimulateSowingDelay(baseRec(), domain.SeasonKharif, 20)
	assert.InDelta(t, 20, out.Scenario.YieldLossPercent, 0.001)
	assert.Equal(t, domain.LevelMedium, out.Scenario.AdjustedYield)

	// 30-day Kharif bracket: 35% loss -> two downgrades
	out = engine.SimulateSowingDelay(baseRec(), domain.SeasonKharif, 30)
	assert.InDelta(t, 35, out.Scenario.YieldLossPercent, 0.001)
	assert.Equal(t, domain.LevelLow, out.Scenario.AdjustedYield)
}

func TestSowingDelay_SeasonBracketsDiffer(t *testing.T) {
	engine := NewEngine(zerolog.Nop())

	kharif := engine.SimulateSowingDelay(baseRec(), domain.SeasonKharif, 15)
	rabi := engine.SimulateSowingDelay(baseRec(), domain.SeasonRabi, 15)

	assert.Greater(t, kharif.Scenario.YieldLossPercent, rabi.Scenario.YieldLossPercent,
		"monsoon-bound Kharif sowing must be more delay-sensitive than Rabi")
}

func TestRainfallFailure_WaterNeedsMultiplier(t *testing.T) {
	engine := NewEngine(zerolog.Nop())

	rec := baseRec()
	rec.WaterNeeds = domain.LevelHigh
	high := engine.SimulateRainfallFailure(rec, 40, 20)
	assert.InDelta(t, 36, high.Scenario.YieldLossPercent, 0.001) // 40*0.6*1.5

	rec.WaterNeeds = domain.LevelLow
	low := engine.SimulateRainfallFailure(rec, 40, 20)
	assert.InDelta(t, 12, low.Scenario.YieldLossPercent, 0.001) // 40*0.6*0.5
}

func TestRainfallFailure_CatastrophicOverride(t *testing.T) {
	engine := NewEngine(zerolog.Nop())

	rec := baseRec()
	rec.WaterNeeds = domain.LevelHigh

	out := engine.SimulateRainfallFailure(rec, 50, 35)
	assert.Equal(t, 85, out.Scenario.AdjustedLoss)
	assert.Equal(t, "Very High", out.Scenario.Category)
	assert.Equal(t, domain.LevelLow, out.Scenario.AdjustedYield)

	// 30 days exactly does not trigger the override
	out = engine.SimulateRainfallFailure(rec, 50, 30)
	assert.NotEqual(t, "Very High", out.Scenario.Category)
}

func TestFertilizerReduction_PiecewiseLoss(t *testing.T) {
	engine := NewEngine(zerolog.Nop())

	mild := engine.SimulateFertilizerReduction(baseRec(), 20)
	assert.InDelta(t, 6, mild.Scenario.YieldLossPercent, 0.001) // 20*0.3
	assert.False(t, mild.Scenario.QualityRisk)

	// At 50%: 9 + 20*0.7 = 23, and quality risk kicks in past 40%
	steep := engine.SimulateFertilizerReduction(baseRec(), 50)
	assert.GreaterOrEqual(t, steep.Scenario.YieldLossPercent, 23.0)
	assert.True(t, steep.Scenario.QualityRisk)

	// Cotton plan 9000/acre at 50% reduction
	assert.InDelta(t, 4500, steep.Scenario.CostSavings, 0.001)
}

func TestPestOutbreak_SeverityAndProneCrops(t *testing.T) {
	engine := NewEngine(zerolog.Nop())

	// Cotton is outbreak-prone: moderate 25/30 gets the 1.2x multiplier
	out, err := engine.SimulatePestOutbreak(baseRec(), "moderate")
	require.NoError(t, err)
	assert.InDelta(t, 30, out.Scenario.YieldLossPercent, 0.001)
	assert.InDelta(t, 36, out.Scenario.CostIncreasePercent, 0.001)

	rec := baseRec()
	rec.Crop = "Jowar"
	out, err = engine.SimulatePestOutbreak(rec, "moderate")
	require.NoError(t, err)
	assert.InDelta(t, 25, out.Scenario.YieldLossPercent, 0.001)

	_, err = engine.SimulatePestOutbreak(baseRec(), "apocalyptic")
	assert.Error(t, err)
}

func TestSimulations_NeverMutateBaseline(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	rec := baseRec()

	out := engine.SimulateSowingDelay(rec, domain.SeasonKharif, 30)
	out.Warnings[0] = "changed"
	out.RiskAnalysis.LossProbability = 99

	assert.Equal(t, "baseline warning", rec.Warnings[0])
	assert.Equal(t, 40, rec.RiskAnalysis.LossProbability)
	assert.Equal(t, domain.LevelHigh, rec.YieldPotential)
}

func TestCompareScenarios_Verdicts(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	base := baseRec()

	variant := func(typ string, loss int) Recommendation {
		return Recommendation{Scenario: Scenario{Type: typ, AdjustedLoss: loss}}
	}

	wide := engine.CompareScenarios(base, []Recommendation{
		variant(TypeSowingDelay, 20),
		variant(TypeRainfallFailure, 85),
	})
	assert.Equal(t, 65, wide.Spread)
	assert.Contains(t, wide.Verdict, "high variability")
	assert.Equal(t, TypeRainfallFailure, wide.WorstCase)
	assert.Equal(t, TypeSowingDelay, wide.BestCase)

	severe := engine.CompareScenarios(base, []Recommendation{
		variant(TypePestOutbreak, 75),
		variant(TypeFertilizerReduction, 60),
	})
	assert.Contains(t, severe.Verdict, "mitigation")

	calm := engine.CompareScenarios(base, []Recommendation{
		variant(TypeSowingDelay, 42),
		variant(TypeFertilizerReduction, 48),
	})
	assert.Contains(t, calm.Verdict, "manageable")
}
