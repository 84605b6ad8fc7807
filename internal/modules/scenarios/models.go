// Package scenarios implements the counterfactual engine: what-if
// perturbations (sowing delay, rainfall failure, fertilizer reduction, pest
// outbreak) applied to a baseline recommendation. Every simulation works on a
// deep copy; the baseline is never touched and nothing is persisted.
package scenarios

import "github.com/saitejamanchi/rythumitra/internal/domain"

// Scenario types.
const (
	TypeSowingDelay         = "sowing_delay"
	TypeRainfallFailure     = "rainfall_failure"
	TypeFertilizerReduction = "fertilizer_reduction"
	TypePestOutbreak        = "pest_outbreak"
)

// Scenario describes one counterfactual perturbation and its computed deltas.
type Scenario struct {
	Type        string `json:"type"`
	Description string `json:"description"`

	YieldLossPercent    float64      `json:"yield_loss_percent"`
	RiskIncreasePercent float64      `json:"risk_increase_percent,omitempty"`
	AdjustedLoss        int          `json:"adjusted_loss_probability"`
	AdjustedYield       domain.Level `json:"adjusted_yield_potential"`
	Category            string       `json:"category,omitempty"`

	// Fertilizer reduction only.
	QualityRisk bool    `json:"quality_risk,omitempty"`
	CostSavings float64 `json:"cost_savings,omitempty"` // rupees per acre

	// Pest outbreak only.
	CostIncreasePercent float64 `json:"cost_increase_percent,omitempty"`
}

// Recommendation is a deep-copied recommendation with its scenario block.
// Owned exclusively by the request that generated it.
type Recommendation struct {
	domain.ScoredRecommendation
	Scenario Scenario `json:"scenario"`
}

// Comparison summarizes loss-probability spread across scenario variants.
type Comparison struct {
	BaselineLoss int      `json:"baseline_loss_probability"`
	BestCase     string   `json:"best_case"`
	WorstCase    string   `json:"worst_case"`
	MinLoss      int      `json:"min_loss_probability"`
	MaxLoss      int      `json:"max_loss_probability"`
	Spread       int      `json:"spread"`
	Verdict      string   `json:"verdict"`
	Advisories   []string `json:"advisories,omitempty"`
}

// delayImpact is one sowing-delay bracket: yield loss and risk increase at
// exactly bracketDays of delay. Actual delays scale proportionally.
type delayImpact struct {
	yieldLoss    float64
	riskIncrease float64
}

// Season-specific sowing windows: Kharif sowing rides the monsoon onset so
// delays bite hardest; Rabi has residual moisture slack; Zaid is already a
// compressed window.
var delayBrackets = map[domain.Season]map[int]delayImpact{
	domain.SeasonKharif: {
		10: {yieldLoss: 5, riskIncrease: 4},
		15: {yieldLoss: 12, riskIncrease: 8},
		20: {yieldLoss: 20, riskIncrease: 14},
		30: {yieldLoss: 35, riskIncrease: 22},
	},
	domain.SeasonRabi: {
		10: {yieldLoss: 3, riskIncrease: 3},
		15: {yieldLoss: 8, riskIncrease: 6},
		20: {yieldLoss: 15, riskIncrease: 10},
		30: {yieldLoss: 28, riskIncrease: 18},
	},
	domain.SeasonZaid: {
		10: {yieldLoss: 6, riskIncrease: 5},
		15: {yieldLoss: 14, riskIncrease: 10},
		20: {yieldLoss: 24, riskIncrease: 16},
		30: {yieldLoss: 40, riskIncrease: 25},
	},
}

var bracketDays = []int{10, 15, 20, 30}

// rainfall failure multipliers by water needs.
var waterNeedsMultiplier = map[domain.Level]float64{
	domain.LevelLow:    0.5,
	domain.LevelMedium: 1.0,
	domain.LevelHigh:   1.5,
}

// pestImpact pairs yield loss with treatment cost increase per severity.
var pestSeverityImpact = map[string]struct {
	yieldLoss    float64
	costIncrease float64
}{
	"mild":     {10, 15},
	"moderate": {25, 30},
	"severe":   {50, 50},
}

// Crops with historically severe outbreak dynamics get a 1.2x multiplier.
var pestProneCrops = map[string]bool{
	"Cotton": true,
	"Tomato": true,
	"Chilli": true,
	"Rice":   true,
}

const pestProneMultiplier = 1.2

// Estimated fertilizer plan cost in rupees per acre, used to express a
// reduction scenario as money saved.
var fertilizerPlanCost = map[string]float64{
	"Cotton":      9000,
	"Chilli":      11000,
	"Sugarcane":   10000,
	"Tomato":      9500,
	"Rice":        7000,
	"Turmeric":    8500,
	"Maize":       6000,
	"Ground Nuts": 5000,
	"Sunflower":   4500,
	"Pulses":      3500,
	"Bengal Gram": 3500,
	"Jowar":       3000,
}

const defaultPlanCost = 6000
