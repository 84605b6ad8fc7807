// Package risk implements the decision simulator: four independent risk
// sub-scores (weather, market, pest, cost) aggregated into a loss
// probability and a final suitability ranking.
package risk

// Per-crop base scores are hand-tuned constant tables, kept as data so they
// can be audited and replaced without touching the pipeline logic.

// marketVolatilityBase reflects historical mandi price swings per crop.
var marketVolatilityBase = map[string]int{
	"Cotton":      65,
	"Chilli":      70,
	"Tomato":      75,
	"Turmeric":    60,
	"Rice":        30,
	"Maize":       40,
	"Ground Nuts": 45,
	"Pulses":      40,
	"Sugarcane":   35,
	"Bengal Gram": 40,
	"Sunflower":   50,
	"Jowar":       35,
}

// pestPressureBase reflects typical pest/disease incidence per crop.
var pestPressureBase = map[string]int{
	"Cotton":      60, // bollworm, whitefly
	"Chilli":      55, // thrips, mites
	"Tomato":      55,
	"Rice":        45, // stem borer, BPH
	"Turmeric":    40,
	"Maize":       40, // fall armyworm
	"Ground Nuts": 40,
	"Sugarcane":   35,
	"Pulses":      35,
	"Bengal Gram": 35,
	"Sunflower":   35,
	"Jowar":       30,
}

// inputCostBase reflects seed/fertilizer/labour intensity per crop.
var inputCostBase = map[string]int{
	"Sugarcane":   60,
	"Cotton":      55,
	"Chilli":      60,
	"Tomato":      55,
	"Turmeric":    50,
	"Rice":        45,
	"Maize":       40,
	"Ground Nuts": 40,
	"Sunflower":   35,
	"Pulses":      30,
	"Bengal Gram": 30,
	"Jowar":       25,
}

// defaultRiskBase is used for crops missing from a table.
const defaultRiskBase = 45

func baseFor(table map[string]int, crop string) int {
	if v, ok := table[crop]; ok {
		return v
	}
	return defaultRiskBase
}
