// Package scoring implements the rule-based crop suitability scorer.
// Scores start at 100 and accumulate additive/subtractive adjustments from
// soil match, pH, temperature and rainfall alignment. Deterministic: the
// same inputs always produce the same scores and ordering.
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/saitejamanchi/rythumitra/internal/domain"
	"github.com/saitejamanchi/rythumitra/internal/modules/catalog"
	"github.com/saitejamanchi/rythumitra/internal/utils"
)

const (
	// Inclusion cutoff: a crop enters the result set only above this score.
	minIncludeScore = 40
	// Result set cap after sorting.
	maxRecommendations = 5
)

// RuleBasedScorer scores crops against soil, season and weather context.
type RuleBasedScorer struct {
	catalog *catalog.Service
	log     zerolog.Logger
}

// NewRuleBasedScorer creates a new rule-based scorer
func NewRuleBasedScorer(cat *catalog.Service, log zerolog.Logger) *RuleBasedScorer {
	return &RuleBasedScorer{
		catalog: cat,
		log:     log.With().Str("component", "rule_scorer").Logger(),
	}
}

// ModelType identifies this engine in response payloads.
func (s *RuleBasedScorer) ModelType() string {
	return domain.ModelTypeRuleBased
}

// Recommend scores every catalog crop for the input and returns the top
// candidates sorted by confidence, yield potential and risk.
func (s *RuleBasedScorer) Recommend(input domain.RecommendationInput) ([]domain.ScoredRecommendation, error) {
	var results []domain.ScoredRecommendation

	for _, profile := range s.catalog.All() {
		rec, ok := s.ScoreCrop(profile, input)
		if !ok {
			continue
		}
		results = append(results, rec)
	}

	SortRecommendations(results)
	if len(results) > maxRecommendations {
		results = results[:maxRecommendations]
	}

	s.log.Debug().
		Str("season", string(input.Season)).
		Str("soil", input.Soil.SoilType).
		Int("candidates", len(results)).
		Msg("Rule-based scoring complete")

	return results, nil
}

// ScoreCrop scores a single crop profile. Returns false when the crop is
// excluded (wrong season or score at or below the inclusion cutoff).
func (s *RuleBasedScorer) ScoreCrop(profile domain.CropProfile, input domain.RecommendationInput) (domain.ScoredRecommendation, bool) {
	if !profile.SupportsSeason(input.Season) {
		return domain.ScoredRecommendation{}, false
	}

	score := 100
	ann := Annotate(profile, input)
	score += ann.ScoreDelta

	if score <= minIncludeScore {
		return domain.ScoredRecommendation{}, false
	}

	rec := domain.ScoredRecommendation{
		Crop:                     profile.Name,
		CropTe:                   profile.NameTe,
		Confidence:               utils.ClampInt(score, 0, 100),
		YieldPotential:           profile.YieldPotential,
		RiskFactor:               profile.Risk,
		WaterNeeds:               profile.WaterNeeds,
		Reason:                   strings.Join(ann.Reasons, "; "),
		Warnings:                 ann.Warnings,
		FertilizerRecommendation: ann.FertilizerRecommendation,
		ForecastInsight:          ann.ForecastInsight,
	}

	return rec, true
}

// Annotations carries the score adjustments plus the human-readable output
// of a scoring pass. The ML engine reuses this with its own confidence.
type Annotations struct {
	ScoreDelta               int
	SoilMatched              bool
	Reasons                  []string
	Warnings                 []string
	FertilizerRecommendation string
	ForecastInsight          string
}

// Annotate computes all rule adjustments for one crop against the input.
func Annotate(profile domain.CropProfile, input domain.RecommendationInput) Annotations {
	var ann Annotations
	soil := input.Soil
	weather := input.Weather

	// Soil type match
	aliases := catalog.SoilAliases(soil.SoilType)
	if profile.SuitsSoil(aliases) {
		ann.SoilMatched = true
		ann.Reasons = append(ann.Reasons, fmt.Sprintf("Grows well in %s soil", soil.SoilType))
		// Researched soil data that agrees with the catalog earns extra trust
		if soil.Source == domain.SoilSourceAIResearched {
			ann.ScoreDelta += 5
		}
	} else {
		ann.ScoreDelta -= 25
		ann.Warnings = append(ann.Warnings, fmt.Sprintf("%s soil is not ideal for %s", soil.SoilType, profile.Name))
	}

	// pH range
	if soil.PH >= profile.PHMin && soil.PH <= profile.PHMax {
		ann.Reasons = append(ann.Reasons, fmt.Sprintf("Soil pH %.1f is in the ideal range", soil.PH))
	} else {
		ann.ScoreDelta -= 20
		delta := profile.PHMin - soil.PH
		direction := "low"
		if soil.PH > profile.PHMax {
			delta = soil.PH - profile.PHMax
			direction = "high"
		}
		ann.Warnings = append(ann.Warnings,
			fmt.Sprintf("Soil pH %.1f is %.1f units too %s for %s", soil.PH, delta, direction, profile.Name))
	}

	// Temperature window with a 5 degree tolerance band
	lower := profile.MinTemp - 5
	upper := profile.MaxTemp + 5
	if weather.TempC < lower || weather.TempC > upper {
		ann.ScoreDelta -= 30
		ann.Warnings = append(ann.Warnings,
			fmt.Sprintf("Current temperature %.0f°C is outside the %s range (%.0f-%.0f°C)",
				weather.TempC, profile.Name, profile.MinTemp, profile.MaxTemp))
		// Forecast trend moving even further out of range
		if (weather.TempC < lower && weather.AvgTemp < weather.TempC) ||
			(weather.TempC > upper && weather.AvgTemp > weather.TempC) {
			ann.ScoreDelta -= 10
		}
	}

	// Rainfall alignment with water needs
	switch {
	case profile.WaterNeeds == domain.LevelHigh && weather.RainDays >= 3:
		ann.ScoreDelta += 10
		ann.ForecastInsight = fmt.Sprintf("Good rainfall expected (%d rain days) matches high water needs", weather.RainDays)
	case profile.WaterNeeds == domain.LevelLow && weather.RainDays >= 4:
		ann.ScoreDelta -= 15
		ann.Warnings = append(ann.Warnings, fmt.Sprintf("Heavy rainfall forecast (%d days) may harm this low-water crop", weather.RainDays))
	case profile.WaterNeeds == domain.LevelHigh && weather.RainDays == 0:
		// No rain in the forecast: flag irrigation but do not adjust the score
		ann.Warnings = append(ann.Warnings, "No rain forecast; irrigation will be needed")
	}

	// Nutrient deficiency tips (advisory only, never scored)
	var tips []string
	if soil.N < 150 && profile.NNeeds == domain.LevelHigh {
		tips = append(tips, "apply nitrogen (urea) before sowing")
	}
	if soil.P < 30 && profile.PNeeds == domain.LevelHigh {
		tips = append(tips, "apply phosphorus (DAP)")
	}
	if soil.K < 150 && profile.KNeeds == domain.LevelHigh {
		tips = append(tips, "apply potash (MOP)")
	}
	if len(tips) > 0 {
		ann.FertilizerRecommendation = "Soil is short of nutrients: " + strings.Join(tips, ", ")
	}

	// Nitrogen fixers thrive on nitrogen-poor soils
	if catalog.NitrogenFixers[profile.Name] && soil.N < 120 {
		ann.ScoreDelta += 20
		ann.Reasons = append(ann.Reasons, "Fixes nitrogen, improving this nitrogen-poor soil")
	}

	return ann
}

// SortRecommendations orders by confidence descending, breaking ties by
// high yield potential first, then by low risk.
func SortRecommendations(recs []domain.ScoredRecommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Confidence != recs[j].Confidence {
			return recs[i].Confidence > recs[j].Confidence
		}
		iYield := recs[i].YieldPotential == domain.LevelHigh
		jYield := recs[j].YieldPotential == domain.LevelHigh
		if iYield != jYield {
			return iYield
		}
		iLowRisk := recs[i].RiskFactor == domain.LevelLow
		jLowRisk := recs[j].RiskFactor == domain.LevelLow
		if iLowRisk != jLowRisk {
			return iLowRisk
		}
		return false
	})
}
