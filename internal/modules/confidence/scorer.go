// Package confidence rates how trustworthy each pipeline input is and folds
// the per-source scores into one aggregate. Scores are heuristics anchored on
// fixed per-source bases, not calibrated probabilities.
package confidence

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/saitejamanchi/rythumitra/internal/domain"
	"github.com/saitejamanchi/rythumitra/internal/utils"
)

// Aggregate weights: soil 35%, weather 30%, model 35%.
const (
	soilWeight    = 0.35
	weatherWeight = 0.30
	mlWeight      = 0.35
)

// Per-source soil trust bases. A lab soil report beats an image
// classification beats AI research beats the static district table.
var soilSourceBase = map[domain.SoilSource]int{
	domain.SoilSourceSoilReport:   90,
	domain.SoilSourceImage:        85,
	domain.SoilSourceAIResearched: 75,
	domain.SoilSourceDatabase:     70,
	domain.SoilSourceUserSelected: 60,
}

const defaultSoilBase = 35

// Weather source bases. NASA POWER is reanalysis data; forecasts degrade
// with horizon: -5 points per 24h beyond 72h, floored at 35.
const (
	weatherSourceNASAPower = "nasa_power"
	weatherSourceForecast  = "forecast"

	nasaPowerBase         = 92
	forecastBase          = 70
	forecastDegradeStep   = 5
	forecastFreshHorizonH = 72
	forecastFloor         = 35
)

// Rule-based predictions are discounted against the trained model.
const ruleBasedDiscount = 0.8

// Scorer produces per-source confidence scores and the weighted aggregate.
type Scorer struct {
	log zerolog.Logger
}

func NewScorer(log zerolog.Logger) *Scorer {
	return &Scorer{log: log.With().Str("component", "confidence").Logger()}
}

// ScoreSoil rates the soil record by its provenance.
func (s *Scorer) ScoreSoil(soil domain.SoilParams) domain.ConfidenceScore {
	base, ok := soilSourceBase[soil.Source]
	note := ""
	if !ok {
		base = defaultSoilBase
		note = "Soil data source unknown; treat nutrient values as indicative only"
	}
	if soil.Source == domain.SoilSourceUserSelected {
		note = "Soil type was self-reported; a soil test would improve accuracy"
	}

	return domain.ConfidenceScore{
		Component:       "soil",
		ConfidenceScore: base,
		ConfidenceLevel: domain.LevelForConfidence(base),
		Source:          string(soil.Source),
		ReliabilityNote: note,
	}
}

// ScoreWeather rates the weather snapshot by its source and, for forecasts,
// by how far out the horizon stretches.
func (s *Scorer) ScoreWeather(weather domain.WeatherSnapshot, source string) domain.ConfidenceScore {
	score := forecastBase
	note := ""

	switch source {
	case weatherSourceNASAPower:
		score = nasaPowerBase
	case weatherSourceForecast:
		if weather.ForecastHours > forecastFreshHorizonH {
			steps := (weather.ForecastHours - forecastFreshHorizonH) / 24
			score -= steps * forecastDegradeStep
			if score < forecastFloor {
				score = forecastFloor
			}
			note = fmt.Sprintf("Forecast reliability drops beyond 3 days (%dh horizon)", weather.ForecastHours)
		}
	default:
		score = forecastFloor
		note = "Weather source unknown"
	}

	return domain.ConfidenceScore{
		Component:       "weather",
		ConfidenceScore: score,
		ConfidenceLevel: domain.LevelForConfidence(score),
		Source:          source,
		ReliabilityNote: note,
	}
}

// ScoreMLPrediction rates the engine output. Trained-model confidence passes
// through raw; rule-based scores are discounted. Both scale by the
// data-completeness fraction so missing inputs drag trust down.
func (s *Scorer) ScoreMLPrediction(modelType string, rawConfidence int, completeness float64) domain.ConfidenceScore {
	completeness = utils.Clamp(completeness, 0, 1)

	score := float64(rawConfidence)
	note := ""
	if modelType != domain.ModelTypeMLTrained {
		score *= ruleBasedDiscount
		note = "Recommendation produced by rule-based scoring (model unavailable)"
	}
	score *= completeness
	if completeness < 1 && note == "" {
		note = "Some inputs were missing; prediction confidence reduced"
	}

	final := utils.ClampInt(int(math.Round(score)), 0, 100)
	return domain.ConfidenceScore{
		Component:       "ml_prediction",
		ConfidenceScore: final,
		ConfidenceLevel: domain.LevelForConfidence(final),
		Source:          modelType,
		ReliabilityNote: note,
	}
}

// Completeness reports the fraction of pipeline inputs that carry real data.
func Completeness(input domain.RecommendationInput) float64 {
	present, total := 0, 6

	if input.Soil.SoilType != "" {
		present++
	}
	if input.Soil.PH > 0 {
		present++
	}
	if input.Soil.N > 0 && input.Soil.P > 0 && input.Soil.K > 0 {
		present++
	}
	if input.Weather.TempC != 0 {
		present++
	}
	if input.Weather.Humidity > 0 {
		present++
	}
	if input.Weather.ForecastHours > 0 {
		present++
	}

	return float64(present) / float64(total)
}

// Aggregate folds the three component scores into the weighted overall score
// and names the weakest component. The overall is a convex combination, so
// it always lies between the component min and max.
func (s *Scorer) Aggregate(soil, weather, ml domain.ConfidenceScore) domain.ConfidenceReport {
	overall := float64(soil.ConfidenceScore)*soilWeight +
		float64(weather.ConfidenceScore)*weatherWeight +
		float64(ml.ConfidenceScore)*mlWeight
	overallScore := int(math.Round(overall))

	weakest := soil
	for _, c := range []domain.ConfidenceScore{weather, ml} {
		if c.ConfidenceScore < weakest.ConfidenceScore {
			weakest = c
		}
	}

	report := domain.ConfidenceReport{
		Soil:         soil,
		Weather:      weather,
		MLPrediction: ml,
		Overall: domain.ConfidenceScore{
			Component:       "overall",
			ConfidenceScore: overallScore,
			ConfidenceLevel: domain.LevelForConfidence(overallScore),
			Source:          "aggregate",
			ReliabilityNote: caveatFor(overallScore, weakest),
		},
		Weakest: weakest.Component,
	}

	s.log.Debug().
		Int("soil", soil.ConfidenceScore).
		Int("weather", weather.ConfidenceScore).
		Int("ml", ml.ConfidenceScore).
		Int("overall", overallScore).
		Str("weakest", weakest.Component).
		Msg("Confidence aggregated")

	return report
}

func caveatFor(overall int, weakest domain.ConfidenceScore) string {
	switch domain.LevelForConfidence(overall) {
	case domain.ConfidenceHigh:
		return "Recommendation is backed by reliable data"
	case domain.ConfidenceMedium:
		return fmt.Sprintf("Reasonably reliable; %s data is the weakest input", weakest.Component)
	default:
		return fmt.Sprintf("Treat with caution: %s data is unreliable", weakest.Component)
	}
}
