package confidence

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/saitejamanchi/rythumitra/internal/domain"
)

func TestScoreSoil_SourceBases(t *testing.T) {
	scorer := NewScorer(zerolog.Nop())

	cases := []struct {
		source domain.SoilSource
		want   int
	}{
		{domain.SoilSourceSoilReport, 90},
		{domain.SoilSourceImage, 85},
		{domain.SoilSourceAIResearched, 75},
		{domain.SoilSourceDatabase, 70},
		{domain.SoilSourceUserSelected, 60},
		{domain.SoilSource("telepathy"), 35},
	}

	for _, tc := range cases {
		score := scorer.ScoreSoil(domain.SoilParams{SoilType: "Black Cotton", Source: tc.source})
		assert.Equal(t, tc.want, score.ConfidenceScore, "source %s", tc.source)
	}
}

func TestScoreWeather_ForecastDegradation(t *testing.T) {
	scorer := NewScorer(zerolog.Nop())

	nasa := scorer.ScoreWeather(domain.WeatherSnapshot{}, "nasa_power")
	assert.Equal(t, 92, nasa.ConfidenceScore)
	assert.Equal(t, domain.ConfidenceHigh, nasa.ConfidenceLevel)

	fresh := scorer.ScoreWeather(domain.WeatherSnapshot{ForecastHours: 72}, "forecast")
	assert.Equal(t, 70, fresh.ConfidenceScore)

	// 168h horizon: 96h beyond the fresh window = 4 full days = -20
	week := scorer.ScoreWeather(domain.WeatherSnapshot{ForecastHours: 168}, "forecast")
	assert.Equal(t, 50, week.ConfidenceScore)
	assert.NotEmpty(t, week.ReliabilityNote)

	// Degradation floors at 35 no matter the horizon
	far := scorer.ScoreWeather(domain.WeatherSnapshot{ForecastHours: 1000}, "forecast")
	assert.Equal(t, 35, far.ConfidenceScore)
}

func TestScoreMLPrediction(t *testing.T) {
	scorer := NewScorer(zerolog.Nop())

	trained := scorer.ScoreMLPrediction(domain.ModelTypeMLTrained, 80, 1.0)
	assert.Equal(t, 80, trained.ConfidenceScore)
	assert.Empty(t, trained.ReliabilityNote)

	ruleBased := scorer.ScoreMLPrediction(domain.ModelTypeRuleBased, 80, 1.0)
	assert.Equal(t, 64, ruleBased.ConfidenceScore) // 80 * 0.8
	assert.Contains(t, ruleBased.ReliabilityNote, "rule-based")

	partial := scorer.ScoreMLPrediction(domain.ModelTypeMLTrained, 80, 0.5)
	assert.Equal(t, 40, partial.ConfidenceScore)
	assert.NotEmpty(t, partial.ReliabilityNote)
}

func TestCompleteness(t *testing.T) {
	full := domain.RecommendationInput{
		Soil:    domain.SoilParams{SoilType: "Alluvial", PH: 6.8, N: 200, P: 50, K: 300},
		Weather: domain.WeatherSnapshot{TempC: 28, Humidity: 65, ForecastHours: 168},
	}
	assert.InDelta(t, 1.0, Completeness(full), 0.001)

	empty := domain.RecommendationInput{}
	assert.InDelta(t, 0.0, Completeness(empty), 0.001)

	partial := full
	partial.Soil.N = 0
	partial.Weather.ForecastHours = 0
	assert.InDelta(t, 4.0/6.0, Completeness(partial), 0.001)
}

// The aggregate is a convex combination: it must lie between the component
// min and max for any score triple.
func TestAggregate_ConvexCombination(t *testing.T) {
	scorer := NewScorer(zerolog.Nop())

	triples := [][3]int{
		{90, 92, 80}, {70, 35, 64}, {0, 0, 0}, {100, 100, 100},
		{35, 92, 10}, {60, 50, 95},
	}

	for _, tr := range triples {
		soil := domain.ConfidenceScore{Component: "soil", ConfidenceScore: tr[0]}
		weather := domain.ConfidenceScore{Component: "weather", ConfidenceScore: tr[1]}
		ml := domain.ConfidenceScore{Component: "ml_prediction", ConfidenceScore: tr[2]}

		report := scorer.Aggregate(soil, weather, ml)

		lo := min3(tr[0], tr[1], tr[2])
		hi := max3(tr[0], tr[1], tr[2])
		assert.GreaterOrEqual(t, report.Overall.ConfidenceScore, lo)
		assert.LessOrEqual(t, report.Overall.ConfidenceScore, hi)
	}
}

func TestAggregate_WeakestAndCaveat(t *testing.T) {
	scorer := NewScorer(zerolog.Nop())

	report := scorer.Aggregate(
		domain.ConfidenceScore{Component: "soil", ConfidenceScore: 70},
		domain.ConfidenceScore{Component: "weather", ConfidenceScore: 35},
		domain.ConfidenceScore{Component: "ml_prediction", ConfidenceScore: 80},
	)

	assert.Equal(t, "weather", report.Weakest)
	// 70*0.35 + 35*0.30 + 80*0.35 = 63
	assert.Equal(t, 63, report.Overall.ConfidenceScore)
	assert.Equal(t, domain.ConfidenceMedium, report.Overall.ConfidenceLevel)
	assert.Contains(t, report.Overall.ReliabilityNote, "weather")
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func max3(a, b, c int) int {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
