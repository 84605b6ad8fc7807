package explain

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/saitejamanchi/rythumitra/internal/domain"
)

func riskyRec() domain.ScoredRecommendation {
	return domain.ScoredRecommendation{
		Crop:       "Cotton",
		CropTe:     "పత్తి",
		Confidence: 85,
		RiskAnalysis: &domain.RiskAnalysis{
			LossProbability:  55,
			DominantRisk:     "market",
			SuitabilityScore: 61,
			DecisionGrade:    "Best Option",
			RiskBreakdown: domain.RiskBreakdown{
				MarketRisk: domain.RiskComponent{
					Score:   75,
					Level:   domain.LevelHigh,
					Factors: []string{"Historical price volatility for Cotton"},
				},
			},
		},
	}
}

func TestSummarize_ShortFitsSMS(t *testing.T) {
	// Long crop names must still fit the single-segment budget
	rec := riskyRec()
	rec.Crop = strings.Repeat("Longname", 20)

	out := Summarize(rec)
	assert.LessOrEqual(t, utf8.RuneCountInString(out.Short), 100)
	assert.LessOrEqual(t, utf8.RuneCountInString(out.ShortTe), 100)
}

func TestSummarize_Deterministic(t *testing.T) {
	rec := riskyRec()
	assert.Equal(t, Summarize(rec), Summarize(rec))
}

func TestSummarize_DominantRiskNamed(t *testing.T) {
	out := Summarize(riskyRec())

	assert.Contains(t, out.Short, "market")
	assert.Contains(t, out.Detailed, "market price swings")
	assert.Contains(t, out.Detailed, "Best Option")
	assert.Contains(t, out.Detailed, "Historical price volatility")
}

func TestSummarize_TeluguUsesNativeCropName(t *testing.T) {
	out := Summarize(riskyRec())

	assert.Contains(t, out.ShortTe, "పత్తి")
	assert.Contains(t, out.DetailedTe, "పత్తి")
	assert.NotContains(t, out.ShortTe, "Cotton")
}

func TestSummarize_LossBands(t *testing.T) {
	rec := riskyRec()

	rec.RiskAnalysis.LossProbability = 75
	assert.Contains(t, Summarize(rec).Short, "high risk")

	rec.RiskAnalysis.LossProbability = 55
	assert.Contains(t, Summarize(rec).Short, "moderate risk")

	rec.RiskAnalysis.LossProbability = 20
	assert.Contains(t, Summarize(rec).Short, "low risk")
}

func TestSummarize_WithoutRiskAnalysis(t *testing.T) {
	rec := riskyRec()
	rec.RiskAnalysis = nil
	rec.Reason = "Black Cotton soil is ideal"

	out := Summarize(rec)
	assert.Contains(t, out.Short, "85%")
	assert.Contains(t, out.Detailed, "Black Cotton soil is ideal")
	assert.LessOrEqual(t, utf8.RuneCountInString(out.Short), 100)
}
