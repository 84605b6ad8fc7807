// Package explain turns numeric risk output into farmer-facing text. Pure
// functions: deterministic, no state, no side effects. Short messages stay
// under 100 characters so they survive a single SMS segment.
package explain

import (
	"fmt"
	"strings"

	"github.com/saitejamanchi/rythumitra/internal/domain"
)

// maxShortLen keeps the short form inside one GSM-7 SMS segment with
// headroom for a sender prefix.
const maxShortLen = 100

// Explanation is the bilingual pair of summaries for one recommendation.
type Explanation struct {
	Short      string `json:"short"`       // <100 chars, SMS-safe
	ShortTe    string `json:"short_te"`    // Telugu short form
	Detailed   string `json:"detailed"`    // full reasoning
	DetailedTe string `json:"detailed_te"` // Telugu detailed form
}

// Risk wording per dominant component, English and Telugu.
var riskNames = map[string][2]string{
	"weather": {"weather", "వాతావరణం"},
	"market":  {"market price swings", "మార్కెట్ ధరల హెచ్చుతగ్గులు"},
	"pest":    {"pest pressure", "పురుగుల తాకిడి"},
	"cost":    {"input costs", "పెట్టుబడి ఖర్చులు"},
}

var lossBands = []struct {
	threshold int
	en        string
	te        string
}{
	{70, "high risk", "అధిక నష్టభయం"},
	{40, "moderate risk", "మోస్తరు నష్టభయం"},
	{0, "low risk", "తక్కువ నష్టభయం"},
}

func lossBand(loss int) (string, string) {
	for _, band := range lossBands {
		if loss >= band.threshold {
			return band.en, band.te
		}
	}
	return "low risk", "తక్కువ నష్టభయం"
}

// Summarize renders the bilingual explanation for one enriched
// recommendation. Recommendations without risk analysis get a
// confidence-only summary.
func Summarize(rec domain.ScoredRecommendation) Explanation {
	if rec.RiskAnalysis == nil {
		short := truncate(fmt.Sprintf("%s: %d%% match for your soil and season.", rec.Crop, rec.Confidence))
		return Explanation{
			Short:      short,
			ShortTe:    truncate(fmt.Sprintf("%s: మీ నేల, సీజన్‌కు %d%% సరిపోతుంది.", cropName(rec), rec.Confidence)),
			Detailed:   fmt.Sprintf("%s scored %d%% confidence. %s", rec.Crop, rec.Confidence, rec.Reason),
			DetailedTe: fmt.Sprintf("%s పంటకు %d%% నమ్మకం ఉంది.", cropName(rec), rec.Confidence),
		}
	}

	ra := rec.RiskAnalysis
	bandEn, bandTe := lossBand(ra.LossProbability)
	risk := riskNames[ra.DominantRisk]
	if risk[0] == "" {
		risk = [2]string{ra.DominantRisk, ra.DominantRisk}
	}

	short := truncate(fmt.Sprintf("%s: %s (%d%% loss chance). Watch %s.",
		rec.Crop, bandEn, ra.LossProbability, risk[0]))
	shortTe := truncate(fmt.Sprintf("%s: %s (%d%%). %s గమనించండి.",
		cropName(rec), bandTe, ra.LossProbability, risk[1]))

	return Explanation{
		Short:      short,
		ShortTe:    shortTe,
		Detailed:   detailedEN(rec),
		DetailedTe: detailedTE(rec),
	}
}

func detailedEN(rec domain.ScoredRecommendation) string {
	ra := rec.RiskAnalysis
	var b strings.Builder

	fmt.Fprintf(&b, "%s is rated %q with a suitability score of %d and an estimated loss probability of %d%%. ",
		rec.Crop, ra.DecisionGrade, ra.SuitabilityScore, ra.LossProbability)

	risk := riskNames[ra.DominantRisk]
	name := risk[0]
	if name == "" {
		name = ra.DominantRisk
	}
	fmt.Fprintf(&b, "The biggest concern is %s. ", name)

	if factors := dominantFactors(ra); len(factors) > 0 {
		b.WriteString(strings.Join(factors, ". "))
		b.WriteString(". ")
	}
	if rec.FertilizerRecommendation != "" {
		b.WriteString(rec.FertilizerRecommendation)
	}

	return strings.TrimSpace(b.String())
}

func detailedTE(rec domain.ScoredRecommendation) string {
	ra := rec.RiskAnalysis
	_, bandTe := lossBand(ra.LossProbability)
	risk := riskNames[ra.DominantRisk]
	name := risk[1]
	if name == "" {
		name = ra.DominantRisk
	}

	return fmt.Sprintf("%s పంటకు అనుకూలత స్కోరు %d, నష్టం అవకాశం %d%% (%s). ముఖ్యంగా %s జాగ్రత్త అవసరం.",
		cropName(rec), ra.SuitabilityScore, ra.LossProbability, bandTe, name)
}

// dominantFactors pulls the factor list belonging to the dominant component.
func dominantFactors(ra *domain.RiskAnalysis) []string {
	switch ra.DominantRisk {
	case "weather":
		return ra.RiskBreakdown.WeatherRisk.Factors
	case "market":
		return ra.RiskBreakdown.MarketRisk.Factors
	case "pest":
		return ra.RiskBreakdown.PestRisk.Factors
	case "cost":
		return ra.RiskBreakdown.CostRisk.Factors
	default:
		return nil
	}
}

// cropName prefers the Telugu crop name for Telugu text.
func cropName(rec domain.ScoredRecommendation) string {
	if rec.CropTe != "" {
		return rec.CropTe
	}
	return rec.Crop
}

// truncate enforces the SMS budget on rune boundaries.
func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxShortLen {
		return s
	}
	return string(runes[:maxShortLen-1]) + "…"
}
