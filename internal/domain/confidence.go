package domain

// ConfidenceLevel buckets a 0-100 trust score.
// high >= 80, medium 50-79, low < 50.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// LevelForConfidence maps a score to its bucket.
func LevelForConfidence(score int) ConfidenceLevel {
	switch {
	case score >= 80:
		return ConfidenceHigh
	case score >= 50:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// ConfidenceScore rates the trustworthiness of one input category.
type ConfidenceScore struct {
	Component       string          `json:"component"` // soil / weather / ml_prediction / overall
	ConfidenceScore int             `json:"confidence_score"`
	ConfidenceLevel ConfidenceLevel `json:"confidence_level"`
	Source          string          `json:"source"`
	ReliabilityNote string          `json:"reliability_note,omitempty"`
}

// ConfidenceReport combines the per-source scores with the weighted aggregate.
type ConfidenceReport struct {
	Soil         ConfidenceScore `json:"soil"`
	Weather      ConfidenceScore `json:"weather"`
	MLPrediction ConfidenceScore `json:"ml_prediction"`
	Overall      ConfidenceScore `json:"overall"`
	Weakest      string          `json:"weakest_component"`
}
