// Package mlmodel wraps a pretrained crop suitability classifier. The
// artifact (label encoders, feature scaler, logistic regression weights) is
// exported by the offline training job as JSON and loaded once at startup.
// When the artifact is missing or malformed the application falls back to
// the rule-based scorer; that decision is made once, at wiring time.
package mlmodel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ArtifactFilename is the expected model artifact name inside the model dir.
const ArtifactFilename = "crop_suitability_v2.json"

// featureCount is the fixed width of the classifier input vector:
// soil, season, crop, temp, humidity, ph, n, p, k, rain_days.
const featureCount = 10

// Artifact holds the deserialized model.
type Artifact struct {
	SoilEncoder   map[string]int `json:"soil_encoder"`
	SeasonEncoder map[string]int `json:"season_encoder"`
	CropEncoder   map[string]int `json:"crop_encoder"`
	ScalerMean    []float64      `json:"scaler_mean"`
	ScalerScale   []float64      `json:"scaler_scale"`
	Coefficients  []float64      `json:"coefficients"`
	Intercept     float64        `json:"intercept"`
	TrainedAt     string         `json:"trained_at,omitempty"`
}

// LoadArtifact reads and validates the model artifact from dir.
func LoadArtifact(dir string) (*Artifact, error) {
	path := filepath.Join(dir, ArtifactFilename)

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model artifact unavailable at %s: %w", path, err)
	}

	var artifact Artifact
	if err := json.Unmarshal(content, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact: %w", err)
	}

	if err := artifact.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact: %w", err)
	}

	return &artifact, nil
}

// Validate checks structural consistency of the artifact.
func (a *Artifact) Validate() error {
	if len(a.Coefficients) != featureCount {
		return fmt.Errorf("expected %d coefficients, got %d", featureCount, len(a.Coefficients))
	}
	if len(a.ScalerMean) != featureCount || len(a.ScalerScale) != featureCount {
		return fmt.Errorf("scaler dimensions do not match feature count %d", featureCount)
	}
	for i, s := range a.ScalerScale {
		if s == 0 {
			return fmt.Errorf("scaler scale[%d] is zero", i)
		}
	}
	if len(a.CropEncoder) == 0 {
		return fmt.Errorf("crop encoder is empty")
	}
	return nil
}

// EncodeSoil returns the label code for a soil type.
// Unknown values map to the fallback code 0.
func (a *Artifact) EncodeSoil(soilType string) int {
	if code, ok := a.SoilEncoder[soilType]; ok {
		return code
	}
	return 0
}

// EncodeSeason returns the label code for a season.
// Unknown values map to the fallback code 0.
func (a *Artifact) EncodeSeason(season string) int {
	if code, ok := a.SeasonEncoder[season]; ok {
		return code
	}
	return 0
}

// EncodeCrop returns the label code for a crop and whether the crop is known
// to the model. Unknown crops are excluded from prediction entirely.
func (a *Artifact) EncodeCrop(crop string) (int, bool) {
	code, ok := a.CropEncoder[crop]
	return code, ok
}
