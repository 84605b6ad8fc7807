package mlmodel

import (
	"math"
	"strings"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/saitejamanchi/rythumitra/internal/domain"
	"github.com/saitejamanchi/rythumitra/internal/modules/catalog"
	"github.com/saitejamanchi/rythumitra/internal/modules/scoring"
)

const (
	// Soft inclusion threshold: crops at or above this confidence are kept.
	// Deliberately lower than the rule scorer's cutoff so a weak model
	// still produces a non-empty shortlist.
	minIncludeConfidence = 30
	maxRecommendations   = 5
)

// Engine scores crops with the pretrained classifier. It implements
// domain.RecommendationEngine alongside the rule-based scorer.
type Engine struct {
	artifact *Artifact
	catalog  *catalog.Service
	log      zerolog.Logger
}

// NewEngine creates an engine from a loaded artifact.
func NewEngine(artifact *Artifact, cat *catalog.Service, log zerolog.Logger) *Engine {
	return &Engine{
		artifact: artifact,
		catalog:  cat,
		log:      log.With().Str("component", "ml_engine").Logger(),
	}
}

// Load performs the startup capability check: it loads the artifact from dir
// and returns a ready engine, or an error when the model is unavailable.
func Load(dir string, cat *catalog.Service, log zerolog.Logger) (*Engine, error) {
	artifact, err := LoadArtifact(dir)
	if err != nil {
		return nil, err
	}
	log.Info().Str("dir", dir).Str("trained_at", artifact.TrainedAt).Msg("Suitability model loaded")
	return NewEngine(artifact, cat, log), nil
}

// ModelType identifies this engine in response payloads.
func (e *Engine) ModelType() string {
	return domain.ModelTypeMLTrained
}

// Recommend predicts a suitability probability for every catalog crop the
// model knows, keeping crops at or above the soft threshold.
func (e *Engine) Recommend(input domain.RecommendationInput) ([]domain.ScoredRecommendation, error) {
	var results []domain.ScoredRecommendation

	for _, profile := range e.catalog.All() {
		if !profile.SupportsSeason(input.Season) {
			continue
		}

		cropCode, known := e.artifact.EncodeCrop(profile.Name)
		if !known {
			continue
		}

		confidence := int(math.Round(e.predict(cropCode, input) * 100))
		if confidence < minIncludeConfidence {
			continue
		}

		// Same reason/warning generation as the rule scorer, but the
		// confidence comes from the model rather than the rule total.
		ann := scoring.Annotate(profile, input)
		results = append(results, domain.ScoredRecommendation{
			Crop:                     profile.Name,
			CropTe:                   profile.NameTe,
			Confidence:               confidence,
			YieldPotential:           profile.YieldPotential,
			RiskFactor:               profile.Risk,
			WaterNeeds:               profile.WaterNeeds,
			Reason:                   strings.Join(ann.Reasons, "; "),
			Warnings:                 ann.Warnings,
			FertilizerRecommendation: ann.FertilizerRecommendation,
			ForecastInsight:          ann.ForecastInsight,
		})
	}

	scoring.SortRecommendations(results)
	if len(results) > maxRecommendations {
		results = results[:maxRecommendations]
	}

	e.log.Debug().
		Str("season", string(input.Season)).
		Int("candidates", len(results)).
		Msg("Model scoring complete")

	return results, nil
}

// predict returns the suitable-class probability for one crop.
func (e *Engine) predict(cropCode int, input domain.RecommendationInput) float64 {
	features := []float64{
		float64(e.artifact.EncodeSoil(input.Soil.SoilType)),
		float64(e.artifact.EncodeSeason(string(input.Season))),
		float64(cropCode),
		input.Weather.TempC,
		input.Weather.Humidity,
		input.Soil.PH,
		input.Soil.N,
		input.Soil.P,
		input.Soil.K,
		float64(input.Weather.RainDays),
	}

	// Standard scaling with the fitted training statistics
	for i := range features {
		features[i] = (features[i] - e.artifact.ScalerMean[i]) / e.artifact.ScalerScale[i]
	}

	x := mat.NewVecDense(featureCount, features)
	w := mat.NewVecDense(featureCount, e.artifact.Coefficients)
	z := mat.Dot(w, x) + e.artifact.Intercept

	return sigmoid(z)
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
