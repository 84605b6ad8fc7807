package advisory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/saitejamanchi/rythumitra/internal/clients/agmarknet"
	"github.com/saitejamanchi/rythumitra/internal/clients/nasapower"
	"github.com/saitejamanchi/rythumitra/internal/domain"
	"github.com/saitejamanchi/rythumitra/internal/events"
	"github.com/saitejamanchi/rythumitra/internal/modules/confidence"
	"github.com/saitejamanchi/rythumitra/internal/modules/explain"
	"github.com/saitejamanchi/rythumitra/internal/modules/risk"
	"github.com/saitejamanchi/rythumitra/internal/modules/soil"
)

// ErrInvalidInput marks request validation failures; the HTTP layer converts
// these to 400 instead of 500.
var ErrInvalidInput = errors.New("invalid input")

// WeatherProvider resolves the per-request weather snapshot.
type WeatherProvider interface {
	GetSnapshot(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error)
	GetClimatology(ctx context.Context, lat, lon float64) (*nasapower.Climatology, error)
}

// MarketProvider resolves mandi prices and trend annotations.
type MarketProvider interface {
	GetPrices(ctx context.Context, district string) ([]agmarknet.Price, error)
	TrendAnnotations(crops []string) map[string]string
}

// WeatherHistory reads the recorded daily weather series.
type WeatherHistory interface {
	GetWeatherDays(location string, limit int) ([]domain.WeatherSnapshot, error)
}

// districtCoords maps seeded districts to representative coordinates for
// requests that carry no lat/lon.
var districtCoords = map[string]struct{ lat, lon float64 }{
	"Guntur":        {16.306, 80.436},
	"Krishna":       {16.517, 80.619},
	"Prakasam":      {15.505, 80.049},
	"Kurnool":       {15.828, 78.037},
	"Anantapur":     {14.681, 77.600},
	"Warangal":      {17.978, 79.594},
	"Karimnagar":    {18.438, 79.128},
	"Nalgonda":      {17.054, 79.267},
	"East Godavari": {17.000, 81.800},
	"West Godavari": {16.715, 81.102},
	"Nizamabad":     {18.672, 78.094},
	"Khammam":       {17.247, 80.143},
}

var fallbackCoords = struct{ lat, lon float64 }{16.306, 80.436}

// defaultWeather is the degraded snapshot used when the forecast fetch
// fails: seasonal averages, tagged so confidence scoring can discount it.
var defaultWeather = domain.WeatherSnapshot{
	TempC: 29, Humidity: 65, RainDays: 3, AvgTemp: 29, TotalRainfallMM: 40,
	Risk: domain.LevelMedium,
}

// Service orchestrates the recommendation pipeline.
type Service struct {
	engine          domain.RecommendationEngine
	ruleEngine      domain.RecommendationEngine
	soil            *soil.Service
	weather         WeatherProvider
	market          MarketProvider
	weatherHistory  WeatherHistory
	simulator       *risk.Simulator
	confidence      *confidence.Scorer
	repo            *Repository
	bus             *events.Bus
	defaultDistrict string
	log             zerolog.Logger
}

// Deps bundles the service dependencies. engine is the startup-selected
// primary; ruleEngine is the always-available fallback. market,
// weatherHistory, repo and bus may be nil (the matching features degrade).
type Deps struct {
	Engine          domain.RecommendationEngine
	RuleEngine      domain.RecommendationEngine
	Soil            *soil.Service
	Weather         WeatherProvider
	Market          MarketProvider
	WeatherHistory  WeatherHistory
	Simulator       *risk.Simulator
	Confidence      *confidence.Scorer
	Repo            *Repository
	Bus             *events.Bus
	DefaultDistrict string
}

// NewService creates the advisory orchestrator.
func NewService(deps Deps, log zerolog.Logger) *Service {
	return &Service{
		engine:          deps.Engine,
		ruleEngine:      deps.RuleEngine,
		soil:            deps.Soil,
		weather:         deps.Weather,
		market:          deps.Market,
		weatherHistory:  deps.WeatherHistory,
		simulator:       deps.Simulator,
		confidence:      deps.Confidence,
		repo:            deps.Repo,
		bus:             deps.Bus,
		defaultDistrict: deps.DefaultDistrict,
		log:             log.With().Str("service", "advisory").Logger(),
	}
}

// SeasonForMonth maps the calendar to the cropping season: Kharif Jun-Oct,
// Rabi Nov-Feb, Zaid Mar-May.
func SeasonForMonth(m time.Month) domain.Season {
	switch {
	case m >= time.June && m <= time.October:
		return domain.SeasonKharif
	case m >= time.March && m <= time.May:
		return domain.SeasonZaid
	default:
		return domain.SeasonRabi
	}
}

func parseSeason(s string) (domain.Season, error) {
	switch s {
	case "":
		return SeasonForMonth(time.Now().Month()), nil
	case string(domain.SeasonKharif), string(domain.SeasonRabi), string(domain.SeasonZaid):
		return domain.Season(s), nil
	default:
		return "", fmt.Errorf("%w: unknown season %q", ErrInvalidInput, s)
	}
}

// Recommend runs the full pipeline for one request.
func (s *Service) Recommend(ctx context.Context, req Request) (*Response, error) {
	location := req.LocationName
	if location == "" {
		location = s.defaultDistrict
	}

	season, err := parseSeason(req.Season)
	if err != nil {
		return nil, err
	}

	soilInfo := s.soil.GetSoilInfo(ctx, location, req.Mandal)
	soilInfo, err = s.soil.ApplyOverrides(soilInfo, req.ManualSoilType, req.CustomNPK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	lat, lon := s.resolveCoords(req, location)

	weatherSource := "forecast"
	snapshot, err := s.weather.GetSnapshot(ctx, lat, lon)
	if err != nil {
		s.log.Warn().Err(err).Str("location", location).Msg("Forecast unavailable, using seasonal defaults")
		snapshot = defaultWeather
		weatherSource = ""
	}

	input := domain.RecommendationInput{Soil: soilInfo.Params, Season: season, Weather: snapshot}
	recs, modelType := s.score(input)

	enrichment, trends := s.enrich(ctx, location, lat, lon, recs)

	if req.includeRisk() && s.simulator != nil {
		recs = s.simulator.SimulateDecision(recs, risk.Context{
			Weather:      snapshot,
			Soil:         soilInfo.Params,
			MarketTrends: trends,
		})
	}
	if !req.showAlternatives() && len(recs) > 1 {
		recs = recs[:1]
	}

	topConfidence := 0
	if len(recs) > 0 {
		topConfidence = recs[0].Confidence
	}
	report := s.confidence.Aggregate(
		s.confidence.ScoreSoil(soilInfo.Params),
		s.confidence.ScoreWeather(snapshot, weatherSource),
		s.confidence.ScoreMLPrediction(modelType, topConfidence, confidence.Completeness(input)),
	)

	response := &Response{
		Location:  location,
		ModelType: modelType,
		Context: Context{
			Season:     season,
			SoilType:   soilInfo.Params.SoilType,
			SoilSource: soilInfo.Params.Source,
			SoilParams: soilInfo.Params,
			Weather:    snapshot,
			Confidence: report,
		},
		Recommendations: make([]Recommendation, 0, len(recs)),
		Enrichment:      enrichment,
	}
	for _, rec := range recs {
		response.Recommendations = append(response.Recommendations, Recommendation{
			ScoredRecommendation: rec,
			Explanation:          explain.Summarize(rec),
		})
	}

	s.persist(response)

	s.log.Info().
		Str("location", location).
		Str("season", string(season)).
		Str("model", modelType).
		Int("recommendations", len(recs)).
		Msg("Advisory generated")

	return response, nil
}

// score runs the primary engine with the per-request fallback: a trained
// engine that errors or returns an empty set hands over to rule scoring.
func (s *Service) score(input domain.RecommendationInput) ([]domain.ScoredRecommendation, string) {
	recs, err := s.engine.Recommend(input)
	if err == nil && len(recs) > 0 {
		return recs, s.engine.ModelType()
	}
	if s.engine.ModelType() == domain.ModelTypeRuleBased {
		return recs, domain.ModelTypeRuleBased
	}

	if err != nil {
		s.log.Warn().Err(err).Msg("Model scoring failed, falling back to rule-based scorer")
	} else {
		s.log.Info().Msg("Model returned no candidates, falling back to rule-based scorer")
	}

	recs, err = s.ruleEngine.Recommend(input)
	if err != nil {
		s.log.Error().Err(err).Msg("Rule-based fallback failed")
		return nil, domain.ModelTypeRuleBased
	}
	return recs, domain.ModelTypeRuleBased
}

// enrich runs the bounded fan-out for the three read-only extras and
// returns the enrichment block plus trend notes for the simulator.
func (s *Service) enrich(ctx context.Context, location string, lat, lon float64, recs []domain.ScoredRecommendation) (*Enrichment, map[string]string) {
	enrichment := &Enrichment{}
	var trends map[string]string

	crops := make([]string, len(recs))
	for i, rec := range recs {
		crops[i] = rec.Crop
	}

	var tasks []enrichmentTask
	if s.market != nil {
		tasks = append(tasks, enrichmentTask{name: "market_prices", run: func(taskCtx context.Context) error {
			prices, err := s.market.GetPrices(taskCtx, location)
			if err != nil {
				return err
			}
			enrichment.MarketPrices = prices
			trends = s.market.TrendAnnotations(crops)
			return nil
		}})
	}
	if s.weather != nil {
		tasks = append(tasks, enrichmentTask{name: "climatology", run: func(taskCtx context.Context) error {
			clim, err := s.weather.GetClimatology(taskCtx, lat, lon)
			if err != nil {
				return err
			}
			enrichment.Climatology = clim
			return nil
		}})
	}
	if s.weatherHistory != nil {
		tasks = append(tasks, enrichmentTask{name: "weather_history", run: func(taskCtx context.Context) error {
			days, err := s.weatherHistory.GetWeatherDays(location, 7)
			if err != nil {
				return err
			}
			enrichment.WeatherWeek = days
			return nil
		}})
	}

	if len(tasks) > 0 {
		runFanOut(ctx, s.log, tasks)
	}

	if enrichment.MarketPrices == nil && enrichment.Climatology == nil && enrichment.WeatherWeek == nil {
		return nil, trends
	}
	return enrichment, trends
}

func (s *Service) resolveCoords(req Request, location string) (float64, float64) {
	if req.Lat != nil && req.Lon != nil {
		return *req.Lat, *req.Lon
	}
	return CoordsForDistrict(location)
}

// CoordsForDistrict returns representative coordinates for a seeded district,
// falling back to the Guntur reference point for unknown names.
func CoordsForDistrict(district string) (float64, float64) {
	if coords, ok := districtCoords[district]; ok {
		return coords.lat, coords.lon
	}
	return fallbackCoords.lat, fallbackCoords.lon
}

// persist stores the advisory and publishes the created event. Failures are
// logged; the response has already been computed and is still returned.
func (s *Service) persist(response *Response) {
	if s.repo == nil {
		return
	}

	topCrop, topConfidence := "", 0
	if len(response.Recommendations) > 0 {
		topCrop = response.Recommendations[0].Crop
		topConfidence = response.Recommendations[0].Confidence
	}

	payload, err := json.Marshal(response)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to marshal advisory payload")
		return
	}

	id, err := s.repo.Save(StoredAdvisory{
		Location:     response.Location,
		Season:       string(response.Context.Season),
		SoilType:     response.Context.SoilType,
		SoilSource:   string(response.Context.SoilSource),
		ModelType:    response.ModelType,
		TopCrop:      topCrop,
		Confidence:   topConfidence,
		OverallTrust: response.Context.Confidence.Overall.ConfidenceScore,
		Payload:      string(payload),
	})
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to persist advisory")
		return
	}
	response.AdvisoryID = id

	if s.bus != nil {
		s.bus.Publish(events.TypeAdvisoryCreated, map[string]interface{}{
			"advisory_id": id,
			"location":    response.Location,
			"top_crop":    topCrop,
			"model_type":  response.ModelType,
		})
	}
}
