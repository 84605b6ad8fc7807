package advisory

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/saitejamanchi/rythumitra/internal/clients/agmarknet"
	"github.com/saitejamanchi/rythumitra/internal/clients/nasapower"
	"github.com/saitejamanchi/rythumitra/internal/domain"
	"github.com/saitejamanchi/rythumitra/internal/events"
	"github.com/saitejamanchi/rythumitra/internal/modules/catalog"
	"github.com/saitejamanchi/rythumitra/internal/modules/confidence"
	"github.com/saitejamanchi/rythumitra/internal/modules/risk"
	"github.com/saitejamanchi/rythumitra/internal/modules/soil"
	_ "modernc.org/sqlite"
)

func newTestDBs(t *testing.T) (*catalog.Repository, *Repository) {
	t.Helper()

	db, err := sql.Open("sqlite", "file:advisory_test?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS crop_profiles (
			name TEXT PRIMARY KEY, name_te TEXT NOT NULL DEFAULT '',
			seasons TEXT NOT NULL, soil_suitability TEXT NOT NULL,
			ph_min REAL NOT NULL, ph_max REAL NOT NULL,
			min_temp REAL NOT NULL, max_temp REAL NOT NULL,
			water_needs TEXT NOT NULL, yield_potential TEXT NOT NULL, risk TEXT NOT NULL,
			n_needs TEXT NOT NULL DEFAULT 'Medium',
			p_needs TEXT NOT NULL DEFAULT 'Medium',
			k_needs TEXT NOT NULL DEFAULT 'Medium'
		);
		CREATE TABLE IF NOT EXISTS soil_zones (
			district TEXT NOT NULL, mandal TEXT NOT NULL DEFAULT '',
			soil_type TEXT NOT NULL, ph REAL NOT NULL,
			n REAL NOT NULL, p REAL NOT NULL, k REAL NOT NULL,
			PRIMARY KEY (district, mandal)
		);
		CREATE TABLE IF NOT EXISTS advisories (
			uuid TEXT PRIMARY KEY, location TEXT NOT NULL, season TEXT NOT NULL,
			soil_type TEXT NOT NULL, soil_source TEXT NOT NULL,
			model_type TEXT NOT NULL, top_crop TEXT NOT NULL,
			confidence INTEGER NOT NULL, overall_trust INTEGER NOT NULL,
			payload TEXT NOT NULL, created_at INTEGER NOT NULL
		);`)
	require.NoError(t, err)

	catRepo := catalog.NewRepository(db, zerolog.Nop())
	require.NoError(t, catRepo.SyncFromBuiltin())
	return catRepo, NewRepository(db, zerolog.Nop())
}

type fakeEngine struct {
	modelType string
	recs      []domain.ScoredRecommendation
	err       error
}

func (f *fakeEngine) Recommend(input domain.RecommendationInput) ([]domain.ScoredRecommendation, error) {
	return f.recs, f.err
}

func (f *fakeEngine) ModelType() string { return f.modelType }

type fakeWeather struct {
	snapshot domain.WeatherSnapshot
	snapErr  error
	climErr  error
}

func (f *fakeWeather) GetSnapshot(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error) {
	return f.snapshot, f.snapErr
}

func (f *fakeWeather) GetClimatology(ctx context.Context, lat, lon float64) (*nasapower.Climatology, error) {
	if f.climErr != nil {
		return nil, f.climErr
	}
	return &nasapower.Climatology{AvgTempC: 28.5, DaysCovered: 30}, nil
}

type fakeMarket struct {
	prices []agmarknet.Price
	err    error
	trends map[string]string
}

func (f *fakeMarket) GetPrices(ctx context.Context, district string) ([]agmarknet.Price, error) {
	return f.prices, f.err
}

func (f *fakeMarket) TrendAnnotations(crops []string) map[string]string { return f.trends }

func cottonRecs() []domain.ScoredRecommendation {
	return []domain.ScoredRecommendation{
		{Crop: "Cotton", Confidence: 88, YieldPotential: domain.LevelHigh, WaterNeeds: domain.LevelMedium, RiskFactor: domain.LevelMedium},
		{Crop: "Maize", Confidence: 72, YieldPotential: domain.LevelMedium, WaterNeeds: domain.LevelMedium, RiskFactor: domain.LevelLow},
	}
}

func newTestService(t *testing.T, engine domain.RecommendationEngine, weatherStub WeatherProvider, marketStub MarketProvider) (*Service, *Repository, *events.Bus) {
	t.Helper()

	catRepo, advRepo := newTestDBs(t)
	bus := events.NewBus(zerolog.Nop())

	svc := NewService(Deps{
		Engine:          engine,
		RuleEngine:      &fakeEngine{modelType: domain.ModelTypeRuleBased, recs: cottonRecs()},
		Soil:            soil.NewService(catRepo, nil, zerolog.Nop()),
		Weather:         weatherStub,
		Market:          marketStub,
		Simulator:       risk.NewSimulator(zerolog.Nop()),
		Confidence:      confidence.NewScorer(zerolog.Nop()),
		Repo:            advRepo,
		Bus:             bus,
		DefaultDistrict: "Guntur",
	}, zerolog.Nop())

	return svc, advRepo, bus
}

func kharifWeather() domain.WeatherSnapshot {
	return domain.WeatherSnapshot{
		TempC: 28, Humidity: 70, RainDays: 4, AvgTemp: 28,
		TotalRainfallMM: 60, Risk: domain.LevelLow, ForecastHours: 168,
	}
}

func TestRecommend_FullPipeline(t *testing.T) {
	engine := &fakeEngine{modelType: domain.ModelTypeMLTrained, recs: cottonRecs()}
	svc, repo, bus := newTestService(t, engine, &fakeWeather{snapshot: kharifWeather()}, &fakeMarket{
		prices: []agmarknet.Price{{Commodity: "Cotton", ModalPrice: 7200}},
		trends: map[string]string{"Cotton": "Mandi prices trending up"},
	})

	eventCh, cancel := bus.Subscribe()
	defer cancel()

	resp, err := svc.Recommend(context.Background(), Request{LocationName: "Guntur", Season: "Kharif"})
	require.NoError(t, err)

	assert.Equal(t, domain.ModelTypeMLTrained, resp.ModelType)
	assert.Equal(t, domain.SeasonKharif, resp.Context.Season)
	assert.Equal(t, "Black Cotton", resp.Context.SoilType)
	assert.NotEmpty(t, resp.AdvisoryID)
	require.Len(t, resp.Recommendations, 2)

	top := resp.Recommendations[0]
	require.NotNil(t, top.RiskAnalysis)
	assert.Equal(t, "Best Option", top.RiskAnalysis.DecisionGrade)
	assert.NotEmpty(t, top.Explanation.Short)
	assert.NotEmpty(t, top.Explanation.ShortTe)

	require.NotNil(t, resp.Enrichment)
	assert.Len(t, resp.Enrichment.MarketPrices, 1)

	// Trend note flows into the market risk factors
	cotton := findRec(t, resp, "Cotton")
	assert.Contains(t, cotton.RiskAnalysis.RiskBreakdown.MarketRisk.Factors, "Mandi prices trending up")

	// Persisted and announced
	stored, err := repo.GetRecent(5)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, resp.AdvisoryID, stored[0].UUID)

	select {
	case event := <-eventCh:
		assert.Equal(t, events.TypeAdvisoryCreated, event.Type)
	default:
		t.Fatal("expected an advisory.created event")
	}
}

func findRec(t *testing.T, resp *Response, crop string) Recommendation {
	t.Helper()
	for _, rec := range resp.Recommendations {
		if rec.Crop == crop {
			return rec
		}
	}
	t.Fatalf("crop %s not in response", crop)
	return Recommendation{}
}

func TestRecommend_FallbackOnEmptyModelOutput(t *testing.T) {
	engine := &fakeEngine{modelType: domain.ModelTypeMLTrained, recs: nil}
	svc, _, _ := newTestService(t, engine, &fakeWeather{snapshot: kharifWeather()}, nil)

	resp, err := svc.Recommend(context.Background(), Request{LocationName: "Guntur"})
	require.NoError(t, err)

	assert.Equal(t, domain.ModelTypeRuleBased, resp.ModelType)
	assert.NotEmpty(t, resp.Recommendations)
}

func TestRecommend_FallbackOnModelError(t *testing.T) {
	engine := &fakeEngine{modelType: domain.ModelTypeMLTrained, err: fmt.Errorf("artifact corrupt")}
	svc, _, _ := newTestService(t, engine, &fakeWeather{snapshot: kharifWeather()}, nil)

	resp, err := svc.Recommend(context.Background(), Request{LocationName: "Guntur"})
	require.NoError(t, err)
	assert.Equal(t, domain.ModelTypeRuleBased, resp.ModelType)
}

func TestRecommend_InvalidSeason(t *testing.T) {
	svc, _, _ := newTestService(t,
		&fakeEngine{modelType: domain.ModelTypeMLTrained, recs: cottonRecs()},
		&fakeWeather{snapshot: kharifWeather()}, nil)

	_, err := svc.Recommend(context.Background(), Request{Season: "Monsoon"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRecommend_InvalidCustomNPK(t *testing.T) {
	svc, _, _ := newTestService(t,
		&fakeEngine{modelType: domain.ModelTypeMLTrained, recs: cottonRecs()},
		&fakeWeather{snapshot: kharifWeather()}, nil)

	ph := 12.0
	_, err := svc.Recommend(context.Background(), Request{
		LocationName: "Guntur",
		CustomNPK:    &soil.CustomNPK{PH: &ph},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRecommend_WeatherFailureDegrades(t *testing.T) {
	svc, _, _ := newTestService(t,
		&fakeEngine{modelType: domain.ModelTypeMLTrained, recs: cottonRecs()},
		&fakeWeather{snapErr: fmt.Errorf("forecast service down")}, nil)

	resp, err := svc.Recommend(context.Background(), Request{LocationName: "Guntur", Season: "Kharif"})
	require.NoError(t, err)

	// Seasonal default weather carries the request; confidence marks the
	// weather component as the unreliable one
	assert.Equal(t, defaultWeather.TempC, resp.Context.Weather.TempC)
	assert.Equal(t, "weather", resp.Context.Confidence.Weakest)
	assert.Equal(t, 35, resp.Context.Confidence.Weather.ConfidenceScore)
}

func TestRecommend_EnrichmentFailureOmitted(t *testing.T) {
	svc, _, _ := newTestService(t,
		&fakeEngine{modelType: domain.ModelTypeMLTrained, recs: cottonRecs()},
		&fakeWeather{snapshot: kharifWeather(), climErr: fmt.Errorf("nasa down")},
		&fakeMarket{err: fmt.Errorf("agmarknet down")})

	resp, err := svc.Recommend(context.Background(), Request{LocationName: "Guntur", Season: "Kharif"})
	require.NoError(t, err, "enrichment failures must never fail the request")
	assert.Nil(t, resp.Enrichment)
	assert.NotEmpty(t, resp.Recommendations)
}

func TestRecommend_HideAlternatives(t *testing.T) {
	hide := false
	svc, _, _ := newTestService(t,
		&fakeEngine{modelType: domain.ModelTypeMLTrained, recs: cottonRecs()},
		&fakeWeather{snapshot: kharifWeather()}, nil)

	resp, err := svc.Recommend(context.Background(), Request{
		LocationName:     "Guntur",
		Season:           "Kharif",
		ShowAlternatives: &hide,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Recommendations, 1)
}

func TestRecommend_SkipRiskAnalysis(t *testing.T) {
	skip := false
	svc, _, _ := newTestService(t,
		&fakeEngine{modelType: domain.ModelTypeMLTrained, recs: cottonRecs()},
		&fakeWeather{snapshot: kharifWeather()}, nil)

	resp, err := svc.Recommend(context.Background(), Request{
		LocationName:        "Guntur",
		Season:              "Kharif",
		IncludeRiskAnalysis: &skip,
	})
	require.NoError(t, err)
	for _, rec := range resp.Recommendations {
		assert.Nil(t, rec.RiskAnalysis)
	}
}

func TestRecommend_DefaultsToConfiguredDistrict(t *testing.T) {
	svc, _, _ := newTestService(t,
		&fakeEngine{modelType: domain.ModelTypeMLTrained, recs: cottonRecs()},
		&fakeWeather{snapshot: kharifWeather()}, nil)

	resp, err := svc.Recommend(context.Background(), Request{Season: "Kharif"})
	require.NoError(t, err)
	assert.Equal(t, "Guntur", resp.Location)
}

func TestSeasonForMonth(t *testing.T) {
	assert.Equal(t, domain.SeasonKharif, SeasonForMonth(time.July))
	assert.Equal(t, domain.SeasonKharif, SeasonForMonth(time.October))
	assert.Equal(t, domain.SeasonRabi, SeasonForMonth(time.November))
	assert.Equal(t, domain.SeasonRabi, SeasonForMonth(time.January))
	assert.Equal(t, domain.SeasonZaid, SeasonForMonth(time.April))
}
