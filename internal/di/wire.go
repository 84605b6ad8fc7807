package di

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/saitejamanchi/rythumitra/internal/clientdata"
	"github.com/saitejamanchi/rythumitra/internal/clients/agmarknet"
	"github.com/saitejamanchi/rythumitra/internal/clients/nasapower"
	"github.com/saitejamanchi/rythumitra/internal/clients/openmeteo"
	"github.com/saitejamanchi/rythumitra/internal/clients/soilresearch"
	"github.com/saitejamanchi/rythumitra/internal/config"
	"github.com/saitejamanchi/rythumitra/internal/database"
	"github.com/saitejamanchi/rythumitra/internal/domain"
	"github.com/saitejamanchi/rythumitra/internal/events"
	"github.com/saitejamanchi/rythumitra/internal/modules/advisory"
	"github.com/saitejamanchi/rythumitra/internal/modules/catalog"
	"github.com/saitejamanchi/rythumitra/internal/modules/confidence"
	"github.com/saitejamanchi/rythumitra/internal/modules/history"
	"github.com/saitejamanchi/rythumitra/internal/modules/market"
	"github.com/saitejamanchi/rythumitra/internal/modules/mlmodel"
	"github.com/saitejamanchi/rythumitra/internal/modules/risk"
	"github.com/saitejamanchi/rythumitra/internal/modules/scenarios"
	"github.com/saitejamanchi/rythumitra/internal/modules/scoring"
	"github.com/saitejamanchi/rythumitra/internal/modules/soil"
	"github.com/saitejamanchi/rythumitra/internal/modules/weather"
	"github.com/saitejamanchi/rythumitra/internal/reliability"
	"github.com/saitejamanchi/rythumitra/internal/scheduler"
)

// Wire initializes all dependencies and returns a fully configured container.
// Order of operations:
//  1. Databases
//  2. Repositories and external clients
//  3. Services (the trained model falls back to the rule scorer here)
//  4. Handlers
//  5. Scheduler jobs
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{
		EventBus: events.NewBus(log),
	}

	if err := initDatabases(container, cfg, log); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := initServices(container, cfg, log); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	initHandlers(container, log)

	if err := registerJobs(container, cfg, log); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to register jobs: %w", err)
	}

	log.Info().Msg("Dependency injection wiring completed")
	return container, nil
}

func initDatabases(container *Container, cfg *config.Config, log zerolog.Logger) error {
	catalogDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "catalog.db"),
		Profile: database.ProfileStandard,
		Name:    "catalog",
	})
	if err != nil {
		return fmt.Errorf("catalog database: %w", err)
	}
	container.CatalogDB = catalogDB

	advisoryDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "advisory.db"),
		Profile: database.ProfileStandard,
		Name:    "advisory",
	})
	if err != nil {
		return fmt.Errorf("advisory database: %w", err)
	}
	container.AdvisoryDB = advisoryDB

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		return fmt.Errorf("cache database: %w", err)
	}
	container.CacheDB = cacheDB

	for name, db := range container.Databases() {
		if err := db.Migrate(); err != nil {
			return fmt.Errorf("migrate %s: %w", name, err)
		}
	}

	historyDB, err := history.Open(filepath.Join(cfg.DataDir, "history.db"), log)
	if err != nil {
		return fmt.Errorf("history database: %w", err)
	}
	container.HistoryDB = historyDB

	return nil
}

func initServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.CacheRepo = clientdata.NewRepository(container.CacheDB.Conn())
	container.CatalogRepo = catalog.NewRepository(container.CatalogDB.Conn(), log)
	container.AdvisoryRepo = advisory.NewRepository(container.AdvisoryDB.Conn(), log)

	catalogService, err := catalog.NewService(container.CatalogRepo, log)
	if err != nil {
		return fmt.Errorf("catalog service: %w", err)
	}
	container.CatalogService = catalogService

	var researcher soil.Researcher
	if cfg.SoilResearchURL != "" {
		researcher = soilresearch.NewClient(cfg.SoilResearchURL, container.CacheRepo, log)
	}
	container.SoilService = soil.NewService(container.CatalogRepo, researcher, log)

	forecastClient := openmeteo.NewClient(cfg.WeatherAPIURL, container.CacheRepo, log)
	climatologyClient := nasapower.NewClient(cfg.NASAPowerAPIURL, container.CacheRepo, log)
	container.WeatherService = weather.NewService(forecastClient, climatologyClient, log)

	priceClient := agmarknet.NewClient(cfg.MarketAPIURL, cfg.MarketAPIKey, container.CacheRepo, log)
	container.MarketService = market.NewService(priceClient, container.HistoryDB, log)

	ruleEngine := scoring.NewRuleBasedScorer(catalogService, log)
	engine := selectEngine(cfg, catalogService, ruleEngine, log)

	container.AdvisoryService = advisory.NewService(advisory.Deps{
		Engine:          engine,
		RuleEngine:      ruleEngine,
		Soil:            container.SoilService,
		Weather:         container.WeatherService,
		Market:          container.MarketService,
		WeatherHistory:  container.HistoryDB,
		Simulator:       risk.NewSimulator(log),
		Confidence:      confidence.NewScorer(log),
		Repo:            container.AdvisoryRepo,
		Bus:             container.EventBus,
		DefaultDistrict: cfg.DefaultDistrict,
	}, log)

	if cfg.Backup != nil && cfg.Backup.Enabled {
		store, err := reliability.NewS3Client(cfg.Backup, log)
		if err != nil {
			return fmt.Errorf("s3 client: %w", err)
		}
		container.BackupService = reliability.NewBackupService(
			store,
			backupSources(container),
			cfg.DataDir,
			cfg.Backup.RetentionDays,
			container.EventBus,
			log,
		)
	}

	return nil
}

// selectEngine loads the trained suitability model. A missing or corrupt
// artifact is not fatal: every recommendation then comes from the rule scorer.
func selectEngine(
	cfg *config.Config,
	catalogService *catalog.Service,
	ruleEngine *scoring.RuleBasedScorer,
	log zerolog.Logger,
) domain.RecommendationEngine {
	engine, err := mlmodel.Load(cfg.ModelArtifactDir, catalogService, log)
	if err != nil {
		log.Warn().Err(err).
			Str("dir", cfg.ModelArtifactDir).
			Msg("Trained model unavailable, using rule-based scoring")
		return ruleEngine
	}

	log.Info().Msg("Trained suitability model loaded")
	return engine
}

func backupSources(container *Container) map[string]reliability.Snapshotter {
	sources := map[string]reliability.Snapshotter{
		"history": container.HistoryDB,
	}
	for name, db := range container.Databases() {
		sources[name] = db
	}
	return sources
}

func initHandlers(container *Container, log zerolog.Logger) {
	container.AdvisoryHandler = advisory.NewHandler(
		container.AdvisoryService,
		scenarios.NewEngine(log),
		container.AdvisoryRepo,
		log,
	)
	container.CatalogHandler = catalog.NewHandler(container.CatalogService, log)
	container.SoilHandler = soil.NewHandler(container.SoilService, log)
	container.WeatherHandler = weather.NewHandler(container.WeatherService, log)
}

func registerJobs(container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.Scheduler = scheduler.New(container.EventBus, log)

	type entry struct {
		schedule string
		job      scheduler.Job
	}

	lat, lon := advisory.CoordsForDistrict(cfg.DefaultDistrict)

	jobs := []entry{
		{"0 */6 * * *", scheduler.NewPriceSyncJob(container.MarketService, cfg.DefaultDistrict, log)},
		{"45 1 * * *", scheduler.NewCleanupJob(container.CacheRepo, container.HistoryDB, historyRetentionDays, log)},
		{"0 3 * * *", scheduler.NewWALCheckpointJob(container.Databases(), log)},
		{"0 18 * * *", scheduler.NewWeatherLogJob(container.WeatherService, container.HistoryDB, cfg.DefaultDistrict, lat, lon, log)},
	}

	if container.BackupService != nil {
		jobs = append(jobs, entry{"30 2 * * *", scheduler.NewBackupJob(container.BackupService, log)})
	}

	for _, e := range jobs {
		if err := container.Scheduler.AddJob(e.schedule, e.job); err != nil {
			return fmt.Errorf("register %s: %w", e.job.Name(), err)
		}
	}

	return nil
}

// historyRetentionDays bounds the price and weather series kept locally.
const historyRetentionDays = 365
