package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/saitejamanchi/rythumitra/internal/database"
	"github.com/saitejamanchi/rythumitra/internal/domain"
	"github.com/saitejamanchi/rythumitra/internal/reliability"
)

const jobTimeout = 5 * time.Minute

// PriceSyncer pulls the latest mandi prices into the history database.
type PriceSyncer interface {
	SyncPrices(ctx context.Context, district string) (int, error)
}

// PriceSyncJob refreshes mandi price history for the default district.
type PriceSyncJob struct {
	market   PriceSyncer
	district string
	log      zerolog.Logger
}

// NewPriceSyncJob creates the mandi price sync job.
func NewPriceSyncJob(market PriceSyncer, district string, log zerolog.Logger) *PriceSyncJob {
	return &PriceSyncJob{
		market:   market,
		district: district,
		log:      log.With().Str("job", "price_sync").Logger(),
	}
}

// Run executes the price sync.
func (j *PriceSyncJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	recorded, err := j.market.SyncPrices(ctx, j.district)
	if err != nil {
		return fmt.Errorf("price sync failed: %w", err)
	}

	j.log.Info().Int("recorded", recorded).Str("district", j.district).Msg("Mandi prices synced")
	return nil
}

// Name returns the job name for the scheduler.
func (j *PriceSyncJob) Name() string {
	return "price_sync"
}

// ExpiredCleaner removes rows past their expiry.
type ExpiredCleaner interface {
	CleanupExpired() (int64, error)
}

// SeriesCleaner trims old time-series rows.
type SeriesCleaner interface {
	Cleanup(retentionDays int) (int64, error)
}

// CleanupJob removes expired cache entries and trims old history rows.
type CleanupJob struct {
	cache            ExpiredCleaner
	history          SeriesCleaner
	historyRetention int
	log              zerolog.Logger
}

// NewCleanupJob creates the cache and history cleanup job.
func NewCleanupJob(cache ExpiredCleaner, history SeriesCleaner, historyRetention int, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		cache:            cache,
		history:          history,
		historyRetention: historyRetention,
		log:              log.With().Str("job", "cleanup").Logger(),
	}
}

// Run executes the cleanup. Cache and history failures are independent.
func (j *CleanupJob) Run() error {
	var firstErr error

	if j.cache != nil {
		removed, err := j.cache.CleanupExpired()
		if err != nil {
			j.log.Error().Err(err).Msg("Cache cleanup failed")
			firstErr = err
		} else {
			j.log.Info().Int64("removed", removed).Msg("Expired cache entries removed")
		}
	}

	if j.history != nil {
		removed, err := j.history.Cleanup(j.historyRetention)
		if err != nil {
			j.log.Error().Err(err).Msg("History cleanup failed")
			if firstErr == nil {
				firstErr = err
			}
		} else {
			j.log.Info().Int64("removed", removed).Msg("Old history rows removed")
		}
	}

	return firstErr
}

// Name returns the job name for the scheduler.
func (j *CleanupJob) Name() string {
	return "cleanup"
}

// WALCheckpointJob truncates WAL files on every database to prevent bloat.
type WALCheckpointJob struct {
	databases map[string]*database.DB
	log       zerolog.Logger
}

// NewWALCheckpointJob creates the WAL checkpoint job.
func NewWALCheckpointJob(databases map[string]*database.DB, log zerolog.Logger) *WALCheckpointJob {
	return &WALCheckpointJob{
		databases: databases,
		log:       log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Run executes the checkpoint on every database. A single failure does not
// stop the others.
func (j *WALCheckpointJob) Run() error {
	for name, db := range j.databases {
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Warn().Err(err).Str("database", name).Msg("WAL checkpoint failed")
			continue
		}
		j.log.Debug().Str("database", name).Msg("WAL checkpoint completed")
	}
	return nil
}

// Name returns the job name for the scheduler.
func (j *WALCheckpointJob) Name() string {
	return "wal_checkpoint"
}

// SnapshotProvider resolves the current weather snapshot for a location.
type SnapshotProvider interface {
	GetSnapshot(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error)
}

// WeatherRecorder appends daily weather observations to the history series.
type WeatherRecorder interface {
	RecordWeatherDay(location string, day time.Time, snapshot domain.WeatherSnapshot) error
}

// WeatherLogJob records one weather observation per day for the default
// district, feeding the rain-day series the advisory enrichment reads.
type WeatherLogJob struct {
	weather  SnapshotProvider
	recorder WeatherRecorder
	location string
	lat      float64
	lon      float64
	log      zerolog.Logger
}

// NewWeatherLogJob creates the daily weather log job.
func NewWeatherLogJob(weather SnapshotProvider, recorder WeatherRecorder, location string, lat, lon float64, log zerolog.Logger) *WeatherLogJob {
	return &WeatherLogJob{
		weather:  weather,
		recorder: recorder,
		location: location,
		lat:      lat,
		lon:      lon,
		log:      log.With().Str("job", "weather_log").Logger(),
	}
}

// Run fetches and records today's snapshot.
func (j *WeatherLogJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	snapshot, err := j.weather.GetSnapshot(ctx, j.lat, j.lon)
	if err != nil {
		return fmt.Errorf("weather fetch failed: %w", err)
	}

	if err := j.recorder.RecordWeatherDay(j.location, time.Now(), snapshot); err != nil {
		return fmt.Errorf("weather record failed: %w", err)
	}

	j.log.Info().Str("location", j.location).Msg("Weather observation recorded")
	return nil
}

// Name returns the job name for the scheduler.
func (j *WeatherLogJob) Name() string {
	return "weather_log"
}

// BackupRunner performs one full backup run.
type BackupRunner interface {
	Run(ctx context.Context) (*reliability.RunResult, error)
}

// BackupJob triggers the nightly off-site backup.
type BackupJob struct {
	backup BackupRunner
	log    zerolog.Logger
}

// NewBackupJob creates the nightly backup job.
func NewBackupJob(backup BackupRunner, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		backup: backup,
		log:    log.With().Str("job", "backup").Logger(),
	}
}

// Run executes the backup.
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	result, err := j.backup.Run(ctx)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	j.log.Info().
		Str("archive", result.Archive).
		Int64("size_bytes", result.SizeBytes).
		Msg("Backup uploaded")
	return nil
}

// Name returns the job name for the scheduler.
func (j *BackupJob) Name() string {
	return "backup"
}
