package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saitejamanchi/rythumitra/internal/domain"
	"github.com/saitejamanchi/rythumitra/internal/events"
	"github.com/saitejamanchi/rythumitra/internal/reliability"
)

type fakeSyncer struct {
	district string
	err      error
}

func (f *fakeSyncer) SyncPrices(ctx context.Context, district string) (int, error) {
	f.district = district
	return 7, f.err
}

func TestPriceSyncJob_PassesDistrict(t *testing.T) {
	syncer := &fakeSyncer{}
	job := NewPriceSyncJob(syncer, "Guntur", zerolog.Nop())

	require.NoError(t, job.Run())
	assert.Equal(t, "Guntur", syncer.district)
}

func TestPriceSyncJob_WrapsError(t *testing.T) {
	job := NewPriceSyncJob(&fakeSyncer{err: fmt.Errorf("upstream down")}, "Guntur", zerolog.Nop())
	assert.Error(t, job.Run())
}

type fakeExpiredCleaner struct {
	calls int
	err   error
}

func (f *fakeExpiredCleaner) CleanupExpired() (int64, error) {
	f.calls++
	return 3, f.err
}

type fakeSeriesCleaner struct {
	retention int
	calls     int
}

func (f *fakeSeriesCleaner) Cleanup(retentionDays int) (int64, error) {
	f.calls++
	f.retention = retentionDays
	return 12, nil
}

func TestCleanupJob_RunsBothStages(t *testing.T) {
	cache := &fakeExpiredCleaner{}
	series := &fakeSeriesCleaner{}
	job := NewCleanupJob(cache, series, 365, zerolog.Nop())

	require.NoError(t, job.Run())
	assert.Equal(t, 1, cache.calls)
	assert.Equal(t, 1, series.calls)
	assert.Equal(t, 365, series.retention)
}

func TestCleanupJob_CacheFailureStillTrimsHistory(t *testing.T) {
	cache := &fakeExpiredCleaner{err: fmt.Errorf("disk full")}
	series := &fakeSeriesCleaner{}
	job := NewCleanupJob(cache, series, 365, zerolog.Nop())

	assert.Error(t, job.Run())
	assert.Equal(t, 1, series.calls, "history cleanup must run even when cache cleanup fails")
}

type fakeWeather struct {
	snapshot domain.WeatherSnapshot
	err      error
}

func (f *fakeWeather) GetSnapshot(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error) {
	return f.snapshot, f.err
}

type fakeRecorder struct {
	location string
	snapshot domain.WeatherSnapshot
	calls    int
}

func (f *fakeRecorder) RecordWeatherDay(location string, day time.Time, snapshot domain.WeatherSnapshot) error {
	f.calls++
	f.location = location
	f.snapshot = snapshot
	return nil
}

func TestWeatherLogJob_RecordsSnapshot(t *testing.T) {
	recorder := &fakeRecorder{}
	weather := &fakeWeather{snapshot: domain.WeatherSnapshot{TempC: 31, RainDays: 2}}
	job := NewWeatherLogJob(weather, recorder, "Guntur", 16.306, 80.436, zerolog.Nop())

	require.NoError(t, job.Run())
	assert.Equal(t, 1, recorder.calls)
	assert.Equal(t, "Guntur", recorder.location)
	assert.InDelta(t, 31.0, recorder.snapshot.TempC, 0.001)
}

func TestWeatherLogJob_FetchFailureSkipsRecord(t *testing.T) {
	recorder := &fakeRecorder{}
	job := NewWeatherLogJob(&fakeWeather{err: fmt.Errorf("offline")}, recorder, "Guntur", 16.3, 80.4, zerolog.Nop())

	assert.Error(t, job.Run())
	assert.Zero(t, recorder.calls)
}

type fakeBackup struct {
	err error
}

func (f *fakeBackup) Run(ctx context.Context) (*reliability.RunResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &reliability.RunResult{Archive: "rythumitra-backup-test.tar.gz"}, nil
}

func TestBackupJob(t *testing.T) {
	assert.NoError(t, NewBackupJob(&fakeBackup{}, zerolog.Nop()).Run())
	assert.Error(t, NewBackupJob(&fakeBackup{err: fmt.Errorf("bucket gone")}, zerolog.Nop()).Run())
}

type namedJob struct {
	name string
	err  error
	ran  chan struct{}
}

func (j *namedJob) Run() error {
	close(j.ran)
	return j.err
}

func (j *namedJob) Name() string { return j.name }

func TestScheduler_PublishesJobOutcomes(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	sub, cancel := bus.Subscribe()
	defer cancel()

	s := New(bus, zerolog.Nop())

	okJob := &namedJob{name: "ok", ran: make(chan struct{})}
	s.runJob(okJob)
	badJob := &namedJob{name: "bad", err: fmt.Errorf("boom"), ran: make(chan struct{})}
	s.runJob(badJob)

	var got []events.Event
	for i := 0; i < 2; i++ {
		select {
		case event := <-sub:
			got = append(got, event)
		case <-time.After(time.Second):
			t.Fatal("expected two job events")
		}
	}

	assert.Equal(t, events.TypeJobCompleted, got[0].Type)
	assert.Equal(t, events.TypeJobFailed, got[1].Type)
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	s := New(nil, zerolog.Nop())
	err := s.AddJob("not a schedule", &namedJob{name: "noop", ran: make(chan struct{})})
	assert.Error(t, err)
}
