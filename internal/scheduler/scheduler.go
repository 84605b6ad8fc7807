// Package scheduler runs the background maintenance and sync jobs.
package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/saitejamanchi/rythumitra/internal/events"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// Scheduler manages background jobs
type Scheduler struct {
	cron *cron.Cron
	bus  *events.Bus
	log  zerolog.Logger
}

// New creates a new scheduler. Job outcomes are published on the event bus.
func New(bus *events.Bus, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		bus:  bus,
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a new job with a cron schedule.
// Schedule examples:
//   - "*/30 * * * *"  - Every 30 minutes
//   - "@hourly"       - Every hour
//   - "15 2 * * *"    - 02:15 daily
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.runJob(job)
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

// RunNow executes a job immediately, outside its schedule.
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return job.Run()
}

func (s *Scheduler) runJob(job Job) {
	s.log.Debug().Str("job", job.Name()).Msg("Running job")

	if err := job.Run(); err != nil {
		s.log.Error().
			Err(err).
			Str("job", job.Name()).
			Msg("Job failed")
		s.publish(events.TypeJobFailed, job.Name(), err.Error())
		return
	}

	s.log.Debug().Str("job", job.Name()).Msg("Job completed")
	s.publish(events.TypeJobCompleted, job.Name(), "")
}

func (s *Scheduler) publish(eventType, jobName, errMsg string) {
	if s.bus == nil {
		return
	}
	payload := map[string]interface{}{"job": jobName}
	if errMsg != "" {
		payload["error"] = errMsg
	}
	s.bus.Publish(eventType, payload)
}
