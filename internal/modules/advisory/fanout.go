package advisory

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Fan-out limits: three workers, 30 seconds for the whole batch. Enrichment
// failures are logged and omitted; they never fail the request and are never
// retried.
const (
	fanOutWorkers = 3
	fanOutTimeout = 30 * time.Second
)

// enrichmentTask is one independent read-only fetch.
type enrichmentTask struct {
	name string
	run  func(ctx context.Context) error
}

// runFanOut executes tasks on a fixed-size worker pool under one aggregate
// timeout. Each task writes its result through its own closure; a panic or
// error in one task is isolated from the rest.
func runFanOut(ctx context.Context, log zerolog.Logger, tasks []enrichmentTask) {
	ctx, cancel := context.WithTimeout(ctx, fanOutTimeout)
	defer cancel()

	queue := make(chan enrichmentTask)
	var wg sync.WaitGroup

	for i := 0; i < fanOutWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range queue {
				runTask(ctx, log, task)
			}
		}()
	}

	for _, task := range tasks {
		queue <- task
	}
	close(queue)
	wg.Wait()
}

func runTask(ctx context.Context, log zerolog.Logger, task enrichmentTask) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("task", task.name).Msg("Enrichment task panicked")
		}
	}()

	if ctx.Err() != nil {
		log.Warn().Str("task", task.name).Msg("Enrichment skipped, deadline exceeded")
		return
	}

	start := time.Now()
	if err := task.run(ctx); err != nil {
		log.Warn().Err(err).Str("task", task.name).Msg("Enrichment failed, omitting from response")
		return
	}
	log.Debug().Str("task", task.name).Dur("took", time.Since(start)).Msg("Enrichment complete")
}
