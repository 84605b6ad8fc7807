package advisory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRunFanOut_BoundedConcurrency(t *testing.T) {
	var active, peak int32

	var tasks []enrichmentTask
	for i := 0; i < 9; i++ {
		tasks = append(tasks, enrichmentTask{
			name: fmt.Sprintf("task-%d", i),
			run: func(ctx context.Context) error {
				now := atomic.AddInt32(&active, 1)
				for {
					current := atomic.LoadInt32(&peak)
					if now <= current || atomic.CompareAndSwapInt32(&peak, current, now) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			},
		})
	}

	runFanOut(context.Background(), zerolog.Nop(), tasks)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(fanOutWorkers))
}

func TestRunFanOut_FailureIsolation(t *testing.T) {
	var mu sync.Mutex
	completed := map[string]bool{}

	mark := func(name string) {
		mu.Lock()
		defer mu.Unlock()
		completed[name] = true
	}

	tasks := []enrichmentTask{
		{name: "fails", run: func(ctx context.Context) error { return fmt.Errorf("upstream down") }},
		{name: "panics", run: func(ctx context.Context) error { panic("boom") }},
		{name: "succeeds", run: func(ctx context.Context) error { mark("succeeds"); return nil }},
	}

	runFanOut(context.Background(), zerolog.Nop(), tasks)

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, completed["succeeds"], "one bad task must not sink the others")
}

func TestRunFanOut_RespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	runFanOut(ctx, zerolog.Nop(), []enrichmentTask{
		{name: "late", run: func(taskCtx context.Context) error { ran = true; return nil }},
	})

	assert.False(t, ran, "tasks must be skipped once the deadline has passed")
}
