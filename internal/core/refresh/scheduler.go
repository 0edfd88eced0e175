// Package refresh provides the cancellable auto-refresh task driving
// periodic dashboard reloads.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Task is one running refresh loop. Obtained from Start; stopped with Stop.
type Task struct {
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// Scheduler starts refresh tasks. A task runs its function immediately, then
// on every interval tick. Ticks that arrive while the previous run is still
// in flight are skipped rather than stacked.
type Scheduler struct {
	logger *logrus.Logger
}

// NewScheduler creates a scheduler.
func NewScheduler(logger *logrus.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

// Start launches a refresh loop. The returned task must be stopped when the
// selection driving it changes or the consumer goes away, or the ticker
// leaks.
func (s *Scheduler) Start(interval time.Duration, fn func(ctx context.Context)) *Task {
	ctx, cancel := context.WithCancel(context.Background())
	task := &Task{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(task.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var running sync.Mutex
		run := func() {
			if !running.TryLock() {
				s.logger.Debug("Refresh tick skipped, previous run still in flight")
				return
			}
			go func() {
				defer running.Unlock()
				fn(ctx)
			}()
		}

		run()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run()
			}
		}
	}()

	return task
}

// Stop cancels the task and waits for the loop to exit. Safe to call more
// than once.
func (t *Task) Stop() {
	t.stopOnce.Do(func() {
		t.cancel()
		<-t.done
	})
}
