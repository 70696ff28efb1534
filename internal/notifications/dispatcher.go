package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"whvmatch/internal/middleware"
	"whvmatch/internal/models"
	"whvmatch/internal/observability"

	"golang.org/x/sync/errgroup"
)

const (
	defaultDispatchWorkers = 8
	defaultDispatchTimeout = 10 * time.Second

	// Queued tasks allowed per worker before Go starts dropping.
	defaultQueuePerWorker = 64
)

// Dispatcher runs best-effort background tasks with bounded concurrency.
// Task failures are logged and counted, never returned to the caller that queued them.
type Dispatcher struct {
	group   errgroup.Group
	pending sync.WaitGroup
	timeout time.Duration

	// One token per running or waiting task.
	slots chan struct{}
}

// NewDispatcher returns a dispatcher running at most workers tasks at once,
// each under its own timeout, with room for 64 waiting tasks per worker.
func NewDispatcher(workers int, timeout time.Duration) *Dispatcher {
	if workers <= 0 {
		workers = defaultDispatchWorkers
	}
	return NewDispatcherWithQueue(workers, workers*defaultQueuePerWorker, timeout)
}

// NewDispatcherWithQueue is NewDispatcher with an explicit bound on tasks
// waiting for a worker. Tasks queued beyond it are dropped.
func NewDispatcherWithQueue(workers, queue int, timeout time.Duration) *Dispatcher {
	if workers <= 0 {
		workers = defaultDispatchWorkers
	}
	if queue < 0 {
		queue = 0
	}
	if timeout <= 0 {
		timeout = defaultDispatchTimeout
	}
	d := &Dispatcher{
		timeout: timeout,
		slots:   make(chan struct{}, workers+queue),
	}
	d.group.SetLimit(workers)
	return d
}

// Go queues fn and returns immediately. fn runs detached from the caller's
// cancellation but keeps its values (request id, user id) for logging.
// It reports false when the queue is full and fn was dropped.
func (d *Dispatcher) Go(ctx context.Context, name string, fn func(ctx context.Context) error) bool {
	select {
	case d.slots <- struct{}{}:
	default:
		observability.NotificationDispatch.WithLabelValues(name, "dropped").Inc()
		middleware.Logger.WarnContext(ctx, "background task dropped, queue full",
			slog.String("task", name),
			slog.String("code", models.CodeNotificationDispatchFailed),
		)
		return false
	}

	base := context.WithoutCancel(ctx)
	d.pending.Add(1)
	go func() {
		defer d.pending.Done()
		d.group.Go(func() error {
			defer func() { <-d.slots }()
			d.run(base, name, fn)
			return nil
		})
	}()
	return true
}

func (d *Dispatcher) run(base context.Context, name string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(base, d.timeout)
	defer cancel()

	start := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
			}
		}()
		return fn(ctx)
	}()
	observability.NotificationDispatchLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		observability.NotificationDispatch.WithLabelValues(name, "failed").Inc()
		middleware.Logger.WarnContext(ctx, "background task failed",
			slog.String("task", name),
			slog.String("code", models.CodeNotificationDispatchFailed),
			slog.String("error", err.Error()),
		)
		return
	}
	observability.NotificationDispatch.WithLabelValues(name, "ok").Inc()
}

// Wait blocks until every queued task has finished.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
	_ = d.group.Wait()
}
