package notifications

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type ctxKey string

func TestDispatcher_RunsTasksAndWaits(t *testing.T) {
	d := NewDispatcher(2, time.Second)
	var ran int32
	for i := 0; i < 10; i++ {
		d.Go(context.Background(), "test", func(context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		})
	}
	d.Wait()
	assert.Equal(t, int32(10), atomic.LoadInt32(&ran))
}

func TestDispatcher_BoundsConcurrency(t *testing.T) {
	d := NewDispatcher(2, time.Second)
	var current, peak int32
	for i := 0; i < 8; i++ {
		d.Go(context.Background(), "test", func(context.Context) error {
			n := atomic.AddInt32(&current, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&current, -1)
			return nil
		})
	}
	d.Wait()
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestDispatcher_FailuresAndPanicsAreContained(t *testing.T) {
	d := NewDispatcher(1, time.Second)
	var after int32
	d.Go(context.Background(), "failing", func(context.Context) error { return errors.New("boom") })
	d.Go(context.Background(), "panicking", func(context.Context) error { panic("kaboom") })
	d.Go(context.Background(), "after", func(context.Context) error {
		atomic.AddInt32(&after, 1)
		return nil
	})
	d.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&after))
}

func TestDispatcher_DetachesFromCallerCancellation(t *testing.T) {
	d := NewDispatcher(1, time.Second)
	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey("rid"), "req-1"))
	cancel()

	var sawErr error
	var sawValue any
	d.Go(ctx, "detached", func(taskCtx context.Context) error {
		sawErr = taskCtx.Err()
		sawValue = taskCtx.Value(ctxKey("rid"))
		return nil
	})
	d.Wait()
	assert.NoError(t, sawErr)
	assert.Equal(t, "req-1", sawValue)
}

func TestDispatcher_TimeoutCancelsTask(t *testing.T) {
	d := NewDispatcher(1, 20*time.Millisecond)
	var sawErr error
	d.Go(context.Background(), "slow", func(taskCtx context.Context) error {
		<-taskCtx.Done()
		sawErr = taskCtx.Err()
		return sawErr
	})
	d.Wait()
	assert.ErrorIs(t, sawErr, context.DeadlineExceeded)
}

func TestDispatcher_DropsBeyondQueue(t *testing.T) {
	d := NewDispatcherWithQueue(1, 1, time.Second)
	release := make(chan struct{})
	started := make(chan struct{})
	var ran int32

	assert.True(t, d.Go(context.Background(), "blocking", func(context.Context) error {
		close(started)
		<-release
		atomic.AddInt32(&ran, 1)
		return nil
	}))
	<-started

	assert.True(t, d.Go(context.Background(), "queued", func(context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	}))
	assert.False(t, d.Go(context.Background(), "overflow", func(context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	}))

	close(release)
	d.Wait()
	assert.Equal(t, int32(2), atomic.LoadInt32(&ran))

	assert.True(t, d.Go(context.Background(), "after drain", func(context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	}), "slots are returned once tasks finish")
	d.Wait()
	assert.Equal(t, int32(3), atomic.LoadInt32(&ran))
}
