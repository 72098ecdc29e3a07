package workqueue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/duahurufo/exeloka-engine/pkg/retry"
)

func fastRetry() *retry.Config {
	return &retry.Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
		Multiplier:   1,
	}
}

func TestQueue_RunsAllJobs(t *testing.T) {
	q := New(zap.NewNop(), WithRetryConfig(fastRetry()))

	var count int32
	for i := 0; i < 5; i++ {
		q.Add(NewJob(fmt.Sprintf("job-%d", i), KindLocal, func() error {
			atomic.AddInt32(&count, 1)
			return nil
		}))
	}

	snapshots := q.Run(context.Background())

	assert.Equal(t, int32(5), atomic.LoadInt32(&count))
	require.Len(t, snapshots, 5)
	for _, snap := range snapshots {
		assert.Equal(t, StatusCompleted, snap.Status)
		assert.NotNil(t, snap.StartedAt)
		assert.NotNil(t, snap.CompletedAt)
	}
}

func TestQueue_SerializedProviderJobs(t *testing.T) {
	q := New(zap.NewNop(), WithRetryConfig(fastRetry()))

	var mu sync.Mutex
	var running, maxRunning int
	for i := 0; i < 4; i++ {
		q.Add(NewJob(fmt.Sprintf("provider-%d", i), KindProvider, func() error {
			mu.Lock()
			running++
			if running > maxRunning {
				maxRunning = running
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
			return nil
		}))
	}

	q.Run(context.Background())
	assert.Equal(t, 1, maxRunning, "serialized strategy runs one provider job at a time")
}

func TestQueue_ThrottledProviderJobs(t *testing.T) {
	q := New(zap.NewNop(),
		WithStrategy(NewThrottledProviderStrategy(3)),
		WithRetryConfig(fastRetry()))

	var mu sync.Mutex
	var running, maxRunning int
	for i := 0; i < 9; i++ {
		q.Add(NewJob(fmt.Sprintf("provider-%d", i), KindProvider, func() error {
			mu.Lock()
			running++
			if running > maxRunning {
				maxRunning = running
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
			return nil
		}))
	}

	q.Run(context.Background())
	assert.LessOrEqual(t, maxRunning, 3)
	assert.Greater(t, maxRunning, 1, "throttled strategy overlaps provider jobs")
}

func TestQueue_RetriesTransientProviderFailures(t *testing.T) {
	q := New(zap.NewNop(), WithRetryConfig(fastRetry()))

	var attempts int32
	q.Add(NewJob("flaky", KindProvider, func() error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return fmt.Errorf("503 service unavailable")
		}
		return nil
	}))

	snapshots := q.Run(context.Background())
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	assert.Equal(t, StatusCompleted, snapshots[0].Status)
}

func TestQueue_LocalJobsDoNotRetry(t *testing.T) {
	q := New(zap.NewNop(), WithRetryConfig(fastRetry()))

	var attempts int32
	q.Add(NewJob("broken", KindLocal, func() error {
		atomic.AddInt32(&attempts, 1)
		return fmt.Errorf("503 service unavailable")
	}))

	snapshots := q.Run(context.Background())
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	assert.Equal(t, StatusFailed, snapshots[0].Status)
	assert.Contains(t, snapshots[0].Error, "503")
}

func TestQueue_FailureDoesNotStopBatch(t *testing.T) {
	q := New(zap.NewNop(), WithRetryConfig(fastRetry()))

	q.Add(NewJob("bad", KindLocal, func() error { return fmt.Errorf("boom") }))
	q.Add(NewJob("good", KindLocal, func() error { return nil }))

	snapshots := q.Run(context.Background())
	assert.Equal(t, StatusFailed, snapshots[0].Status)
	assert.Equal(t, StatusCompleted, snapshots[1].Status)
}

func TestQueue_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := New(zap.NewNop(), WithRetryConfig(fastRetry()))
	ran := false
	q.Add(NewJob("never", KindLocal, func() error {
		ran = true
		return nil
	}))

	snapshots := q.Run(ctx)
	assert.False(t, ran)
	assert.Equal(t, StatusCancelled, snapshots[0].Status)
}

func TestQueue_Empty(t *testing.T) {
	q := New(zap.NewNop())
	assert.Empty(t, q.Run(context.Background()))
}
