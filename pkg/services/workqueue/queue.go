package workqueue

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/duahurufo/exeloka-engine/pkg/retry"
)

// Queue executes a fixed batch of jobs under a concurrency strategy.
// Provider jobs retry transient failures with backoff; local jobs run once.
// A queue is single use: build it, add jobs, call Run.
type Queue struct {
	states   []*jobState
	strategy Strategy
	retryCfg *retry.Config
	logger   *zap.Logger
}

// Option configures a Queue.
type Option func(*Queue)

// WithStrategy overrides the default serialized strategy.
func WithStrategy(strategy Strategy) Option {
	return func(q *Queue) {
		if strategy != nil {
			q.strategy = strategy
		}
	}
}

// WithRetryConfig overrides the retry policy for provider jobs.
func WithRetryConfig(cfg *retry.Config) Option {
	return func(q *Queue) {
		if cfg != nil {
			q.retryCfg = cfg
		}
	}
}

// New creates an empty queue.
func New(logger *zap.Logger, opts ...Option) *Queue {
	q := &Queue{
		strategy: NewSerializedStrategy(),
		retryCfg: retry.ProviderConfig(),
		logger:   logger.Named("workqueue"),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Add appends a job to the batch. Not safe to call once Run has started.
func (q *Queue) Add(job *Job) {
	q.states = append(q.states, newJobState(job))
}

// Run executes the batch and blocks until every job reaches a terminal
// state. Cancelling the context marks still-pending jobs cancelled and stops
// scheduling; running jobs finish their current attempt.
func (q *Queue) Run(ctx context.Context) []Snapshot {
	done := make(chan Kind, len(q.states))
	running := 0

	for {
		if err := ctx.Err(); err != nil {
			for _, st := range q.states {
				if st.getStatus() == StatusPending {
					st.setStatus(StatusCancelled)
					st.setError(err)
				}
			}
		}

		started := false
		pending := 0
		for _, st := range q.states {
			if st.getStatus() != StatusPending {
				continue
			}
			pending++
			kind := st.job.Kind
			if !q.strategy.CanStart(kind) {
				continue
			}

			q.strategy.OnStart(kind)
			st.setStatus(StatusRunning)
			running++
			started = true
			pending--

			go func(st *jobState) {
				q.execute(ctx, st)
				done <- st.job.Kind
			}(st)
		}

		if pending == 0 && running == 0 {
			break
		}
		if !started || running > 0 && pending == 0 {
			kind := <-done
			q.strategy.OnDone(kind)
			running--
		}
	}

	return q.Snapshots()
}

// execute runs one job to a terminal state.
func (q *Queue) execute(ctx context.Context, st *jobState) {
	start := time.Now()

	var err error
	if st.job.Kind == KindProvider {
		err = retry.DoIfRetryable(ctx, q.retryCfg, st.job.Run)
	} else {
		err = st.job.Run()
	}

	switch {
	case err == nil:
		st.setStatus(StatusCompleted)
		q.logger.Debug("Job completed",
			zap.String("job", st.job.Name),
			zap.Duration("elapsed", time.Since(start)))
	case ctx.Err() != nil:
		st.setError(err)
		st.setStatus(StatusCancelled)
	default:
		st.setError(err)
		st.setStatus(StatusFailed)
		q.logger.Warn("Job failed",
			zap.String("job", st.job.Name),
			zap.String("kind", string(st.job.Kind)),
			zap.Error(err))
	}
}

// Snapshots returns the current state of every job in submission order.
func (q *Queue) Snapshots() []Snapshot {
	snapshots := make([]Snapshot, 0, len(q.states))
	for _, st := range q.states {
		snapshots = append(snapshots, st.snapshot())
	}
	return snapshots
}
