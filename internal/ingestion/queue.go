package ingestion

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/guttosm/spimexpulse/internal/logger"
)

var (
	ErrQueueFull   = errors.New("ingestion queue is full")
	ErrQueueClosed = errors.New("ingestion queue is closed")
)

// Runner executes one ingestion of the n most recent reports.
type Runner interface {
	Ingest(ctx context.Context, n int) (Summary, error)
}

// Result is delivered once on Job.Done when the job finishes.
type Result struct {
	Summary Summary
	Err     error
}

// Job is a queued ingestion request.
type Job struct {
	ID          uuid.UUID
	N           int
	SubmittedAt time.Time
	Done        <-chan Result

	done chan Result
}

// Queue runs ingestion jobs in the background, one at a time and in submission order.
// Jobs are detached from the caller's context and are cancelled by Stop.
type Queue struct {
	runner Runner
	jobs   chan *Job
	log    zerolog.Logger

	mu      sync.Mutex
	closed  bool
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewQueue builds a queue holding at most size pending jobs.
func NewQueue(runner Runner, size int) *Queue {
	if size < 1 {
		size = 1
	}
	return &Queue{
		runner: runner,
		jobs:   make(chan *Job, size),
		log:    logger.Component("ingestion_queue"),
	}
}

// Start launches the worker. Jobs run with a context derived from ctx.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true

	wctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.wg.Add(1)
	go q.worker(wctx)
}

// Submit enqueues an ingestion of the n most recent reports.
func (q *Queue) Submit(n int) (*Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, ErrQueueClosed
	}

	done := make(chan Result, 1)
	job := &Job{ID: uuid.New(), N: n, SubmittedAt: time.Now().UTC(), Done: done, done: done}

	select {
	case q.jobs <- job:
		q.log.Info().Str("job_id", job.ID.String()).Int("n", n).Msg("job queued")
		return job, nil
	default:
		return nil, ErrQueueFull
	}
}

// Stop rejects new jobs, cancels the running one and waits for the worker to drain.
// Jobs still pending finish with a context error.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	started := q.started
	if q.cancel != nil {
		q.cancel()
	}
	q.mu.Unlock()

	if started {
		q.wg.Wait()
		return
	}
	for job := range q.jobs {
		job.finish(Result{Err: ErrQueueClosed})
	}
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()
	for job := range q.jobs {
		if err := ctx.Err(); err != nil {
			job.finish(Result{Err: err})
			continue
		}

		start := time.Now()
		sum, err := q.runner.Ingest(ctx, job.N)
		job.finish(Result{Summary: sum, Err: err})

		ev := q.log.Info()
		if err != nil {
			ev = q.log.Error().Err(err)
		}
		ev.Str("job_id", job.ID.String()).
			Int("n", job.N).
			Int("inserted", sum.Inserted).
			Dur("elapsed", time.Since(start)).
			Msg("job finished")
	}
}

func (j *Job) finish(r Result) {
	j.done <- r
	close(j.done)
}
