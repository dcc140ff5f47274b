// Package worker runs fetch jobs taken from the queue and reports their results.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/ddrsync/internal/adapters/mq/queue"
	"github.com/okian/ddrsync/internal/domain/model"
	"github.com/okian/ddrsync/pkg/logger"
	"github.com/okian/ddrsync/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
)

// Job abstracts what workers read off the queue.
type Job = queue.Job

// Executor performs one fetch job. It must honour ctx and report failures in Result.Err.
type Executor interface {
	Execute(ctx context.Context, job model.Job) model.Result
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, job model.Job) model.Result

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, job model.Job) model.Result { return f(ctx, job) }

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker executes jobs and sends their results.
type Worker interface {
	// Run processes jobs until the queue is drained or ctx is canceled.
	Run(ctx context.Context, results chan<- model.Result) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	executor Executor
	name     string

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, executor Executor, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		executor: executor,
		name:     "worker",
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}

	return w
}

// Run starts the worker loop. It returns nil when the queue is drained and
// ctx.Err() when canceled.
func (w *InMemoryWorker) Run(ctx context.Context, results chan<- model.Result) error {
	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job, ok := <-jobs:
			if !ok {
				// A canceled dequeue also closes the channel.
				return ctx.Err()
			}

			res := w.process(ctx, job)

			select {
			case results <- res:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// process executes a single job, converting a panic into a failed result.
func (w *InMemoryWorker) process(ctx context.Context, job Job) (res model.Result) {
	kind := job.Kind.String()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordWorkerError("worker", "panic")
			w.logger.Error(ctx, "job panicked",
				logger.String("kind", kind),
				logger.String("player", job.Player),
				logger.Any("panic", r),
			)
			res = model.Result{Err: fmt.Errorf("%w: %v", ErrJobPanicked, r)}
		}
		res.Job = job
		res.Latency = time.Since(start)
		metrics.RecordFetchLatency(kind, res.Latency)
		if res.Err != nil {
			metrics.RecordFetchError(kind)
		}
	}()

	w.logger.Debug(ctx, "job started", logger.String("kind", kind), logger.String("player", job.Player))
	return w.executor.Execute(ctx, job)
}

// Pool runs a fixed number of workers over one queue.
type Pool struct {
	size     int
	queue    Queue
	executor Executor

	logger logger.Logger
}

// NewPool creates a new worker pool. A non-positive size selects a CPU-based default.
func NewPool(size int, queue Queue, executor Executor) *Pool {
	if size < 1 {
		size = runtime.NumCPU() * defaultWorkerMultiplier
	}
	return &Pool{
		size:     size,
		queue:    queue,
		executor: executor,
		logger:   logger.Get().Named("worker-pool"),
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Run starts all workers and blocks until the queue is drained or ctx is
// canceled. Results are sent on results; Run never closes it.
func (p *Pool) Run(ctx context.Context, results chan<- model.Result) error {
	g, gctx := errgroup.WithContext(ctx)

	metrics.UpdateWorkerActiveCount(p.size)
	defer metrics.UpdateWorkerActiveCount(0)

	for i := 0; i < p.size; i++ {
		w := NewInMemoryWorker(p.queue, p.executor,
			WithName("worker-"+strconv.Itoa(i)),
			WithLogger(p.logger.Named("worker-"+strconv.Itoa(i))),
		)
		g.Go(func() error {
			return w.Run(gctx, results)
		})
	}

	p.logger.Debug(ctx, "worker pool started", logger.Int("workers", p.size))
	err := g.Wait()
	p.logger.Debug(ctx, "worker pool stopped", logger.Error(err))
	return err
}
