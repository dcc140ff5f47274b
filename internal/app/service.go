// Package service runs the update pipeline: it fetches both catalogs and every
// player's scores through a worker pool and folds the results into a Database.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/okian/ddrsync/internal/adapters/mq/queue"
	"github.com/okian/ddrsync/internal/adapters/mq/worker"
	"github.com/okian/ddrsync/internal/domain/model"
	"github.com/okian/ddrsync/internal/domain/score"
	"github.com/okian/ddrsync/internal/domain/song"
	"github.com/okian/ddrsync/pkg/logger"
	"github.com/okian/ddrsync/pkg/metrics"
)

// Sources fetches raw data from the two score trackers.
type Sources interface {
	PrimaryCatalog(ctx context.Context) ([]song.PrimaryRecord, error)
	SecondaryCatalog(ctx context.Context) ([]song.SecondaryRecord, error)
	PrimaryScores(ctx context.Context, account string) (map[song.ID]score.Table, error)
	SecondaryScores(ctx context.Context, account string) (map[song.LocalID]score.Table, error)
}

// Service drives update runs. It holds no run state and may be shared.
type Service struct {
	sources Sources

	workerCount int
	queueSize   int

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSources sets the trackers the service fetches from.
func WithSources(src Sources) Option {
	return func(s *Service) {
		s.sources = src
	}
}

// WithWorkerCount sets the number of fetch workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   256,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Run builds a fresh database for the roster and refreshes it once.
func (s *Service) Run(ctx context.Context, seeds []model.PlayerSeed) (*model.Database, Report, error) {
	db := model.NewDatabase(seeds...)
	rep, err := s.Refresh(ctx, db, seeds...)
	return db, rep, err
}

// Refresh fetches everything again and merges it into db. Seeds whose name is
// not in db are added; existing players keep their scores. Merges applied
// before a failure stay in db.
func (s *Service) Refresh(ctx context.Context, db *model.Database, seeds ...model.PlayerSeed) (Report, error) {
	if s.sources == nil {
		return Report{}, ErrNoSources
	}

	start := time.Now()
	r := newRun(s.logger, db)
	ctx = withRunID(ctx, r.report.RunID)

	if added := db.AddPlayers(seeds...); added > 0 {
		r.logger.Info(ctx, "players added", logger.Int("added", added), logger.Int("players", len(db.Players)))
	}

	err := s.drive(ctx, r)

	r.report.Duration = time.Since(start)
	r.report.FailedPlayers = r.failedPlayers()
	outcome := r.outcome(err)
	metrics.RecordRun(outcome, r.report.Duration)

	fields := []logger.Field{
		logger.String("outcome", outcome),
		logger.String("stage", r.report.Stage.String()),
		logger.Int("new_songs", r.report.NewSongs),
		logger.Int("new_scores", r.report.NewScores),
		logger.Int("failed_players", len(r.report.FailedPlayers)),
		logger.Int("dropped", r.report.Dropped),
		logger.Bool("degraded", r.report.Degraded),
		logger.Duration("duration", r.report.Duration),
	}
	if err != nil {
		r.logger.Error(ctx, "run failed", append(fields, logger.Error(err))...)
		return r.report, err
	}
	r.logger.Info(ctx, "run finished", fields...)
	return r.report, nil
}

// drive enqueues the run's jobs and folds results into the database until
// every job has answered.
func (s *Service) drive(ctx context.Context, r *run) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := r.jobs()
	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	// Sized so workers never wait on the driver.
	results := make(chan model.Result, len(jobs))
	secondaryCtx, cancelSecondary := context.WithCancel(ctx)
	defer cancelSecondary()
	r.cancelSecondary = cancelSecondary

	pool := worker.NewPool(min(s.workerCount, len(jobs)), q, worker.ExecutorFunc(
		func(ctx context.Context, job model.Job) model.Result {
			if job.Kind != model.JobSecondaryScores {
				return s.execute(ctx, job)
			}
			if err := secondaryCtx.Err(); err != nil {
				return model.Result{Job: job, Err: err}
			}
			ctx, stop := withCancelOf(ctx, secondaryCtx)
			defer stop()
			return s.execute(ctx, job)
		}))

	poolDone := make(chan error, 1)
	go func() {
		defer close(results)
		poolDone <- pool.Run(ctx, results)
	}()
	// Drain so the pool has exited before drive returns.
	defer func() {
		cancel()
		for range results {
		}
	}()

	r.advance(ctx, StageCatalogsInFlight, logger.Int("jobs", len(jobs)), logger.Int("workers", pool.Size()))
	for _, j := range jobs {
		if err := q.Enqueue(ctx, j); err != nil {
			_ = q.Close()
			return enqueueErr(ctx, err)
		}
	}
	_ = q.Close()

	for res := range results {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.handle(ctx, res); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := <-poolDone; err != nil {
		return err
	}
	if !r.reconciled {
		// Every catalog job answers unless the run was canceled.
		return fmt.Errorf("%w: no catalog result", ErrPrimaryCatalog)
	}
	r.advance(ctx, StageDone)
	return nil
}

func enqueueErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("enqueue: %w", err)
}

// execute runs one job against the sources. It is called from worker goroutines.
func (s *Service) execute(ctx context.Context, job model.Job) model.Result {
	res := model.Result{Job: job}
	switch job.Kind {
	case model.JobPrimaryCatalog:
		res.Primary, res.Err = s.sources.PrimaryCatalog(ctx)
	case model.JobSecondaryCatalog:
		res.Secondary, res.Err = s.sources.SecondaryCatalog(ctx)
	case model.JobPrimaryScores:
		res.PrimaryScores, res.Err = s.sources.PrimaryScores(ctx, job.Account)
	case model.JobSecondaryScores:
		res.SecondaryScores, res.Err = s.sources.SecondaryScores(ctx, job.Account)
	default:
		res.Err = fmt.Errorf("%w: %d", ErrUnknownJob, job.Kind)
	}
	return res
}

// withCancelOf returns a child of ctx that is also canceled when other is done.
func withCancelOf(ctx, other context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	unregister := context.AfterFunc(other, cancel)
	return ctx, func() {
		unregister()
		cancel()
	}
}

type runIDKey struct{}

// withRunID tags ctx with the run id.
func withRunID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the id of the run ctx belongs to, if any.
func RunID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(runIDKey{}).(uuid.UUID)
	return id, ok
}

// isCancel reports whether err came from the run's own context.
func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
