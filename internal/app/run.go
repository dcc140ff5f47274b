package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/okian/ddrsync/internal/domain/attribution"
	"github.com/okian/ddrsync/internal/domain/model"
	"github.com/okian/ddrsync/internal/domain/song"
	"github.com/okian/ddrsync/pkg/logger"
	"github.com/okian/ddrsync/pkg/metrics"
)

// run is the state of one Refresh. It is owned by the driving goroutine.
type run struct {
	db     *model.Database
	report Report
	logger logger.Logger

	primary         []song.PrimaryRecord
	primaryDone     bool
	secondary       []song.SecondaryRecord
	secondaryDone   bool
	secondaryFailed bool
	reconciled      bool

	// cancelSecondary stops secondary score fetches once they cannot be used.
	cancelSecondary context.CancelFunc

	// pending holds secondary score results that arrived before the catalog.
	pending []model.Result
	failed  map[string]struct{}
}

func newRun(l logger.Logger, db *model.Database) *run {
	id := uuid.New()
	return &run{
		db:     db,
		report: Report{RunID: id, Stage: StageIdle},
		logger: l.With(logger.String("run_id", id.String())),
		failed: make(map[string]struct{}),

		cancelSecondary: func() {},
	}
}

// jobs lists both catalog fetches and one score fetch per player account.
func (r *run) jobs() []model.Job {
	jobs := []model.Job{
		{Kind: model.JobPrimaryCatalog},
		{Kind: model.JobSecondaryCatalog},
	}
	for _, p := range r.db.Players {
		if p.PrimaryAccount != "" {
			jobs = append(jobs, model.Job{Kind: model.JobPrimaryScores, Player: p.Name, Account: p.PrimaryAccount})
		}
		if p.SecondaryAccount != "" {
			jobs = append(jobs, model.Job{Kind: model.JobSecondaryScores, Player: p.Name, Account: p.SecondaryAccount})
		}
	}
	return jobs
}

func (r *run) advance(ctx context.Context, next Stage, fields ...logger.Field) {
	prev := r.report.Stage
	r.report.Stage = next
	r.logger.Info(ctx, "stage changed", append([]logger.Field{
		logger.String("from", prev.String()),
		logger.String("to", next.String()),
	}, fields...)...)
}

// handle folds one result into the database. A non-nil error ends the run.
func (r *run) handle(ctx context.Context, res model.Result) error {
	switch res.Job.Kind {
	case model.JobPrimaryCatalog:
		if res.Err != nil {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fmt.Errorf("%w: %w", ErrPrimaryCatalog, res.Err)
		}
		r.primary, r.primaryDone = res.Primary, true
		r.logger.Debug(ctx, "primary catalog received", logger.Int("songs", len(res.Primary)))
		r.tryReconcile(ctx)

	case model.JobSecondaryCatalog:
		r.secondaryDone = true
		if res.Err != nil {
			r.degrade(ctx, res.Err)
		} else {
			r.secondary = res.Secondary
			r.logger.Debug(ctx, "secondary catalog received", logger.Int("songs", len(res.Secondary)))
			r.settlePendingFailures(ctx)
		}
		r.tryReconcile(ctx)

	case model.JobPrimaryScores:
		if res.Err != nil {
			r.playerFailed(ctx, res)
			return nil
		}
		r.mergePrimary(ctx, res)

	case model.JobSecondaryScores:
		// Failures are only reported once the secondary catalog is known to be usable.
		switch {
		case r.secondaryFailed:
			metrics.RecordSecondaryDiscarded()
		case res.Err != nil && r.secondaryDone:
			r.playerFailed(ctx, res)
		case !r.reconciled:
			r.pending = append(r.pending, res)
		default:
			r.mergeSecondary(ctx, res)
		}

	default:
		r.logger.Warn(ctx, "ignoring result of unknown job", logger.String("kind", res.Job.Kind.String()))
	}
	return nil
}

// degrade switches the run to a primary-only catalog.
func (r *run) degrade(ctx context.Context, cause error) {
	r.secondaryFailed = true
	r.report.Degraded = true
	r.cancelSecondary()
	for range r.pending {
		metrics.RecordSecondaryDiscarded()
	}
	r.logger.Warn(ctx, "secondary catalog unavailable, continuing with primary catalog only",
		logger.Int("discarded_results", len(r.pending)),
		logger.Error(cause),
	)
	r.pending = nil
	metrics.RecordDegradedRun()
}

// tryReconcile builds the catalog once the primary catalog has arrived and the
// secondary catalog has settled.
func (r *run) tryReconcile(ctx context.Context) {
	if r.reconciled || !r.primaryDone || !r.secondaryDone {
		return
	}

	var (
		cat *song.Catalog
		rep song.Report
	)
	if r.secondaryFailed {
		cat, rep = song.Reconcile(r.primary, nil, song.WithStrategy(song.StrategyTitle))
		r.duplicateIDs(ctx, rep.DuplicateIDs)
	} else {
		cat, rep = song.Reconcile(r.primary, r.secondary)
		r.report.Reconcile = rep
		metrics.RecordReconcile(len(rep.SecondaryOnly), len(rep.DuplicateKeys))
		if len(rep.SecondaryOnly) > 0 {
			r.logger.Warn(ctx, "secondary songs without a primary match were dropped",
				logger.Int("count", len(rep.SecondaryOnly)),
				logger.Any("songs", rep.SecondaryOnly),
			)
		}
		r.duplicateIDs(ctx, rep.DuplicateIDs)
		if len(rep.DuplicateKeys) > 0 {
			r.logger.Debug(ctx, "duplicate titles paired by position", logger.Any("keys", rep.DuplicateKeys))
		}
	}
	r.primary, r.secondary = nil, nil
	r.reconciled = true

	prev := r.db.ReplaceCatalog(cat)
	r.report.NewSongs = cat.NewSince(prev)
	metrics.UpdateCatalogSize(cat.Len(), cat.Linked())
	metrics.RecordNewSongs(r.report.NewSongs)

	r.advance(ctx, StageCatalogReady,
		logger.Bool("secondary_linked", !r.secondaryFailed),
		logger.Int("songs", cat.Len()),
		logger.Int("linked", cat.Linked()),
		logger.Int("new_songs", r.report.NewSongs),
	)

	pending := r.pending
	r.pending = nil
	for _, res := range pending {
		r.mergeSecondary(ctx, res)
	}
	r.advance(ctx, StageDraining, logger.Int("flushed", len(pending)))
}

// settlePendingFailures reports buffered secondary score failures once the
// secondary catalog has arrived.
func (r *run) settlePendingFailures(ctx context.Context) {
	kept := r.pending[:0]
	for _, res := range r.pending {
		if res.Err != nil {
			r.playerFailed(ctx, res)
			continue
		}
		kept = append(kept, res)
	}
	r.pending = kept
}

func (r *run) duplicateIDs(ctx context.Context, ids []song.ID) {
	if len(ids) == 0 {
		return
	}
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.String()
		metrics.RecordSkippedRecord("primary", "duplicate_id")
	}
	r.logger.Warn(ctx, "primary catalog repeats song ids, keeping the first", logger.Any("ids", names))
}

func (r *run) mergePrimary(ctx context.Context, res model.Result) {
	p := r.player(ctx, res.Job)
	if p == nil {
		return
	}
	n := p.MergeTables(res.PrimaryScores)
	r.report.NewScores += n
	metrics.RecordScoreSlotsChanged("primary", n)
	r.logger.Debug(ctx, "primary scores merged",
		logger.String("player", p.Name),
		logger.Int("songs", len(res.PrimaryScores)),
		logger.Int("changed", n),
	)
}

func (r *run) mergeSecondary(ctx context.Context, res model.Result) {
	p := r.player(ctx, res.Job)
	if p == nil {
		return
	}
	attributed := attribution.Attribute(res.SecondaryScores, r.db.Catalog)
	n := p.MergeTables(attributed.Tables)
	r.report.NewScores += n
	r.report.Dropped += attributed.Dropped
	metrics.RecordScoreSlotsChanged("secondary", n)
	metrics.RecordAttributionDropped(attributed.Dropped)
	r.logger.Debug(ctx, "secondary scores merged",
		logger.String("player", p.Name),
		logger.Int("songs", len(attributed.Tables)),
		logger.Int("dropped", attributed.Dropped),
		logger.Int("changed", n),
	)
}

func (r *run) player(ctx context.Context, job model.Job) *model.Player {
	p := r.db.Player(job.Player)
	if p == nil {
		r.logger.Warn(ctx, "result for unknown player", logger.String("player", job.Player))
	}
	return p
}

func (r *run) playerFailed(ctx context.Context, res model.Result) {
	if _, seen := r.failed[res.Job.Player]; !seen {
		r.failed[res.Job.Player] = struct{}{}
		metrics.RecordFailedPlayerFetch()
	}
	r.logger.Warn(ctx, "score fetch failed",
		logger.String("player", res.Job.Player),
		logger.String("kind", res.Job.Kind.String()),
		logger.Error(res.Err),
	)
}

func (r *run) failedPlayers() []string {
	if len(r.failed) == 0 {
		return nil
	}
	out := make([]string, 0, len(r.failed))
	for name := range r.failed {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func (r *run) outcome(err error) string {
	switch {
	case errors.Is(err, ErrPrimaryCatalog):
		return "failed"
	case err != nil && isCancel(err):
		return "canceled"
	case err != nil:
		return "failed"
	case r.report.Degraded:
		return "degraded"
	default:
		return "ok"
	}
}
