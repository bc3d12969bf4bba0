package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/gryroach/theater-search-etl/internal/database"
	"github.com/gryroach/theater-search-etl/internal/domain"
	"github.com/gryroach/theater-search-etl/internal/elasticsearch/mappings"
	"github.com/gryroach/theater-search-etl/internal/logger"
	"github.com/gryroach/theater-search-etl/internal/transform"
)

const (
	// defaultMinInterval and defaultMaxInterval bound the randomized sleep
	// between cycles. The window is deliberately short: the pipeline targets
	// near-real-time propagation, not batch efficiency.
	defaultMinInterval = 500 * time.Millisecond
	defaultMaxInterval = 900 * time.Millisecond
)

// Config holds orchestrator tuning.
type Config struct {
	// MinInterval and MaxInterval bound the randomized sleep between cycles.
	MinInterval time.Duration
	MaxInterval time.Duration
}

// Orchestrator runs the sync cycle: acquire lock, extract, fan out,
// assemble, transform, write, advance watermarks, release lock. One
// orchestrator instance drives one worker process; concurrent processes
// cooperate only through the run lock.
type Orchestrator struct {
	extractor  ChangeExtractor
	fanout     FanoutResolver
	assembler  Assembler
	writer     IndexWriter
	watermarks WatermarkStore
	lock       Lock
	log        logger.Logger

	minInterval time.Duration
	maxInterval time.Duration
}

// New creates an orchestrator.
func New(
	extractor ChangeExtractor,
	fanout FanoutResolver,
	assembler Assembler,
	writer IndexWriter,
	watermarks WatermarkStore,
	lock Lock,
	cfg Config,
	log logger.Logger,
) *Orchestrator {
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = defaultMinInterval
	}
	if cfg.MaxInterval <= cfg.MinInterval {
		cfg.MaxInterval = cfg.MinInterval + (defaultMaxInterval - defaultMinInterval)
	}

	return &Orchestrator{
		extractor:   extractor,
		fanout:      fanout,
		assembler:   assembler,
		writer:      writer,
		watermarks:  watermarks,
		lock:        lock,
		log:         log,
		minInterval: cfg.MinInterval,
		maxInterval: cfg.MaxInterval,
	}
}

// Run executes sync cycles until the context is cancelled. A failed cycle
// is logged and the loop proceeds to its next tick; the process is never
// terminated by a single cycle's failure.
func (o *Orchestrator) Run(ctx context.Context) {
	o.log.Info("sync loop started",
		logger.Duration("min_interval", o.minInterval),
		logger.Duration("max_interval", o.maxInterval))

	for {
		if err := o.RunCycle(ctx); err != nil {
			o.log.Error("sync cycle failed", logger.Error(err))
		}

		interval := o.minInterval + time.Duration(rand.Int63n(int64(o.maxInterval-o.minInterval)))
		select {
		case <-ctx.Done():
			o.log.Info("sync loop stopped")
			return
		case <-time.After(interval):
		}
	}
}

// RunCycle executes one sync cycle. It returns nil both on success and when
// another process holds the run lock; any error aborts the cycle with all
// unadvanced watermarks intact, so the next cycle reprocesses the same
// change set (safe because upserts are idempotent).
func (o *Orchestrator) RunCycle(ctx context.Context) error {
	acquired, err := o.lock.TryAcquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !acquired {
		o.log.Debug("run lock held by another process, skipping tick")
		return nil
	}
	// Release must run even when the cycle context is already cancelled.
	defer func() {
		if releaseErr := o.lock.Release(context.WithoutCancel(ctx)); releaseErr != nil {
			o.log.Warn("run lock release failed", logger.Error(releaseErr))
		}
	}()

	return o.cycleBody(ctx)
}

func (o *Orchestrator) cycleBody(ctx context.Context) error {
	workSince := o.watermarks.Get(ctx, domain.KindWork)
	genreSince := o.watermarks.Get(ctx, domain.KindGenre)
	personSince := o.watermarks.Get(ctx, domain.KindPerson)

	newWorks, err := o.extractor.NewWorks(ctx, workSince)
	if err != nil {
		return err
	}
	changedPersons, err := o.extractor.ModifiedPersons(ctx, personSince)
	if err != nil {
		return err
	}
	changedGenres, err := o.extractor.ModifiedGenres(ctx, genreSince)
	if err != nil {
		return err
	}

	if len(newWorks) == 0 && len(changedPersons) == 0 && len(changedGenres) == 0 {
		o.log.Debug("no changes to process")
		return nil
	}

	if err := o.syncWorks(ctx, newWorks, changedPersons, changedGenres); err != nil {
		return err
	}
	if err := o.syncGenres(ctx, changedGenres); err != nil {
		return err
	}
	if err := o.syncPersons(ctx, changedPersons); err != nil {
		return err
	}
	return nil
}

// syncWorks re-materializes every work affected by this cycle's changes:
// newly created works plus one fan-out hop from changed persons and genres.
func (o *Orchestrator) syncWorks(ctx context.Context, newWorks, changedPersons []domain.ChangedEntity, changedGenres []domain.ChangedGenre) error {
	byPersons, err := o.fanout.WorksByPersons(ctx, entityIDs(changedPersons))
	if err != nil {
		return err
	}
	byGenres, err := o.fanout.WorksByGenres(ctx, genreIDs(changedGenres))
	if err != nil {
		return err
	}

	affected := database.AffectedWorkIDs(newWorks, byPersons, byGenres)
	if len(affected) == 0 {
		return nil
	}

	works, err := o.assembler.AssembleWorks(ctx, affected)
	if err != nil {
		return err
	}
	if len(works) == 0 {
		o.log.Warn("no work payloads assembled for affected ids",
			logger.Int("affected", len(affected)))
		return nil
	}

	o.heartbeat(ctx)
	if err := o.writer.BulkUpsert(ctx, domain.KindWork.IndexName(), workDocs(transform.Works(works))); err != nil {
		return err
	}
	o.log.Info("works synchronized", logger.Int("documents", len(works)))

	return o.watermarks.Set(ctx, domain.KindWork, maxWorkModified(works))
}

func (o *Orchestrator) syncGenres(ctx context.Context, changedGenres []domain.ChangedGenre) error {
	if len(changedGenres) == 0 {
		return nil
	}

	o.heartbeat(ctx)
	if err := o.writer.BulkUpsert(ctx, domain.KindGenre.IndexName(), genreDocs(transform.Genres(changedGenres))); err != nil {
		return err
	}
	o.log.Info("genres synchronized", logger.Int("documents", len(changedGenres)))

	return o.watermarks.Set(ctx, domain.KindGenre, domain.MaxGenreModified(changedGenres))
}

// syncPersons re-fetches full projections for exactly the changed persons,
// not the fan-out set.
func (o *Orchestrator) syncPersons(ctx context.Context, changedPersons []domain.ChangedEntity) error {
	if len(changedPersons) == 0 {
		return nil
	}

	persons, err := o.assembler.PersonsWithFilms(ctx, entityIDs(changedPersons))
	if err != nil {
		return err
	}

	o.heartbeat(ctx)
	if err := o.writer.BulkUpsert(ctx, domain.KindPerson.IndexName(), personDocs(transform.Persons(persons))); err != nil {
		return err
	}
	o.log.Info("persons synchronized", logger.Int("documents", len(persons)))

	return o.watermarks.Set(ctx, domain.KindPerson, domain.MaxModified(changedPersons))
}

// Rebuild drops and recreates all three indices, then resets every
// watermark to the epoch so the next cycle performs a full catch-up scan.
func (o *Orchestrator) Rebuild(ctx context.Context) error {
	acquired, err := o.lock.TryAcquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !acquired {
		return fmt.Errorf("rebuild skipped: run lock held by another process")
	}
	defer func() {
		if releaseErr := o.lock.Release(context.WithoutCancel(ctx)); releaseErr != nil {
			o.log.Warn("run lock release failed", logger.Error(releaseErr))
		}
	}()

	for _, kind := range domain.Kinds {
		schema, err := mappings.ForKind(kind)
		if err != nil {
			return err
		}

		dropped, err := o.writer.DropIndex(ctx, kind.IndexName())
		if err != nil {
			return err
		}
		if dropped {
			o.log.Info("index dropped for rebuild", logger.String("index", kind.IndexName()))
		}
		if err := o.writer.EnsureIndex(ctx, kind.IndexName(), schema); err != nil {
			return err
		}
	}

	if err := o.watermarks.Reset(ctx); err != nil {
		return err
	}
	o.log.Info("indices rebuilt, watermarks reset to epoch")
	return nil
}

// NeedsRebuild reports whether this is a first run with no stored
// watermarks.
func (o *Orchestrator) NeedsRebuild(ctx context.Context) bool {
	return !o.watermarks.Initialized(ctx)
}

// heartbeat renews the run-lock lease before a potentially slow write phase
// so the retry budget cannot outlive the lease.
func (o *Orchestrator) heartbeat(ctx context.Context) {
	held, err := o.lock.Extend(ctx)
	if err != nil {
		o.log.Warn("run lock extend failed", logger.Error(err))
		return
	}
	if !held {
		o.log.Warn("run lock lease expired mid-cycle")
	}
}

func entityIDs(entities []domain.ChangedEntity) []string {
	ids := make([]string, 0, len(entities))
	for _, e := range entities {
		ids = append(ids, e.ID)
	}
	return ids
}

func genreIDs(genres []domain.ChangedGenre) []string {
	ids := make([]string, 0, len(genres))
	for _, g := range genres {
		ids = append(ids, g.ID)
	}
	return ids
}

func maxWorkModified(works []domain.AssembledWork) time.Time {
	var maxTime time.Time
	for _, w := range works {
		if w.Modified.After(maxTime) {
			maxTime = w.Modified
		}
	}
	return maxTime
}

func workDocs(docs []domain.WorkDocument) []domain.DocumentID {
	out := make([]domain.DocumentID, 0, len(docs))
	for _, d := range docs {
		out = append(out, d)
	}
	return out
}

func genreDocs(docs []domain.GenreDocument) []domain.DocumentID {
	out := make([]domain.DocumentID, 0, len(docs))
	for _, d := range docs {
		out = append(out, d)
	}
	return out
}

func personDocs(docs []domain.PersonDocument) []domain.DocumentID {
	out := make([]domain.DocumentID, 0, len(docs))
	for _, d := range docs {
		out = append(out, d)
	}
	return out
}
