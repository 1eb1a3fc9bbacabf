package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"

	"github.com/myconcall-sys/myconcall/internal/config"
	"github.com/myconcall-sys/myconcall/internal/entity"
	"github.com/myconcall-sys/myconcall/internal/notifier"
	"github.com/myconcall-sys/myconcall/internal/syncer"
	"github.com/myconcall-sys/myconcall/pkg/logger"
)

// Collector fetches raw event records and watchlist membership from the
// source site.
type Collector interface {
	Login(ctx context.Context) error
	FetchConcalls(ctx context.Context) ([]entity.RawConcall, error)
	FetchWatchlists(ctx context.Context) (entity.Membership, error)
}

// PhoneExtractor pulls dial-in numbers out of one announcement PDF.
type PhoneExtractor interface {
	ExtractPhones(ctx context.Context, pdfURL string) ([]string, error)
}

// SyncEngine reconciles normalized events against the external stores.
type SyncEngine interface {
	Sync(ctx context.Context, events []entity.ConcallEvent, membership entity.Membership, now time.Time) syncer.Result
}

// Runner executes one full pipeline pass: login, scrape, extract, normalize,
// backup, sync, notify. Strictly sequential; there is exactly one worker.
type Runner struct {
	cfg       config.Runner
	collector Collector
	extractor PhoneExtractor
	engine    SyncEngine
	notifier  notifier.Notifier
	logger    *logger.Logger
	loc       *time.Location
	now       func() time.Time
}

// New creates a Runner.
func New(cfg config.Runner, collector Collector, extractor PhoneExtractor, engine SyncEngine, n notifier.Notifier, log *logger.Logger, loc *time.Location) *Runner {
	return &Runner{
		cfg:       cfg,
		collector: collector,
		extractor: extractor,
		engine:    engine,
		notifier:  n,
		logger:    log,
		loc:       loc,
		now:       func() time.Time { return time.Now().In(loc) },
	}
}

// Run executes one pass under the run lock and always reports a summary.
// When another invocation already holds the lock the run exits cleanly
// without touching any external store.
func (r *Runner) Run(ctx context.Context) error {
	lock := flock.New(r.cfg.LockFile)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !locked {
		r.logger.Warn("Another run holds the lock, exiting",
			logger.Field("lock_file", r.cfg.LockFile))
		return nil
	}
	defer func() { _ = lock.Unlock() }()

	summary := entity.NewRunSummary(r.now())

	runErr := r.run(ctx, summary)
	if runErr != nil {
		summary.FatalError = runErr.Error()
		r.logger.Error("Run aborted", logger.ErrorField(runErr))
	}
	summary.FinishedAt = r.now()

	if r.notifier != nil {
		if err := r.notifier.Send(ctx, summary.Subject(), summary.String()); err != nil {
			r.logger.Warn("Failed to deliver run summary", logger.ErrorField(err))
		}
	}

	return runErr
}

func (r *Runner) run(ctx context.Context, summary *entity.RunSummary) error {
	// Authentication failure is fatal before any external write.
	if err := r.collector.Login(ctx); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	raws, err := r.collector.FetchConcalls(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch concalls: %w", err)
	}
	if len(raws) == 0 {
		return fmt.Errorf("no concalls found")
	}
	summary.Scraped = len(raws)

	membership, err := r.collector.FetchWatchlists(ctx)
	if err != nil {
		r.logger.Warn("Watchlist fetch failed, continuing without membership", logger.ErrorField(err))
		membership = entity.NewMembership()
		summary.Failed++
	}

	events := make([]entity.ConcallEvent, 0, len(raws))
	for i, raw := range raws {
		ev, err := syncer.Normalize(raw, r.loc)
		if err != nil {
			// The event stays in the set for the spreadsheet; a date-less
			// event cannot be scheduled so it never reaches a calendar.
			r.logger.Warn("Unparseable concall datetime",
				logger.Field("company", raw.Company), logger.ErrorField(err))
		}

		phones, perr := r.extractor.ExtractPhones(ctx, raw.PDFURL)
		if perr != nil {
			r.logger.Warn("Phone extraction failed",
				logger.Field("company", raw.Company), logger.ErrorField(perr))
			summary.Failed++
		}
		if len(phones) > 0 {
			summary.Extracted++
		} else {
			summary.PhoneMissing++
		}

		ev.Phones = phones
		ev.Watchlists = membership.Lists(ev.Company)
		events = append(events, ev)

		r.logger.Info("Processed announcement",
			logger.Field("progress", fmt.Sprintf("%d/%d", i+1, len(raws))),
			logger.Field("company", truncate(raw.Company, 30)))
	}

	ordered := syncer.SortEvents(events)

	if r.cfg.CSVBackupPath != "" {
		if err := WriteCSVBackup(r.cfg.CSVBackupPath, ordered); err != nil {
			r.logger.Warn("CSV backup failed", logger.ErrorField(err))
			summary.Failed++
		} else {
			r.logger.Info("CSV backup saved", logger.Field("path", r.cfg.CSVBackupPath))
		}
	}

	res := r.engine.Sync(ctx, ordered, membership, r.now())
	summary.SheetAppended = res.SheetAppended
	summary.SheetUpdated = res.SheetUpdated
	summary.CalendarCreated = res.CalendarCreated
	summary.CalendarUpdated = res.CalendarUpdated
	summary.CalendarSkipped = res.CalendarSkipped
	summary.CalendarPast = res.CalendarPast
	summary.CalendarDateless = res.CalendarDateless
	summary.Mirrored = res.Mirrored
	summary.Failed += res.Failed

	r.logger.Info("Sync complete",
		logger.Field("created", res.CalendarCreated),
		logger.Field("updated", res.CalendarUpdated),
		logger.Field("skipped", res.CalendarSkipped),
		logger.Field("mirrored", res.Mirrored),
		logger.Field("failed", res.Failed))

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
