package syncer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/myconcall-sys/myconcall/internal/config"
	"github.com/myconcall-sys/myconcall/internal/entity"
	"github.com/myconcall-sys/myconcall/pkg/logger"
)

// SheetRow is the tabular representation of one concall in the spreadsheet.
// ConcallID lands in the last (hidden) column and is the upsert key.
type SheetRow struct {
	Company    string
	Date       string
	Time       string
	Phones     string
	PDFURL     string
	Watchlists string
	ConcallID  string
}

// Values returns the row in sheet column order.
func (r SheetRow) Values() []interface{} {
	return []interface{}{r.Company, r.Date, r.Time, r.Phones, r.PDFURL, r.Watchlists, r.ConcallID}
}

// SheetStore is the spreadsheet side of the sync engine.
type SheetStore interface {
	// EnsureHeader writes the header row and its formatting once per run.
	EnsureHeader(ctx context.Context) error
	// LoadIndex maps concall_id to its 1-based row number.
	LoadIndex(ctx context.Context) (map[string]int, error)
	Append(ctx context.Context, row SheetRow) error
	Update(ctx context.Context, rowNum int, row SheetRow) error
}

// CalendarRecord is the engine's view of an already-published calendar event.
type CalendarRecord struct {
	RecordID    string
	Summary     string
	Description string
	ColorID     string
}

// CalendarEntry is a calendar event to be written.
type CalendarEntry struct {
	ConcallID   string
	Summary     string
	Description string
	ColorID     string
	Start       time.Time
	End         time.Time
}

// CalendarStore is the calendar side of the sync engine. Identity scoping is
// per calendar: the same concall_id may exist independently in each target.
type CalendarStore interface {
	// LoadIndex lists records starting at or after from and maps concall_id
	// to the record. Built once per calendar per run.
	LoadIndex(ctx context.Context, calendarID string, from time.Time) (map[string]CalendarRecord, error)
	Insert(ctx context.Context, calendarID string, entry CalendarEntry) error
	Update(ctx context.Context, calendarID, recordID string, entry CalendarEntry) error
}

// Result is the consistent snapshot of what one Sync pass did.
type Result struct {
	SheetAppended    int
	SheetUpdated     int
	CalendarCreated  int
	CalendarUpdated  int
	CalendarSkipped  int
	CalendarPast     int
	CalendarDateless int
	Mirrored         int
	Failed           int
}

// Engine reconciles normalized events against the spreadsheet and the two
// calendar targets. The global invariant is at most one record per
// concall_id per store; every operation is idempotent under that key, so a
// rerun after a partial failure is self-healing.
type Engine struct {
	sheet             SheetStore
	calendars         CalendarStore
	concallCalendarID string
	mainCalendarID    string
	mirrorList        string
	coreList          string
	duration          time.Duration
	logger            *logger.Logger
}

// NewEngine creates a sync engine.
func NewEngine(sheet SheetStore, calendars CalendarStore, gcfg config.Google, wcfg config.Watchlists, log *logger.Logger) *Engine {
	return &Engine{
		sheet:             sheet,
		calendars:         calendars,
		concallCalendarID: gcfg.ConcallCalendarID,
		mainCalendarID:    gcfg.MainCalendarID,
		mirrorList:        wcfg.MirrorList,
		coreList:          wcfg.CoreList,
		duration:          gcfg.EventDuration,
		logger:            log,
	}
}

// Sync processes the full event set and returns the run's counters.
//
// Iteration order: ascending start time, with date-less events last; ties and
// date-less events keep their scrape order. The color policy's rotating
// counters advance in this order, so color assignment is reproducible for
// identical input data.
//
// Per-event store errors are absorbed and counted; Sync itself only fails
// when it cannot even start (nothing to do today, so it never returns error).
func (e *Engine) Sync(ctx context.Context, events []entity.ConcallEvent, membership entity.Membership, now time.Time) Result {
	var res Result

	ordered := SortEvents(events)
	overlaps := OverlapSet(ordered, e.duration)

	sheetIdx, sheetOK := e.loadSheetIndex(ctx, &res)
	concallIdx, concallOK := e.loadCalendarIndex(ctx, e.concallCalendarID, now, &res)
	mainIdx, mainOK := e.loadCalendarIndex(ctx, e.mainCalendarID, now, &res)

	var colors ColorState
	processed := make(map[string]struct{})

	for _, ev := range ordered {
		id := ev.ID()

		// First occurrence wins; a second event collapsing to the same id
		// would otherwise break the one-record-per-id invariant.
		if _, ok := processed[id]; ok {
			e.logger.Warn("Duplicate concall id in run, skipping",
				logger.Field("company", ev.Company), logger.Field("concall_id", id))
			continue
		}
		processed[id] = struct{}{}

		if sheetOK {
			e.upsertSheetRow(ctx, ev, id, sheetIdx, &res)
		}

		// Past and date-less events never reach a calendar. Hard filter:
		// no backfilling of invites for calls that already happened.
		if ev.StartAt.IsZero() {
			res.CalendarDateless++
			continue
		}
		if ev.StartAt.Before(now) {
			res.CalendarPast++
			continue
		}

		inMirror := membership.Has(ev.Company, e.mirrorList)
		inCore := membership.Has(ev.Company, e.coreList)

		var colorID string
		colorID, colors = AssignColor(inMirror, inCore, overlaps[id], colors)
		entry := e.buildEntry(ev, id, colorID)

		if concallOK {
			e.upsertCalendarEvent(ctx, e.concallCalendarID, entry, concallIdx[id], &res)
		} else {
			res.Failed++
		}

		if inMirror {
			if mainOK {
				e.mirrorToMainCalendar(ctx, entry, mainIdx, &res)
			} else {
				res.Failed++
			}
		}
	}

	return res
}

// upsertSheetRow guarantees at most one row per concall_id: update when the
// id exists, append otherwise.
func (e *Engine) upsertSheetRow(ctx context.Context, ev entity.ConcallEvent, id string, idx map[string]int, res *Result) {
	row := e.buildRow(ev, id)

	if rowNum, ok := idx[id]; ok {
		if err := e.sheet.Update(ctx, rowNum, row); err != nil {
			e.logger.Warn("Sheet row update failed",
				logger.Field("company", ev.Company), logger.ErrorField(err))
			res.Failed++
			return
		}
		res.SheetUpdated++
		return
	}

	if err := e.sheet.Append(ctx, row); err != nil {
		e.logger.Warn("Sheet row append failed",
			logger.Field("company", ev.Company), logger.ErrorField(err))
		res.Failed++
		return
	}
	res.SheetAppended++
}

// upsertCalendarEvent creates the record when the id is absent and updates it
// in place only when summary, description, or color changed; otherwise it is
// an idempotent no-op.
func (e *Engine) upsertCalendarEvent(ctx context.Context, calendarID string, entry CalendarEntry, existing CalendarRecord, res *Result) {
	if existing.RecordID == "" {
		if err := e.calendars.Insert(ctx, calendarID, entry); err != nil {
			e.logger.Warn("Calendar insert failed",
				logger.Field("summary", entry.Summary), logger.ErrorField(err))
			res.Failed++
			return
		}
		res.CalendarCreated++
		return
	}

	if existing.Summary == entry.Summary &&
		existing.Description == entry.Description &&
		existing.ColorID == entry.ColorID {
		res.CalendarSkipped++
		return
	}

	if err := e.calendars.Update(ctx, calendarID, existing.RecordID, entry); err != nil {
		e.logger.Warn("Calendar update failed",
			logger.Field("summary", entry.Summary), logger.ErrorField(err))
		res.Failed++
		return
	}
	res.CalendarUpdated++
}

// mirrorToMainCalendar copies the entry into the shared main calendar when no
// record with the same id exists there. The mirror is an independent record;
// sharing the concall_id is legal because identity scoping is per calendar.
func (e *Engine) mirrorToMainCalendar(ctx context.Context, entry CalendarEntry, mainIdx map[string]CalendarRecord, res *Result) {
	if _, ok := mainIdx[entry.ConcallID]; ok {
		return
	}
	if err := e.calendars.Insert(ctx, e.mainCalendarID, entry); err != nil {
		e.logger.Warn("Mirror insert failed",
			logger.Field("summary", entry.Summary), logger.ErrorField(err))
		res.Failed++
		return
	}
	res.Mirrored++
}

func (e *Engine) loadSheetIndex(ctx context.Context, res *Result) (map[string]int, bool) {
	if err := e.sheet.EnsureHeader(ctx); err != nil {
		e.logger.Warn("Sheet header setup failed", logger.ErrorField(err))
	}
	idx, err := e.sheet.LoadIndex(ctx)
	if err != nil {
		e.logger.Error("Sheet index unavailable, skipping sheet writes this run", logger.ErrorField(err))
		res.Failed++
		return nil, false
	}
	return idx, true
}

// loadCalendarIndex builds the per-calendar id index once per run. When the
// index cannot be built the calendar's writes are disabled for the run:
// creating blindly without the index could duplicate records.
func (e *Engine) loadCalendarIndex(ctx context.Context, calendarID string, from time.Time, res *Result) (map[string]CalendarRecord, bool) {
	idx, err := e.calendars.LoadIndex(ctx, calendarID, from)
	if err != nil {
		e.logger.Error("Calendar index unavailable, skipping its writes this run",
			logger.Field("calendar_id", calendarID), logger.ErrorField(err))
		res.Failed++
		return nil, false
	}
	return idx, true
}

func (e *Engine) buildRow(ev entity.ConcallEvent, id string) SheetRow {
	phones := "Not found"
	if len(ev.Phones) > 0 {
		phones = strings.Join(ev.Phones, "; ")
	}
	return SheetRow{
		Company:    ev.Company,
		Date:       ev.RawDate,
		Time:       ev.RawTime,
		Phones:     phones,
		PDFURL:     ev.SourceURL,
		Watchlists: strings.Join(ev.Watchlists, ", "),
		ConcallID:  id,
	}
}

func (e *Engine) buildEntry(ev entity.ConcallEvent, id, colorID string) CalendarEntry {
	phones := "Not found"
	if len(ev.Phones) > 0 {
		phones = strings.Join(ev.Phones, "; ")
	}

	description := fmt.Sprintf(
		"Dial-in: %s\n\nDate: %s\nTime: %s\n\nPDF Announcement:\n%s\n\n---\nAuto-synced from Screener.in",
		phones, ev.RawDate, ev.RawTime, ev.SourceURL,
	)

	return CalendarEntry{
		ConcallID:   id,
		Summary:     fmt.Sprintf("📞 %s - Concall", ev.Company),
		Description: description,
		ColorID:     colorID,
		Start:       ev.StartAt,
		End:         ev.StartAt.Add(e.duration),
	}
}

// SortEvents returns a copy of events in the engine's documented iteration
// order: ascending start time, date-less events last, ties in scrape order.
func SortEvents(events []entity.ConcallEvent) []entity.ConcallEvent {
	ordered := make([]entity.ConcallEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].StartAt, ordered[j].StartAt
		if a.IsZero() {
			return false
		}
		if b.IsZero() {
			return true
		}
		return a.Before(b)
	})
	return ordered
}
