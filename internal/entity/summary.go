package entity

import (
	"fmt"
	"strings"
	"time"
)

// RunSummary is the consistent snapshot of one pipeline run, reported by the
// notifier at the end.
type RunSummary struct {
	StartedAt  time.Time
	FinishedAt time.Time

	Scraped      int
	Extracted    int
	PhoneMissing int

	SheetAppended int
	SheetUpdated  int

	CalendarCreated  int
	CalendarUpdated  int
	CalendarSkipped  int
	CalendarPast     int
	CalendarDateless int

	Mirrored int
	Failed   int

	FatalError string
}

// NewRunSummary creates a summary anchored at the run start time.
func NewRunSummary(startedAt time.Time) *RunSummary {
	return &RunSummary{StartedAt: startedAt}
}

// Succeeded reports whether the run finished without a fatal error.
func (s *RunSummary) Succeeded() bool {
	return s.FatalError == ""
}

// Subject returns the notification subject line.
func (s *RunSummary) Subject() string {
	if s.Succeeded() {
		return fmt.Sprintf("Concall sync OK: %d scraped, %d created", s.Scraped, s.CalendarCreated)
	}
	return "Concall sync FAILED"
}

// String renders the notification body.
func (s *RunSummary) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Concall sync run %s\n", s.StartedAt.Format("2006-01-02 15:04 MST"))
	if !s.FinishedAt.IsZero() {
		fmt.Fprintf(&b, "Duration: %s\n", s.FinishedAt.Sub(s.StartedAt).Round(time.Second))
	}
	b.WriteString("\n")

	if !s.Succeeded() {
		fmt.Fprintf(&b, "FATAL: %s\n\n", s.FatalError)
	}

	fmt.Fprintf(&b, "Scraped:            %d\n", s.Scraped)
	fmt.Fprintf(&b, "Phones extracted:   %d (missing: %d)\n", s.Extracted, s.PhoneMissing)
	fmt.Fprintf(&b, "Sheet rows:         %d appended, %d updated\n", s.SheetAppended, s.SheetUpdated)
	fmt.Fprintf(&b, "Calendar:           %d created, %d updated, %d unchanged\n",
		s.CalendarCreated, s.CalendarUpdated, s.CalendarSkipped)
	fmt.Fprintf(&b, "Calendar skipped:   %d past, %d without date\n", s.CalendarPast, s.CalendarDateless)
	fmt.Fprintf(&b, "Mirrored:           %d\n", s.Mirrored)
	fmt.Fprintf(&b, "Failed items:       %d\n", s.Failed)

	return b.String()
}
