package syncer

import (
	"fmt"
	"strings"
	"time"

	"github.com/myconcall-sys/myconcall/internal/entity"
	"github.com/myconcall-sys/myconcall/pkg/common"
)

// Normalize turns a scraped row into a canonical ConcallEvent. It is a pure
// transform: no side effects, no clock reads.
//
// On a parse failure the returned event carries the raw date/time strings and
// a zero StartAt together with the error; the caller keeps such events for
// the spreadsheet but they never reach a calendar.
func Normalize(raw entity.RawConcall, loc *time.Location) (entity.ConcallEvent, error) {
	ev := entity.ConcallEvent{
		Company:   strings.TrimSpace(raw.Company),
		RawDate:   strings.TrimSpace(raw.Date),
		RawTime:   strings.TrimSpace(raw.Time),
		SourceURL: raw.PDFURL,
	}

	combined := ev.RawDate + " " + ev.RawTime
	startAt, err := time.ParseInLocation(common.DateTimeLayout, combined, loc)
	if err != nil {
		return ev, fmt.Errorf("failed to parse concall datetime %q: %w", combined, err)
	}

	ev.StartAt = startAt
	return ev, nil
}
