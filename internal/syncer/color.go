package syncer

import (
	"time"

	"github.com/myconcall-sys/myconcall/internal/entity"
)

// Google Calendar color ids (1-11): Lavender, Sage, Grape, Flamingo, Banana,
// Tangerine, Peacock, Graphite, Blueberry, Basil, Tomato.
const mirrorColorID = "11" // Tomato

var (
	// Blueberry, Basil, Tangerine.
	coreColorIDs = []string{"9", "10", "6"}
	// Lavender through Peacock.
	overlapColorIDs = []string{"1", "2", "3", "4", "5", "6", "7"}
)

// ColorState carries the rotating counters of the color policy across one
// run. It is threaded explicitly through AssignColor so the policy stays a
// pure function; there is no package-level mutable state.
type ColorState struct {
	Core    int
	Overlap int
}

// AssignColor picks a calendar color for one event and returns the advanced
// state. Precedence: mirror-list membership wins, then core-list membership
// with a three-color rotation, then same-day overlap with a seven-color
// rotation, otherwise the calendar default (empty id).
//
// For a fixed input ordering the assignment is reproducible; callers must
// feed events in the engine's documented iteration order.
func AssignColor(inMirror, inCore, overlapping bool, st ColorState) (string, ColorState) {
	switch {
	case inMirror:
		return mirrorColorID, st
	case inCore:
		id := coreColorIDs[st.Core%len(coreColorIDs)]
		st.Core++
		return id, st
	case overlapping:
		id := overlapColorIDs[st.Overlap%len(overlapColorIDs)]
		st.Overlap++
		return id, st
	}
	return "", st
}

// OverlapSet returns the ids of events whose time window intersects another
// event's window on the same calendar day. Date-less events are ignored.
func OverlapSet(events []entity.ConcallEvent, duration time.Duration) map[string]bool {
	byDay := make(map[string][]entity.ConcallEvent)
	for _, ev := range events {
		if ev.StartAt.IsZero() {
			continue
		}
		day := ev.StartAt.Format("2006-01-02")
		byDay[day] = append(byDay[day], ev)
	}

	overlaps := make(map[string]bool)
	for _, group := range byDay {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if a.StartAt.Before(b.StartAt.Add(duration)) && b.StartAt.Before(a.StartAt.Add(duration)) {
					overlaps[a.ID()] = true
					overlaps[b.ID()] = true
				}
			}
		}
	}
	return overlaps
}
