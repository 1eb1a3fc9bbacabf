package syncer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/myconcall-sys/myconcall/internal/entity"
)

func TestAssignColor_MirrorWins(t *testing.T) {
	color, st := AssignColor(true, true, true, ColorState{})
	assert.Equal(t, "11", color)
	// Mirror assignment does not consume a rotation slot.
	assert.Equal(t, ColorState{}, st)
}

func TestAssignColor_CoreRotation(t *testing.T) {
	var st ColorState
	var colors []string
	for i := 0; i < 4; i++ {
		var c string
		c, st = AssignColor(false, true, false, st)
		colors = append(colors, c)
	}

	assert.Equal(t, []string{"9", "10", "6", "9"}, colors)
	assert.Equal(t, 4, st.Core)
	assert.Equal(t, 0, st.Overlap)
}

func TestAssignColor_OverlapRotation(t *testing.T) {
	var st ColorState
	var colors []string
	for i := 0; i < 8; i++ {
		var c string
		c, st = AssignColor(false, false, true, st)
		colors = append(colors, c)
	}

	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6", "7", "1"}, colors)
	assert.Equal(t, 8, st.Overlap)
}

func TestAssignColor_DefaultWhenNothingApplies(t *testing.T) {
	color, st := AssignColor(false, false, false, ColorState{Core: 2, Overlap: 5})
	assert.Equal(t, "", color)
	assert.Equal(t, ColorState{Core: 2, Overlap: 5}, st)
}

func TestAssignColor_Deterministic(t *testing.T) {
	inputs := []struct{ mirror, core, overlap bool }{
		{false, true, false},
		{false, false, true},
		{true, false, false},
		{false, true, true},
		{false, false, true},
		{false, false, false},
	}

	run := func() []string {
		var st ColorState
		var out []string
		for _, in := range inputs {
			var c string
			c, st = AssignColor(in.mirror, in.core, in.overlap, st)
			out = append(out, c)
		}
		return out
	}

	assert.Equal(t, run(), run())
}

func TestOverlapSet(t *testing.T) {
	loc := istLocation(t)
	day := time.Date(2026, 1, 24, 0, 0, 0, 0, loc)

	a := entity.ConcallEvent{Company: "A", StartAt: day.Add(9 * time.Hour)}
	b := entity.ConcallEvent{Company: "B", StartAt: day.Add(9*time.Hour + 30*time.Minute)}
	c := entity.ConcallEvent{Company: "C", StartAt: day.Add(14 * time.Hour)}
	// Same clock time next day must not count as an overlap.
	d := entity.ConcallEvent{Company: "D", StartAt: day.AddDate(0, 0, 1).Add(9 * time.Hour)}
	dateless := entity.ConcallEvent{Company: "E", RawDate: "unknown"}

	overlaps := OverlapSet([]entity.ConcallEvent{a, b, c, d, dateless}, time.Hour)

	assert.True(t, overlaps[a.ID()])
	assert.True(t, overlaps[b.ID()])
	assert.False(t, overlaps[c.ID()])
	assert.False(t, overlaps[d.ID()])
	assert.False(t, overlaps[dateless.ID()])
}

func TestOverlapSet_BackToBackDoesNotOverlap(t *testing.T) {
	loc := istLocation(t)
	day := time.Date(2026, 1, 24, 0, 0, 0, 0, loc)

	a := entity.ConcallEvent{Company: "A", StartAt: day.Add(9 * time.Hour)}
	b := entity.ConcallEvent{Company: "B", StartAt: day.Add(10 * time.Hour)}

	overlaps := OverlapSet([]entity.ConcallEvent{a, b}, time.Hour)
	assert.Empty(t, overlaps)
}
