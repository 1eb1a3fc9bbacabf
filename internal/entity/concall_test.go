package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoc(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	return loc
}

func TestConcallEventID_StableAcrossRuns(t *testing.T) {
	loc := mustLoc(t)
	start := time.Date(2024, 3, 1, 11, 0, 0, 0, loc)

	first := ConcallEvent{Company: "Acme Corp", StartAt: start}
	second := ConcallEvent{Company: "Acme Corp", StartAt: start}

	assert.Equal(t, first.ID(), second.ID())
	assert.Len(t, first.ID(), 32)
}

func TestConcallEventID_NormalizesCompany(t *testing.T) {
	loc := mustLoc(t)
	start := time.Date(2024, 3, 1, 11, 0, 0, 0, loc)

	a := ConcallEvent{Company: "Acme Corp", StartAt: start}
	b := ConcallEvent{Company: "  ACME CORP  ", StartAt: start}

	assert.Equal(t, a.ID(), b.ID())
}

func TestConcallEventID_ChangesWithAnyInput(t *testing.T) {
	loc := mustLoc(t)
	start := time.Date(2024, 3, 1, 11, 0, 0, 0, loc)
	base := ConcallEvent{Company: "Acme Corp", StartAt: start}

	otherCompany := ConcallEvent{Company: "Acme Ltd", StartAt: start}
	otherDay := ConcallEvent{Company: "Acme Corp", StartAt: start.AddDate(0, 0, 1)}
	otherTime := ConcallEvent{Company: "Acme Corp", StartAt: start.Add(30 * time.Minute)}

	assert.NotEqual(t, base.ID(), otherCompany.ID())
	assert.NotEqual(t, base.ID(), otherDay.ID())
	assert.NotEqual(t, base.ID(), otherTime.ID())
}

func TestConcallEventID_DatelessFallsBackToRawStrings(t *testing.T) {
	a := ConcallEvent{Company: "Acme Corp", RawDate: "someday", RawTime: "noonish"}
	b := ConcallEvent{Company: "Acme Corp", RawDate: "someday", RawTime: "noonish"}
	c := ConcallEvent{Company: "Acme Corp", RawDate: "someday", RawTime: "morningish"}

	assert.Equal(t, a.ID(), b.ID())
	assert.NotEqual(t, a.ID(), c.ID())
}

func TestMembership(t *testing.T) {
	m := NewMembership()
	m.Add("Acme Corp", "My Stonks")
	m.Add("Acme Corp", "Core Watchlist")
	m.Add("Beta Ltd", "Core Watchlist")

	assert.True(t, m.Has("Acme Corp", "My Stonks"))
	assert.True(t, m.Has("  acme corp ", "My Stonks"))
	assert.False(t, m.Has("Beta Ltd", "My Stonks"))
	assert.False(t, m.Has("Gamma Inc", "Core Watchlist"))

	assert.Equal(t, []string{"Core Watchlist", "My Stonks"}, m.Lists("acme corp"))
	assert.Nil(t, m.Lists("Gamma Inc"))
}
