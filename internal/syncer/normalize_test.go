package syncer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myconcall-sys/myconcall/internal/entity"
)

func istLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	return loc
}

func TestNormalize(t *testing.T) {
	loc := istLocation(t)

	raw := entity.RawConcall{
		Company: " Acme Corp ",
		Date:    "24 January 2026",
		Time:    "9:30:00 AM",
		PDFURL:  "https://example.com/announcement.pdf",
	}

	ev, err := Normalize(raw, loc)
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", ev.Company)
	assert.Equal(t, time.Date(2026, 1, 24, 9, 30, 0, 0, loc), ev.StartAt)
	assert.Equal(t, "24 January 2026", ev.RawDate)
	assert.Equal(t, "9:30:00 AM", ev.RawTime)
	assert.Equal(t, "https://example.com/announcement.pdf", ev.SourceURL)
}

func TestNormalize_Afternoon(t *testing.T) {
	loc := istLocation(t)

	ev, err := Normalize(entity.RawConcall{
		Company: "Beta Ltd",
		Date:    "1 March 2024",
		Time:    "4:00:00 PM",
	}, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 16, 0, 0, 0, loc), ev.StartAt)
}

func TestNormalize_ParseFailureKeepsRawFields(t *testing.T) {
	loc := istLocation(t)

	ev, err := Normalize(entity.RawConcall{
		Company: "Acme Corp",
		Date:    "sometime soon",
		Time:    "TBD",
		PDFURL:  "https://example.com/a.pdf",
	}, loc)

	require.Error(t, err)
	assert.True(t, ev.StartAt.IsZero())
	assert.Equal(t, "Acme Corp", ev.Company)
	assert.Equal(t, "sometime soon", ev.RawDate)
	assert.Equal(t, "TBD", ev.RawTime)
	assert.NotEmpty(t, ev.ID())
}

func TestNormalize_IdentityStableAcrossScrapes(t *testing.T) {
	loc := istLocation(t)
	raw := entity.RawConcall{Company: "Acme Corp", Date: "1 March 2024", Time: "11:00:00 AM"}

	first, err := Normalize(raw, loc)
	require.NoError(t, err)
	second, err := Normalize(raw, loc)
	require.NoError(t, err)

	assert.Equal(t, first.ID(), second.ID())
}
