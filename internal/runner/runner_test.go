package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myconcall-sys/myconcall/internal/config"
	"github.com/myconcall-sys/myconcall/internal/entity"
	"github.com/myconcall-sys/myconcall/internal/syncer"
	"github.com/myconcall-sys/myconcall/pkg/logger"
)

type fakeCollector struct {
	loginErr    error
	loginCalled bool
	raws        []entity.RawConcall
	fetchErr    error
	membership  entity.Membership
	watchErr    error
}

func (f *fakeCollector) Login(ctx context.Context) error {
	f.loginCalled = true
	return f.loginErr
}

func (f *fakeCollector) FetchConcalls(ctx context.Context) ([]entity.RawConcall, error) {
	return f.raws, f.fetchErr
}

func (f *fakeCollector) FetchWatchlists(ctx context.Context) (entity.Membership, error) {
	if f.watchErr != nil {
		return nil, f.watchErr
	}
	if f.membership == nil {
		return entity.NewMembership(), nil
	}
	return f.membership, nil
}

type fakePhones struct {
	phones map[string][]string
	errs   map[string]error
}

func (f *fakePhones) ExtractPhones(ctx context.Context, pdfURL string) ([]string, error) {
	if err := f.errs[pdfURL]; err != nil {
		return nil, err
	}
	return f.phones[pdfURL], nil
}

type fakeEngine struct {
	called     bool
	events     []entity.ConcallEvent
	membership entity.Membership
	res        syncer.Result
}

func (f *fakeEngine) Sync(ctx context.Context, events []entity.ConcallEvent, membership entity.Membership, now time.Time) syncer.Result {
	f.called = true
	f.events = events
	f.membership = membership
	return f.res
}

type fakeNotifier struct {
	subjects []string
	bodies   []string
}

func (f *fakeNotifier) Send(ctx context.Context, subject, body string) error {
	f.subjects = append(f.subjects, subject)
	f.bodies = append(f.bodies, body)
	return nil
}

func testRunner(t *testing.T, collector *fakeCollector, phones *fakePhones, engine *fakeEngine, n *fakeNotifier) *Runner {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	cfg := config.Runner{
		LockFile:      filepath.Join(t.TempDir(), "run.lock"),
		CSVBackupPath: filepath.Join(t.TempDir(), "concalls.csv"),
	}
	return New(cfg, collector, phones, engine, n, log, loc)
}

func TestRunner_HappyPath(t *testing.T) {
	collector := &fakeCollector{
		raws: []entity.RawConcall{
			{Company: "Acme Corp", Date: "24 January 2026", Time: "9:30:00 AM", PDFURL: "https://example.com/acme.pdf"},
			{Company: "Beta Ltd", Date: "23 January 2026", Time: "4:00:00 PM", PDFURL: "https://example.com/beta.pdf"},
		},
	}
	collector.membership = entity.NewMembership()
	collector.membership.Add("Acme Corp", "My Stonks")

	phones := &fakePhones{phones: map[string][]string{
		"https://example.com/acme.pdf": {"+91 22 6280 1234"},
	}}
	engine := &fakeEngine{res: syncer.Result{CalendarCreated: 2}}
	notify := &fakeNotifier{}

	r := testRunner(t, collector, phones, engine, notify)
	require.NoError(t, r.Run(context.Background()))

	require.True(t, engine.called)
	require.Len(t, engine.events, 2)

	// Events arrive in the documented order: ascending start time.
	assert.Equal(t, "Beta Ltd", engine.events[0].Company)
	assert.Equal(t, "Acme Corp", engine.events[1].Company)
	assert.Equal(t, []string{"+91 22 6280 1234"}, engine.events[1].Phones)
	assert.Equal(t, []string{"My Stonks"}, engine.events[1].Watchlists)

	require.Len(t, notify.subjects, 1)
	assert.Contains(t, notify.subjects[0], "OK")
	assert.Contains(t, notify.bodies[0], "Scraped")
}

func TestRunner_AuthFailureAborts(t *testing.T) {
	collector := &fakeCollector{loginErr: fmt.Errorf("bad credentials")}
	engine := &fakeEngine{}
	notify := &fakeNotifier{}

	r := testRunner(t, collector, &fakePhones{}, engine, notify)
	err := r.Run(context.Background())

	require.Error(t, err)
	assert.False(t, engine.called)
	require.Len(t, notify.subjects, 1)
	assert.Contains(t, notify.subjects[0], "FAILED")
}

func TestRunner_NoConcallsIsFatal(t *testing.T) {
	collector := &fakeCollector{}
	engine := &fakeEngine{}

	r := testRunner(t, collector, &fakePhones{}, engine, &fakeNotifier{})
	require.Error(t, r.Run(context.Background()))
	assert.False(t, engine.called)
}

func TestRunner_ExtractionFailureDoesNotAbort(t *testing.T) {
	collector := &fakeCollector{
		raws: []entity.RawConcall{
			{Company: "Acme Corp", Date: "24 January 2026", Time: "9:30:00 AM", PDFURL: "https://example.com/broken.pdf"},
		},
	}
	phones := &fakePhones{errs: map[string]error{
		"https://example.com/broken.pdf": fmt.Errorf("malformed PDF"),
	}}
	engine := &fakeEngine{}
	notify := &fakeNotifier{}

	r := testRunner(t, collector, phones, engine, notify)
	require.NoError(t, r.Run(context.Background()))

	require.True(t, engine.called)
	require.Len(t, engine.events, 1)
	assert.Empty(t, engine.events[0].Phones)
	assert.Contains(t, notify.subjects[0], "OK")
}

func TestRunner_UnparseableDateStillSynced(t *testing.T) {
	collector := &fakeCollector{
		raws: []entity.RawConcall{
			{Company: "Acme Corp", Date: "sometime soon", Time: "TBD", PDFURL: "https://example.com/a.pdf"},
		},
	}
	engine := &fakeEngine{}

	r := testRunner(t, collector, &fakePhones{}, engine, &fakeNotifier{})
	require.NoError(t, r.Run(context.Background()))

	require.Len(t, engine.events, 1)
	assert.True(t, engine.events[0].StartAt.IsZero())
	assert.Equal(t, "sometime soon", engine.events[0].RawDate)
}

func TestRunner_LockBusySkipsRun(t *testing.T) {
	collector := &fakeCollector{}
	engine := &fakeEngine{}
	notify := &fakeNotifier{}
	r := testRunner(t, collector, &fakePhones{}, engine, notify)

	held := flock.New(r.cfg.LockFile)
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer func() { _ = held.Unlock() }()

	require.NoError(t, r.Run(context.Background()))
	assert.False(t, collector.loginCalled)
	assert.False(t, engine.called)
	assert.Empty(t, notify.subjects)
}

func TestRunner_WritesCSVBackup(t *testing.T) {
	collector := &fakeCollector{
		raws: []entity.RawConcall{
			{Company: "Acme Corp", Date: "24 January 2026", Time: "9:30:00 AM", PDFURL: "https://example.com/a.pdf"},
		},
	}
	engine := &fakeEngine{}

	r := testRunner(t, collector, &fakePhones{}, engine, &fakeNotifier{})
	require.NoError(t, r.Run(context.Background()))

	data, err := os.ReadFile(r.cfg.CSVBackupPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Company Name,Date,Time,Phone Number,PDF Link")
	assert.Contains(t, string(data), "Acme Corp")
}
