package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/myconcall-sys/myconcall/internal/config"
	"github.com/myconcall-sys/myconcall/internal/entity"
	"github.com/myconcall-sys/myconcall/pkg/logger"
)

// ErrAuthFailed indicates the login flow did not leave the login page.
// Authentication failure is fatal: the run aborts before any external write.
var ErrAuthFailed = fmt.Errorf("screener login failed")

// Scraper drives a headless Chromium session against Screener.in.
type Scraper struct {
	cfg        config.Screener
	watchlists []config.Watchlist
	logger     *logger.Logger

	browserCtx  context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// New creates a Scraper with its own browser allocator. Close must be called
// to tear the browser down.
func New(parent context.Context, cfg config.Screener, watchlists []config.Watchlist, log *logger.Logger) *Scraper {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.WindowSize(1920, 1080),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	return &Scraper{
		cfg:         cfg,
		watchlists:  watchlists,
		logger:      log,
		browserCtx:  browserCtx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
	}
}

// Close shuts down the browser session.
func (s *Scraper) Close() {
	s.cancelCtx()
	s.cancelAlloc()
}

// Login authenticates the browser session. It returns ErrAuthFailed when the
// session remains on the login page after submitting credentials.
func (s *Scraper) Login(ctx context.Context) error {
	s.logger.Info("Logging in to Screener.in")

	runCtx, cancel := context.WithTimeout(s.browserCtx, s.cfg.PageTimeout+5*time.Second)
	defer cancel()

	var currentURL string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(s.cfg.BaseURL+"/login/"),
		chromedp.WaitVisible(`input[name="username"]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="username"]`, s.cfg.Username, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="password"]`, s.cfg.Password, chromedp.ByQuery),
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
		// Allow the post-login redirect to settle.
		chromedp.Sleep(3*time.Second),
		chromedp.Location(&currentURL),
	)
	if err != nil {
		return fmt.Errorf("failed to run login flow: %w", err)
	}

	if strings.Contains(strings.ToLower(currentURL), "login") {
		return ErrAuthFailed
	}

	s.logger.Info("Login successful")
	return nil
}

// FetchConcalls pages through the upcoming-concalls listing until the target
// count is reached or a page yields no rows. Rows are deduplicated in-run by
// (company, date, time).
func (s *Scraper) FetchConcalls(ctx context.Context) ([]entity.RawConcall, error) {
	s.logger.Info("Fetching upcoming concalls", logger.Field("target", s.cfg.TargetConcall))

	var all []entity.RawConcall
	seen := make(map[string]struct{})

	for page := 1; len(all) < s.cfg.TargetConcall; page++ {
		rows, err := s.fetchConcallPage(page)
		if err != nil {
			s.logger.Warn("Concall page failed, stopping pagination",
				logger.Field("page", page), logger.ErrorField(err))
			break
		}
		s.logger.Info("Scraped concall page",
			logger.Field("page", page), logger.Field("rows", len(rows)))
		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			if _, ok := seen[row.Key()]; ok {
				continue
			}
			seen[row.Key()] = struct{}{}
			all = append(all, row)
		}
	}

	if len(all) > s.cfg.TargetConcall {
		all = all[:s.cfg.TargetConcall]
	}

	s.logger.Info("Concall scrape complete", logger.Field("total", len(all)))
	return all, nil
}

func (s *Scraper) fetchConcallPage(page int) ([]entity.RawConcall, error) {
	runCtx, cancel := context.WithTimeout(s.browserCtx, s.cfg.PageTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/concalls/upcoming/?p=%d", s.cfg.BaseURL, page)

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible("table", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load concall page %d: %w", page, err)
	}

	return ParseConcallTable(html)
}

// FetchWatchlists loads each configured watchlist page and builds the
// company-to-watchlist membership for this run. A single failing watchlist is
// logged and skipped; membership is best effort.
func (s *Scraper) FetchWatchlists(ctx context.Context) (entity.Membership, error) {
	membership := entity.NewMembership()

	for _, wl := range s.watchlists {
		companies, err := s.fetchWatchlistPage(wl.URL)
		if err != nil {
			s.logger.Warn("Watchlist fetch failed",
				logger.Field("watchlist", wl.Name), logger.ErrorField(err))
			continue
		}
		for _, company := range companies {
			membership.Add(company, wl.Name)
		}
		s.logger.Info("Fetched watchlist",
			logger.Field("watchlist", wl.Name), logger.Field("companies", len(companies)))
	}

	return membership, nil
}

func (s *Scraper) fetchWatchlistPage(url string) ([]string, error) {
	runCtx, cancel := context.WithTimeout(s.browserCtx, s.cfg.PageTimeout)
	defer cancel()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible("table", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load watchlist page: %w", err)
	}

	return ParseWatchlistTable(html)
}
