package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/ledongthuc/pdf"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/myconcall-sys/myconcall/internal/config"
	"github.com/myconcall-sys/myconcall/pkg/common"
	"github.com/myconcall-sys/myconcall/pkg/logger"
)

// Extractor downloads announcement PDFs and pulls dial-in numbers out of
// their text. Downloads are rate limited and retried with exponential backoff
// on transient failures; results are cached per URL for the lifetime of a run
// so duplicate announcements are fetched once.
type Extractor struct {
	cfg     config.Extractor
	client  *retryablehttp.Client
	limiter *rate.Limiter
	results *cache.Cache
	logger  *logger.Logger
}

// New creates an Extractor.
func New(cfg config.Extractor, log *logger.Logger) *Extractor {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.MaxRetry
	client.RetryWaitMin = 1 * time.Second
	client.RetryWaitMax = 8 * time.Second
	client.HTTPClient.Timeout = cfg.RequestTimeout
	client.Logger = nil

	return &Extractor{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(cfg.RateLimitDelay), 1),
		results: cache.New(30*time.Minute, time.Hour),
		logger:  log,
	}
}

// ExtractPhones downloads the PDF at pdfURL and returns the dial-in numbers
// found in its text. An empty slice with a nil error means the PDF parsed but
// contained no recognizable number.
func (e *Extractor) ExtractPhones(ctx context.Context, pdfURL string) ([]string, error) {
	if cached, ok := e.results.Get(pdfURL); ok {
		return cached.([]string), nil
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter interrupted: %w", err)
	}

	data, err := e.download(ctx, pdfURL)
	if err != nil {
		return nil, err
	}

	text, err := readPDFText(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF text: %w", err)
	}

	phones := FindPhones(text, e.cfg.MaxPhones)
	e.results.Set(pdfURL, phones, cache.DefaultExpiration)
	return phones, nil
}

func (e *Extractor) download(ctx context.Context, pdfURL string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", pdfURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF request: %w", err)
	}
	req.Header.Set("User-Agent", common.UserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download PDF: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("PDF download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF body: %w", err)
	}
	return data, nil
}

func readPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			// One unreadable page should not discard the rest.
			continue
		}
		text.WriteString(content)
		text.WriteString("\n")
	}

	return text.String(), nil
}
