package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/myconcall-sys/myconcall/internal/entity"
)

// ParseConcallTable extracts raw concall rows from the upcoming-concalls page
// HTML. A row carries the company in the th cell (with the PDF announcement
// link) and date/time in the first two td cells. Rows without a company or a
// PDF link are ignored, matching the site's filler rows.
func ParseConcallTable(html string) ([]entity.RawConcall, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse concall page: %w", err)
	}

	var concalls []entity.RawConcall
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		th := row.Find("th")
		tds := row.Find("td")
		if th.Length() == 0 || tds.Length() < 2 {
			return
		}

		company := strings.TrimSpace(th.Contents().Not("a").Text())
		if company == "" {
			company = strings.TrimSpace(th.Text())
		}
		date := strings.TrimSpace(tds.Eq(0).Text())
		clock := strings.TrimSpace(tds.Eq(1).Text())

		var pdfURL string
		th.Find("a").EachWithBreak(func(_ int, link *goquery.Selection) bool {
			href, _ := link.Attr("href")
			if strings.Contains(strings.ToLower(href), ".pdf") {
				pdfURL = href
				return false
			}
			return true
		})

		if company == "" || pdfURL == "" {
			return
		}

		concalls = append(concalls, entity.RawConcall{
			Company: company,
			Date:    date,
			Time:    clock,
			PDFURL:  pdfURL,
		})
	})

	return concalls, nil
}

// ParseWatchlistTable extracts company names from a watchlist page. Companies
// are the first linked cell of each body row.
func ParseWatchlistTable(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse watchlist page: %w", err)
	}

	var companies []string
	seen := make(map[string]struct{})
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		name := strings.TrimSpace(row.Find("td a").First().Text())
		if name == "" {
			return
		}
		key := entity.NormalizeCompany(name)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		companies = append(companies, name)
	})

	return companies, nil
}
