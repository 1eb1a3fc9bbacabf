package entity

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// RawConcall is one row as scraped from the upcoming-concalls table, before
// any normalization.
type RawConcall struct {
	Company string
	Date    string
	Time    string
	PDFURL  string
}

// Key returns the in-run dedup key for a scraped row.
func (r RawConcall) Key() string {
	return r.Company + "|" + r.Date + "|" + r.Time
}

// ConcallEvent is one upcoming or past investor call in canonical form.
type ConcallEvent struct {
	Company string
	// StartAt is the parsed start time in IST. Zero when the scraped
	// date/time could not be parsed; such events are kept for the sheet but
	// never reach a calendar.
	StartAt time.Time
	// RawDate and RawTime keep the scraped strings for the sheet and for
	// identity of date-less events.
	RawDate   string
	RawTime   string
	Phones    []string
	SourceURL string
	// Watchlists are the names of the watchlists the company belongs to.
	Watchlists []string
}

// ID returns the deterministic fingerprint used as the identity key across
// runs and across the sheet and both calendars. Two events with the same
// (company, date, time) always collide to the same id; this is the dedup key,
// not a content hash.
func (e ConcallEvent) ID() string {
	date, clock := strings.TrimSpace(e.RawDate), strings.TrimSpace(e.RawTime)
	if !e.StartAt.IsZero() {
		date = e.StartAt.Format("2006-01-02")
		clock = e.StartAt.Format("15:04")
	}
	return Fingerprint(e.Company, date, clock)
}

// Fingerprint hashes a normalized (company, date, time) tuple into a fixed
// length hex id.
func Fingerprint(company, date, clock string) string {
	company = NormalizeCompany(company)
	sum := md5.Sum([]byte(fmt.Sprintf("%s_%s_%s", company, date, clock)))
	return hex.EncodeToString(sum[:])
}

// NormalizeCompany lower-cases and trims a company identifier so that casing
// and whitespace differences across pages do not split identities.
func NormalizeCompany(company string) string {
	return strings.ToLower(strings.TrimSpace(company))
}

// Membership maps normalized company identifiers to the set of watchlist
// names they belong to. Rebuilt fresh every run, never persisted.
type Membership map[string]map[string]struct{}

// NewMembership creates an empty Membership.
func NewMembership() Membership {
	return make(Membership)
}

// Add records that company belongs to the named watchlist.
func (m Membership) Add(company, list string) {
	key := NormalizeCompany(company)
	if m[key] == nil {
		m[key] = make(map[string]struct{})
	}
	m[key][list] = struct{}{}
}

// Has reports whether company belongs to the named watchlist.
func (m Membership) Has(company, list string) bool {
	_, ok := m[NormalizeCompany(company)][list]
	return ok
}

// Lists returns the watchlist names for company in lexical order.
func (m Membership) Lists(company string) []string {
	sets := m[NormalizeCompany(company)]
	if len(sets) == 0 {
		return nil
	}
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
