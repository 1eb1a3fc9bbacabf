package common

const (
	// TimeZoneIST is the canonical timezone for every scraped timestamp.
	// Screener.in publishes concall schedules in Indian Standard Time.
	TimeZoneIST = "Asia/Kolkata"

	// DateTimeLayout matches the site's announcement format,
	// e.g. "24 January 2026 9:30:00 AM".
	DateTimeLayout = "2 January 2006 3:04:05 PM"

	// UserAgent identifies the bot on PDF downloads.
	UserAgent = "Mozilla/5.0 (compatible; ConcallsBot/1.0)"
)
