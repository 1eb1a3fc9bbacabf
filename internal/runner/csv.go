package runner

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/myconcall-sys/myconcall/internal/entity"
)

// WriteCSVBackup saves the run's events to a local CSV file as a plain-text
// backup of what was published.
func WriteCSVBackup(path string, events []entity.ConcallEvent) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV backup: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Company Name", "Date", "Time", "Phone Number", "PDF Link"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, ev := range events {
		record := []string{ev.Company, ev.RawDate, ev.RawTime, strings.Join(ev.Phones, "; "), ev.SourceURL}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
