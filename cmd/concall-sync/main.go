package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "concall-sync",
	Short: "Syncs upcoming Screener.in concalls to Google Sheets and Calendar",
	Long: `concall-sync logs in to Screener.in, collects upcoming conference-call
announcements, extracts dial-in numbers from the linked PDFs, and publishes
the result to a Google Sheet and one-or-two Google Calendars.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
