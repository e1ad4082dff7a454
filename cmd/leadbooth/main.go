package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:     "leadbooth",
	Short:   "Trade-show lead capture backend",
	Version: version,
	Long: `leadbooth runs the lead capture backend for trade-show booths:
a single HTTP endpoint that accepts lead submissions from the capture form,
stores them as rows in a tracking table, uploads business card and badge
photos to Google Drive, and answers lead searches and pre-booked meeting
updates.`,
}

func main() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(meetingCmd)
	rootCmd.AddCommand(configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
