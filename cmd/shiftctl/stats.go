package main

import (
	"fmt"
	"io"
	"time"

	"github.com/arnavshah/shiftledger-api/pkg/config"
	"github.com/arnavshah/shiftledger-api/pkg/models"
	"github.com/arnavshah/shiftledger-api/pkg/stats"
	"github.com/spf13/cobra"
)

var statsNow string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print hours and earnings for today, this month and this year",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsNow, "now", "", "Reference instant as RFC3339 (default: now)")
}

func runStats(cmd *cobra.Command, args []string) error {
	now := time.Now()
	if statsNow != "" {
		t, err := time.Parse(time.RFC3339, statsNow)
		if err != nil {
			return fmt.Errorf("--now must be RFC3339: %w", err)
		}
		now = t.In(time.Local)
	}

	s, err := openStore(config.Load())
	if err != nil {
		return err
	}
	shifts, err := s.GetAll(cmd.Context())
	if err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), stats.Summarize(shifts, now))
	return nil
}

func printSummary(w io.Writer, sum models.Summary) {
	rows := []struct {
		label string
		stats models.Stats
	}{
		{"Today", sum.Day},
		{"This month", sum.Month},
		{"This year", sum.Year},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-11s %6.1fh  %10.2f\n", r.label, r.stats.TotalHours, r.stats.TotalEarnings)
	}
}
