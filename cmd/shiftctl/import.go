package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/arnavshah/shiftledger-api/pkg/config"
	"github.com/arnavshah/shiftledger-api/pkg/models"
	"github.com/arnavshah/shiftledger-api/pkg/normalize"
	"github.com/arnavshah/shiftledger-api/pkg/tokenize"
	"github.com/spf13/cobra"
)

var (
	importYear     int
	importText     bool
	importDryRun   bool
	importLocation string
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Normalize a schedule file and save the accepted shifts",
	Long: `import reads extraction output (a JSON array of {dateStr, startTime,
endTime, workName, notes}, or an object with a "shifts" array) and saves
every shift that normalizes cleanly. With --text the file is read as a
pasted schedule note instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().IntVar(&importYear, "year", 0, "Reference year for dates without one (default: current year)")
	importCmd.Flags().BoolVar(&importText, "text", false, "Read the file as a plain-text schedule note")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Print the result without saving")
	importCmd.Flags().StringVar(&importLocation, "location", "", "Location stamped on imported shifts (default: DEFAULT_LOCATION)")
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	tokens, err := readTokens(data, importText)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	cfg := config.Load()
	year := importYear
	if year == 0 {
		year = time.Now().Year()
	}
	location := importLocation
	if location == "" {
		location = cfg.DefaultLocation
	}

	res := normalize.New(location).Normalize(tokens, year)
	printImport(cmd.OutOrStdout(), res)

	if importDryRun || len(res.Accepted) == 0 {
		return nil
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	for _, shift := range res.Accepted {
		if err := s.Upsert(cmd.Context(), shift); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d shift(s).\n", len(res.Accepted))
	return nil
}

// readTokens turns file contents into raw tokens, either through the text
// tokenizer or by decoding extraction JSON.
func readTokens(data []byte, text bool) ([]models.RawShiftToken, error) {
	if text {
		return tokenize.ParseText(string(data)), nil
	}

	var items []models.ExtractedShift
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var doc struct {
			Shifts []models.ExtractedShift `json:"shifts"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("invalid extraction JSON: %w", err)
		}
		items = doc.Shifts
	} else if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("invalid extraction JSON: %w", err)
	}
	return tokenize.FromExtraction(items), nil
}

func printImport(w io.Writer, res normalize.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, s := range res.Accepted {
		fmt.Fprintf(tw, "ok\t%s\t%s-%s\t%.1fh\t%s\n",
			s.StartTime.Format("2006-01-02"),
			s.StartTime.Format("15:04"),
			s.EndTime.Format("15:04"),
			s.DurationHours(),
			s.WorkName)
	}
	for _, r := range res.Rejected {
		fmt.Fprintf(tw, "skip\t%s\t%s-%s\t%s\t%s\n",
			r.Token.DateStr,
			r.Token.StartTimeOfDay,
			r.Token.EndTimeOfDay,
			r.Reason,
			r.Detail)
	}
	tw.Flush()
	fmt.Fprintf(w, "%d accepted, %d rejected\n", len(res.Accepted), len(res.Rejected))
}
