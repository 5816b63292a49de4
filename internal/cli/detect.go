package cli

import (
	"github.com/spf13/cobra"

	"sentiment-event-alerts/internal/app"
)

var (
	detectInput     string
	detectOutput    string
	detectPNG       string
	detectPersist   bool
	detectSmoothing int
	detectWindow    int
	detectLookahead int
	detectTopK      int
	detectMinSep    int
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Run event detection once over a CSV series",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp()

		cfg := a.Config.Detector
		if detectSmoothing >= 0 {
			cfg.SmoothingWindow = detectSmoothing
		}
		if detectWindow >= 0 {
			cfg.ExtremaHalfWindow = detectWindow
		}
		if detectLookahead >= 0 {
			cfg.LookaheadDays = detectLookahead
		}
		if detectTopK >= 0 {
			cfg.TopKPerYear = detectTopK
		}
		if detectMinSep >= 0 {
			cfg.MinSeparationDays = detectMinSep
		}

		opts := app.DetectOptions{
			Input:    detectInput,
			CSVPath:  detectOutput,
			PNGPath:  detectPNG,
			Persist:  detectPersist,
			Detector: cfg,
		}
		return a.Detect(cmd.Context(), opts)
	},
}

func init() {
	detectCmd.Flags().StringVar(&detectInput, "input", "", "Path to input CSV (defaults to configured loader)")
	detectCmd.Flags().StringVar(&detectOutput, "output", "", "Path to write labeled CSV")
	detectCmd.Flags().StringVar(&detectPNG, "png", "", "Path to write annotated chart")
	detectCmd.Flags().BoolVar(&detectPersist, "persist", false, "Write results to the database")
	detectCmd.Flags().IntVar(&detectSmoothing, "smoothing-window", -1, "Centered moving average window, odd (defaults to config)")
	detectCmd.Flags().IntVar(&detectWindow, "window-days", -1, "Extrema half-window in observations (defaults to config)")
	detectCmd.Flags().IntVar(&detectLookahead, "reversal-days", -1, "Lookahead horizon for the extremity score (defaults to config)")
	detectCmd.Flags().IntVar(&detectTopK, "top-k", -1, "Events to keep per year per type (defaults to config)")
	detectCmd.Flags().IntVar(&detectMinSep, "min-separation-days", -1, "Minimum day gap between selected events (defaults to config)")
}
