package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sentiment-event-alerts/internal/app"
)

var (
	importInput  string
	importDryRun bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk-load a CSV sentiment series into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		if importInput == "" {
			return fmt.Errorf("--input must be provided")
		}

		opts := app.ImportOptions{
			Input:  importInput,
			DryRun: importDryRun,
		}
		return getApp().Import(cmd.Context(), opts)
	},
}

func init() {
	importCmd.Flags().StringVar(&importInput, "input", "", "Path to input CSV")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Parse and validate without writing to storage")
}
