package cli

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	simulateType      string
	simulateScore     float64
	simulateSentiment float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "Push a synthetic event through the alert channel",
	RunE: func(cmd *cobra.Command, args []string) error {
		score := decimal.NewFromFloat(simulateScore)
		sentiment := decimal.NewFromFloat(simulateSentiment)
		return getApp().SimulateAlert(cmd.Context(), simulateType, score, sentiment)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateType, "type", "min", "Event type to simulate (min or max)")
	simulateCmd.Flags().Float64Var(&simulateScore, "score", 1.5, "Extremity score for the synthetic event")
	simulateCmd.Flags().Float64Var(&simulateSentiment, "sentiment", -0.8, "Sentiment reading for the synthetic event")
}
