package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/wildfire-risk/internal/risk"
)

func newExplainCommand() *cobra.Command {
	var month int

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Print feature importance for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now().UTC()
			if month != 0 {
				if month < 1 || month > 12 {
					return fmt.Errorf("--month must be 1-12, got %d", month)
				}
				now = time.Date(now.Year(), time.Month(month), 15, 0, 0, 0, 0, time.UTC)
			}
			return writeJSON(cmd.OutOrStdout(), risk.Explain(now))
		},
	}
	cmd.Flags().IntVar(&month, "month", 0, "Month 1-12 (current month when unset)")
	return cmd
}
