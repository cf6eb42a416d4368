package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/i474232898/wildfire-risk/internal/observability"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wildfirectl",
		Short: "Score and explain wildfire probabilities",
		Long: `wildfirectl scores wildfire probability with the tree ensemble.

It can score explicit conditions offline, print the seasonal feature
importance, or ask a running wildfire-risk server to assess a place.`,
		Version:      version,
		SilenceUsage: true,
	}

	logLevel := cmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		observability.SetupLogger(*logLevel, "console")
	}

	cmd.AddCommand(newPredictCommand())
	cmd.AddCommand(newExplainCommand())
	cmd.AddCommand(newAssessCommand())

	return cmd
}

func execute() error {
	return newRootCommand().Execute()
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
