package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	"github.com/i474232898/wildfire-risk/internal/assessment"
)

type apiError struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func newAssessCommand() *cobra.Command {
	var (
		server  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:     "assess <location>",
		Short:   "Ask a running server to assess a location",
		Example: `  wildfirectl assess "Paradise, CA" --server http://localhost:8080`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location := strings.Join(args, " ")

			var (
				result assessment.Prediction
				failed apiError
			)
			resp, err := resty.New().
				SetTimeout(timeout).
				SetBaseURL(strings.TrimRight(server, "/")).
				R().
				SetContext(cmd.Context()).
				SetBody(map[string]string{"location": location}).
				SetResult(&result).
				SetError(&failed).
				Post("/api/v1/predict")
			if err != nil {
				return fmt.Errorf("call server: %w", err)
			}
			if resp.IsError() {
				return fmt.Errorf("server returned %d: %s (%s)", resp.StatusCode(), failed.Error, failed.Details)
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "wildfire-risk server base URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
	return cmd
}
