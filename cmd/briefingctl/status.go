package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command, which dumps agent roster size,
// orchestrator metrics, and optimizer health from GET /v1/status.
func NewStatusCmd() *cobra.Command {
	var apiURL string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Dump agent and optimizer health",
		Long: `Dump a point-in-time health snapshot of the briefing service:
agent roster size, orchestrator metrics, optimizer health, and audit
trail counters.

Examples:
  briefingctl status
  briefingctl status --api-url http://localhost:8080/v1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiURL = resolveAPIURL(apiURL)
			client := &http.Client{Timeout: 30 * time.Second}

			req, err := http.NewRequest(http.MethodGet, apiURL+"/status", nil)
			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}

			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			defer resp.Body.Close()

			raw, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}

			var env envelope
			if err := json.Unmarshal(raw, &env); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			if env.Error != nil {
				return fmt.Errorf("%s: %s", env.Error.Code, env.Error.Message)
			}

			var pretty bytes.Buffer
			if err := json.Indent(&pretty, env.Data, "", "  "); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), string(env.Data))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", defaultAPIURL, "Base URL of the briefing API")

	return cmd
}
