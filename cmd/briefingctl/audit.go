package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

// NewAuditCmd creates the audit command, which inspects the service's audit
// trail over GET /v1/audit and /v1/audit/{requestID}.
func NewAuditCmd() *cobra.Command {
	var apiURL string
	var limit int

	cmd := &cobra.Command{
		Use:   "audit [requestID]",
		Short: "Inspect the audit trail",
		Long: `Inspect the audit trail of past briefing requests.

With no arguments, lists recently audited request IDs. With a requestID,
prints the full human-readable trace for that request.

Examples:
  briefingctl audit
  briefingctl audit --limit 50
  briefingctl audit 3f9e5c1a-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiURL = resolveAPIURL(apiURL)
			client := &http.Client{Timeout: 30 * time.Second}

			url := fmt.Sprintf("%s/audit", apiURL)
			if len(args) == 1 {
				url = fmt.Sprintf("%s/audit/%s", apiURL, args[0])
			} else if limit > 0 {
				url = fmt.Sprintf("%s?limit=%d", url, limit)
			}

			req, err := http.NewRequest(http.MethodGet, url, nil)
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

			if len(args) == 1 {
				var out struct {
					RequestID string `json:"request_id"`
					Report    string `json:"report"`
				}
				if err := json.Unmarshal(env.Data, &out); err != nil {
					return fmt.Errorf("failed to parse audit report: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), out.Report)
				return nil
			}

			var out struct {
				Requests []string `json:"requests"`
			}
			if err := json.Unmarshal(env.Data, &out); err != nil {
				return fmt.Errorf("failed to parse audit list: %w", err)
			}
			if len(out.Requests) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No audited requests found.")
				return nil
			}
			for _, requestID := range out.Requests {
				fmt.Fprintln(cmd.OutOrStdout(), requestID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", defaultAPIURL, "Base URL of the briefing API")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of request IDs to list")

	return cmd
}
