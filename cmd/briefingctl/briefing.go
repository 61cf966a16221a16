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

// briefingRequestBody mirrors the API's POST /v1/briefings request body.
type briefingRequestBody struct {
	UserID         string             `json:"user_id"`
	Prompt         string             `json:"prompt"`
	WeightedTopics map[string]float64 `json:"weighted_topics,omitempty"`
	MaxItems       int                `json:"max_items,omitempty"`
}

// envelope matches the API's {"data": ...} / {"error": ...} response shape.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *errorDetail    `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewBriefCmd creates the brief command, which triggers a one-off briefing
// request against a running API instance and prints the resulting payload.
func NewBriefCmd() *cobra.Command {
	var apiURL string
	var userID string
	var prompt string
	var maxItems int

	cmd := &cobra.Command{
		Use:   "brief",
		Short: "Trigger a one-off briefing",
		Long: `Trigger a one-off briefing request and print the resulting report.

Examples:
  briefingctl brief --user-id alex --prompt "AI safety research"
  briefingctl brief --user-id alex --max-items 5 --api-url http://localhost:8080/v1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiURL = resolveAPIURL(apiURL)
			userID = resolveUserID(userID)
			if userID == "" {
				return fmt.Errorf("user-id is required (pass --user-id or run 'briefingctl config set user-id <id>')")
			}

			body := briefingRequestBody{
				UserID:   userID,
				Prompt:   prompt,
				MaxItems: maxItems,
			}
			payload, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("failed to encode request: %w", err)
			}

			client := &http.Client{Timeout: 90 * time.Second}
			req, err := http.NewRequest(http.MethodPost, apiURL+"/briefings", bytes.NewReader(payload))
			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-User-ID", userID)

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

	cmd.Flags().StringVar(&apiURL, "api-url", defaultAPIURL, "Base URL of the briefing API (e.g. http://localhost:8080/v1)")
	cmd.Flags().StringVar(&userID, "user-id", "", "User ID the briefing is generated for")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Free-text description of what to brief on")
	cmd.Flags().IntVar(&maxItems, "max-items", 0, "Maximum number of report items to return (0 uses the server default)")

	return cmd
}
