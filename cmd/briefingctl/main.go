// Command briefingctl is the operator CLI for the briefing service: trigger
// a one-off briefing, inspect the audit trail, and check agent/optimizer
// health against a running API instance.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is the CLI version.
const Version = "0.1.0"

// NewRootCmd creates the root command for the briefingctl CLI.
func NewRootCmd() *cobra.Command {
	var showVersion bool

	rootCmd := &cobra.Command{
		Use:   "briefingctl",
		Short: "briefingctl - operate a personal intelligence briefing service",
		Long: `briefingctl - command line interface for the briefing service.

Trigger a one-off briefing, inspect the audit trail of a past request, or
check agent and optimizer health, all against a running API instance.

Use "briefingctl [command] --help" for more information about a command.`,
		Run: func(cmd *cobra.Command, args []string) {
			if showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), "briefingctl version", Version)
				return
			}
			cmd.Help()
		},
	}

	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "Print version information")

	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewBriefCmd())
	rootCmd.AddCommand(NewAuditCmd())
	rootCmd.AddCommand(NewStatusCmd())

	return rootCmd
}

func main() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
