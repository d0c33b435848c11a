// Package main provides the entry point for the invitation agent CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// flagKeys maps CLI flags to configuration keys. Flags explicitly set on the
// command line override the config file and INVITE_AGENT_* variables.
var flagKeys = map[string]string{
	"account":       "account",
	"username":      "username",
	"input":         "input",
	"note":          "note",
	"note-file":     "note_file",
	"retry-failed":  "retry_failed",
	"yes":           "yes",
	"store-dir":     "store.dir",
	"store-backend": "store.backend",
	"database-url":  "store.database_url",
	"headless":      "browser.headless",
	"user-data-dir": "browser.user_data_dir",
	"replay-dir":    "browser.replay_dir",
	"metrics-file":  "metrics_file",
	"log-level":     "log.level",
	"log-file":      "log.file",
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "invite_agent",
		Short: "LinkedIn connection invitation agent",
		Long: `invite_agent works through a list of LinkedIn profile URLs in two phases:
a read-only pre-scan that finds existing connections, then a connect phase that
sends invitations to everyone else. Every outcome is saved per account so an
interrupted run resumes where it stopped.

Configuration is read from --config (or ./invite_agent.yaml), INVITE_AGENT_*
environment variables and command-line flags, in rising priority.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Path to a YAML/JSON/TOML config file")
	flags.String("account", "", "Account name scoping the resume store (defaults to the username)")
	flags.String("store-dir", ".", "Directory holding processed_urls_<account>.json files")
	flags.String("store-backend", "file", "Resume store backend: file or postgres")
	flags.String("database-url", "", "PostgreSQL connection URL for the postgres backend")
	flags.Bool("headless", false, "Run Chrome without a window")
	flags.String("user-data-dir", "", "Chrome profile directory to reuse between runs")
	flags.String("replay-dir", "", "Serve profiles from saved HTML snapshots instead of Chrome (no login)")
	flags.String("metrics-file", "", "Write Prometheus metrics to this textfile after each phase")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-file", "", "Also write logs to this file")

	root.AddCommand(
		newPreScanCmd(),
		newConnectCmd(),
		newRunCmd(),
		newStatusCmd(),
		newResetCmd(),
		newCaptureCmd(),
	)
	return root
}

// addInputFlags registers the flags shared by commands that walk a profile list.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", "", "CSV file of profile URLs (first column, header row skipped)")
	cmd.Flags().String("username", "", "LinkedIn username (or INVITE_AGENT_USERNAME); prompted if absent")
}

// addConnectFlags registers the flags of commands that send invitations.
func addConnectFlags(cmd *cobra.Command) {
	cmd.Flags().String("note", "", "Personal note attached to each invitation")
	cmd.Flags().String("note-file", "", "Read the invitation note from a file")
	cmd.Flags().Bool("retry-failed", false, "Re-attempt profiles previously recorded without an invite or connect option")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
