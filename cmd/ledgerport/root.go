package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ledgerport",
	Short: "BrightBooks LedgerPort - QuickBooks invoice export service",
	Long: `BrightBooks LedgerPort is an export service that turns QuickBooks Online
invoice data into yearly report downloads.

It runs an HTTP server that connects to QuickBooks companies over OAuth2
and streams invoice reports as CSV or JSON, providing:
  - Yearly invoice and invoice-line report downloads
  - OAuth2 connect/callback flow with automatic token refresh
  - Paginated bulk fetching against the QBO query API
  - Audit trail of every export attempt
  - Prometheus metrics and health endpoints

For more information, visit: https://github.com/brightbooks-hq/ledgerport`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.CompletionOptions.DisableDefaultCmd = false
}
