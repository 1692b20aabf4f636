/*
Package cli provides command-line interface utilities for LedgerPort.

The cli package includes output formatters, page-level fetch progress
reporting, and common CLI helpers used by the ledgerport command.

Output Formatting:

Command results render as text or JSON:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, events); err != nil {
		return err
	}

Progress Reporting:

One-shot exports report each fetched page as it arrives. PageProgress
plugs straight into the QuickBooks client as a fetch observer:

	progress := cli.NewPageProgress(os.Stderr)
	client = client.WithObserver(progress)
	records, err := client.FetchAll(ctx, query)

Signal Handling:

For cancellation on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
*/
package cli
