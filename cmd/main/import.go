package main

import (
	"github.com/spf13/cobra"
)

var importWorkers int

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the storefront menu into a new snapshot",
	Long:  "Scrape the storefront menu, validate it as a category tree and store it in Postgres. With --workers, keep retrying failed categories until interrupted.",
	RunE:  runImport,
}

func init() {
	importCmd.Flags().IntVar(&importWorkers, "workers", 0, "Retry workers to run after the import (0 exits after importing)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	app := newContainer()
	defer app.Close()

	return app.RunImport(ctx, importWorkers)
}
