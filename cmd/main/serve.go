package main

import (
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the category tree as a JSON API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	app := newContainer()
	defer app.Close()

	srv, err := app.APIServer(ctx)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
