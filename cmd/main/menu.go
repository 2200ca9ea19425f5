package main

import (
	"fmt"
	"io"
	"os"

	"storefront/catnav/internal/menu"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	menuCategory string
	menuLogFile  string
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Browse the category menu in the terminal",
	Long:  "Two-pane menu: the rail follows the section scrolled into view, and choosing a rail entry scrolls to its section",
	RunE:  runMenu,
}

func init() {
	menuCmd.Flags().StringVar(&menuCategory, "category", "", "Category to open the menu on")
	menuCmd.Flags().StringVar(&menuLogFile, "log-file", "", "Write logs here while the menu owns the terminal")
	rootCmd.AddCommand(menuCmd)
}

func runMenu(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	app := newContainer()
	defer app.Close()

	m, err := app.Menu(ctx, menuCategory)
	if err != nil {
		return err
	}

	// Log lines would corrupt the alternate screen.
	out := io.Discard
	if menuLogFile != "" {
		f, err := os.OpenFile(menuLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	log.SetOutput(out)
	defer log.SetOutput(os.Stderr)

	return menu.Run(m)
}
