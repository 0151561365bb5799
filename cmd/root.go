package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/khrees2412/cvbuilder/internal/app"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cvbuilder",
	Short: "Build, version and export your CV from the terminal",
	Long: `CVBuilder keeps a working CV draft on disk, saves named versions of it
to a SQLite or Postgres store, and renders it to HTML or PDF with one of
several templates. AI suggestions help write experience narratives.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.NewApp(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}

		opened = application
		cmd.SetContext(app.SetAppInContext(cmd.Context(), application))
		return nil
	},
}

// opened is the app of the running command. It is closed after the command
// returns, whether or not it failed.
var opened *app.App

func closeOpenedApp() error {
	if opened == nil {
		return nil
	}
	err := opened.Close()
	opened = nil
	return err
}

// Execute runs the root command
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	if cerr := closeOpenedApp(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		cancel()
		os.Exit(1)
	}
}
