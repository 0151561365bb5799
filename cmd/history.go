package cmd

import (
	"fmt"
	"strconv"

	"github.com/khrees2412/cvbuilder/internal/app"
	"github.com/khrees2412/cvbuilder/internal/history"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse and restore previous versions of a saved CV",
}

var listHistoryCmd = &cobra.Command{
	Use:   "list [cv-id]",
	Short: "List versions of a CV, newest first",
	Long:  "List versions of a CV, newest first. Defaults to the working CV.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, ctx, err := sessionFromCmd(cmd)
		if err != nil {
			return err
		}
		cvID, err := historyTarget(application, args)
		if err != nil {
			return err
		}

		entries, err := application.History.List(ctx, cvID)
		if err != nil {
			return fmt.Errorf("list history: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No previous versions. A version is recorded every time the CV is saved again.")
			return nil
		}

		fmt.Println(titleStyle.Render(fmt.Sprintf("History of %s", cvID)))
		for _, e := range entries {
			fmt.Printf("  %s  %s  %s\n",
				labelStyle.Render(fmt.Sprintf("v%d", e.VersionNumber)),
				e.Title,
				mutedStyle.Render(e.CreatedAt.Local().Format("2006-01-02 15:04")),
			)
			if e.ChangeDescription != nil && *e.ChangeDescription != "" {
				fmt.Printf("      %s\n", *e.ChangeDescription)
			}
		}
		return nil
	},
}

var restoreHistoryCmd = &cobra.Command{
	Use:   "restore <version> [cv-id]",
	Short: "Load a previous version into the working CV",
	Long: `Load a previous version into the working CV. Nothing is written to the
store until the next 'cvbuilder cv save', which records the current state
as a new version before overwriting it.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, ctx, err := sessionFromCmd(cmd)
		if err != nil {
			return err
		}
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%w: version must be a number", app.ErrInvalidArgument)
		}
		cvID, err := historyTarget(application, args[1:])
		if err != nil {
			return err
		}

		entry, err := application.History.Find(ctx, cvID, version)
		if err != nil {
			return fmt.Errorf("restore v%d: %w", version, err)
		}
		application.Document.Load(history.Restore(entry))

		fmt.Printf("✓ Restored v%d of %q into the working CV\n", version, entry.Title)
		return nil
	},
}

func historyTarget(application *app.App, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	id := application.Document.Snapshot().ID
	if id == "" {
		return "", app.ErrNotSaved
	}
	return id, nil
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(listHistoryCmd)
	historyCmd.AddCommand(restoreHistoryCmd)
}
