package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/khrees2412/cvbuilder/internal/stats"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "View template popularity and recent activity",
	Long:  "Display how often each template is used across all CVs, the CVs created in the last week, and your own totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, ctx, err := sessionFromCmd(cmd)
		if err != nil {
			return err
		}

		s, err := stats.Collect(ctx, application.Store, application.Gateway, time.Now())
		if err != nil {
			return fmt.Errorf("collect stats: %w", err)
		}

		fmt.Println(titleStyle.Render("CV Statistics"))

		fmt.Printf("%s\n", labelStyle.Render("Overview"))
		fmt.Printf("  Total CVs: %d\n", s.TotalCVs)

		if len(s.DesignsPopularity) > 0 {
			fmt.Printf("\n%s\n", labelStyle.Render("Template Popularity"))
			for _, d := range s.DesignsPopularity {
				bar := strings.Repeat("█", d.Percentage/5)
				fmt.Printf("  %-10s %3d (%3d%%) %s\n", d.Design, d.Count, d.Percentage, bar)
			}
		}

		fmt.Printf("\n%s\n", labelStyle.Render("Last 7 Days"))
		for _, day := range s.RecentActivity {
			fmt.Printf("  %s: %d\n", day.Date, day.Count)
		}

		fmt.Printf("\n%s\n", labelStyle.Render("You"))
		fmt.Printf("  CVs: %d\n", s.User.TotalCVs)
		fmt.Printf("  Favourite template: %s\n", s.User.MostUsedDesign)
		if !s.User.LastActivity.IsZero() {
			fmt.Printf("  Last activity: %s\n", s.User.LastActivity.Local().Format("Jan 2 15:04"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
