package cmd

import (
	"fmt"
	"strings"

	"github.com/khrees2412/cvbuilder/internal/document"
	"github.com/khrees2412/cvbuilder/pkg/models"
	"github.com/spf13/cobra"
)

var experienceCmd = &cobra.Command{
	Use:     "experience",
	Aliases: []string{"exp"},
	Short:   "Manage work experience and personal projects",
}

var addExperienceCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an experience",
	Example: `  cvbuilder experience add --company Acme --position "Backend Engineer" --start 2021-03 --current
  cvbuilder experience add --company "cli-tool" --personal`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		company, _ := cmd.Flags().GetString("company")
		position, _ := cmd.Flags().GetString("position")
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		current, _ := cmd.Flags().GetBool("current")
		personal, _ := cmd.Flags().GetBool("personal")

		if strings.TrimSpace(company) == "" && strings.TrimSpace(position) == "" {
			return fmt.Errorf("--company or --position is required")
		}
		if current {
			end = ""
		}

		entry := models.ExperienceEntry{
			ID:                document.NewEntryID(),
			Company:           company,
			Position:          position,
			StartDate:         start,
			EndDate:           end,
			Current:           current,
			IsPersonalProject: personal,
		}
		list := append(application.Document.Snapshot().Experiences, entry)
		application.Document.SetExperiences(list)

		fmt.Printf("✓ Added experience %s\n", entry.ID)
		return nil
	},
}

var listExperienceCmd = &cobra.Command{
	Use:   "list",
	Short: "List experiences",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		experiences := application.Document.Snapshot().Experiences
		if len(experiences) == 0 {
			fmt.Println("No experiences yet. Add one with 'cvbuilder experience add'")
			return nil
		}
		printExperiences(experiences)
		return nil
	},
}

var removeExperienceCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an experience",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		list := application.Document.Snapshot().Experiences
		if _, ok := findExperience(list, args[0]); !ok {
			return fmt.Errorf("no experience with id %s", args[0])
		}
		application.Document.SetExperiences(models.WithoutExperience(list, args[0]))

		fmt.Printf("✓ Removed experience %s\n", args[0])
		return nil
	},
}

var narrativeCmd = &cobra.Command{
	Use:     "narrative <id>",
	Short:   "Write the context, problem, activities and impact of an experience",
	Args:    cobra.ExactArgs(1),
	Example: `  cvbuilder experience narrative 3f2a... --problem "Deploys took an hour" --impact "Deploys take 5 minutes"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		list := application.Document.Snapshot().Experiences
		i, ok := findExperience(list, args[0])
		if !ok {
			return fmt.Errorf("no experience with id %s", args[0])
		}

		replace, _ := cmd.Flags().GetBool("replace")
		if err := narrativeShapeConflict(list[i], true, replace); err != nil {
			return err
		}

		flat := models.FlatNarrative{}
		if list[i].Narrative.Flat != nil {
			flat = *list[i].Narrative.Flat
		}
		mergeFlag(cmd, "context", &flat.Context)
		mergeFlag(cmd, "problem", &flat.Problem)
		mergeFlag(cmd, "activities", &flat.Activities)
		mergeFlag(cmd, "impact", &flat.Impact)

		list[i].Narrative = models.NewFlatNarrative(flat)
		application.Document.SetExperiences(list)

		fmt.Println("✓ Narrative updated")
		return nil
	},
}

var achievementCmd = &cobra.Command{
	Use:   "achievement <id>",
	Short: "Append a situation/task/action/result achievement to an experience",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		list := application.Document.Snapshot().Experiences
		i, ok := findExperience(list, args[0])
		if !ok {
			return fmt.Errorf("no experience with id %s", args[0])
		}

		replace, _ := cmd.Flags().GetBool("replace")
		if err := narrativeShapeConflict(list[i], false, replace); err != nil {
			return err
		}

		achievement := models.Achievement{ID: document.NewEntryID()}
		mergeFlag(cmd, "situation", &achievement.Situation)
		mergeFlag(cmd, "task", &achievement.Task)
		mergeFlag(cmd, "action", &achievement.Action)
		mergeFlag(cmd, "result", &achievement.Result)
		mergeFlag(cmd, "description", &achievement.FinalDescription)

		var achievements []models.Achievement
		if star := list[i].Narrative.STAR; star != nil {
			achievements = star.Achievements
		}
		list[i].Narrative = models.NewSTARNarrative(append(achievements, achievement)...)
		application.Document.SetExperiences(list)

		fmt.Printf("✓ Added achievement %s\n", achievement.ID)
		return nil
	},
}

func findExperience(list []models.ExperienceEntry, id string) (int, bool) {
	for i, exp := range list {
		if exp.ID == id {
			return i, true
		}
	}
	return -1, false
}

// narrativeShapeConflict refuses to turn a filled flat narrative into an
// achievement list, or the other way round, unless replace is set
func narrativeShapeConflict(exp models.ExperienceEntry, wantFlat, replace bool) error {
	if replace {
		return nil
	}
	n := exp.Narrative
	if wantFlat && n.STAR != nil && len(n.STAR.Achievements) > 0 {
		return fmt.Errorf("experience %s has %d achievements; pass --replace to switch to a flat narrative",
			exp.ID, len(n.STAR.Achievements))
	}
	if !wantFlat && n.Flat != nil && *n.Flat != (models.FlatNarrative{}) {
		return fmt.Errorf("experience %s has a flat narrative; pass --replace to switch to achievements", exp.ID)
	}
	return nil
}

func mergeFlag(cmd *cobra.Command, name string, dst *string) {
	if v := changedString(cmd, name); v != nil {
		*dst = *v
	}
}

func printExperiences(experiences []models.ExperienceEntry) {
	for _, exp := range experiences {
		end := exp.EndDate
		if exp.Current {
			end = "present"
		}
		kind := ""
		if exp.IsPersonalProject {
			kind = mutedStyle.Render(" (personal project)")
		}
		fmt.Printf("  • %s at %s%s  %s\n", exp.Position, exp.Company, kind, mutedStyle.Render(exp.StartDate+" – "+end))
		fmt.Printf("    %s\n", mutedStyle.Render(exp.ID))
	}
}

func init() {
	rootCmd.AddCommand(experienceCmd)
	experienceCmd.AddCommand(addExperienceCmd)
	experienceCmd.AddCommand(listExperienceCmd)
	experienceCmd.AddCommand(removeExperienceCmd)
	experienceCmd.AddCommand(narrativeCmd)
	experienceCmd.AddCommand(achievementCmd)

	addExperienceCmd.Flags().String("company", "", "Company or project name")
	addExperienceCmd.Flags().String("position", "", "Role held")
	addExperienceCmd.Flags().String("start", "", "Start date (YYYY-MM)")
	addExperienceCmd.Flags().String("end", "", "End date (YYYY-MM)")
	addExperienceCmd.Flags().Bool("current", false, "Still working here")
	addExperienceCmd.Flags().Bool("personal", false, "Personal project")

	narrativeCmd.Flags().String("context", "", "Context of the role or project")
	narrativeCmd.Flags().String("problem", "", "Problem or need before your work")
	narrativeCmd.Flags().String("activities", "", "Activities and technologies")
	narrativeCmd.Flags().String("impact", "", "Results and impact")
	narrativeCmd.Flags().Bool("replace", false, "Discard existing achievements")

	achievementCmd.Flags().String("situation", "", "Situation")
	achievementCmd.Flags().String("task", "", "Task")
	achievementCmd.Flags().String("action", "", "Action")
	achievementCmd.Flags().String("result", "", "Result")
	achievementCmd.Flags().String("description", "", "Final bullet text")
	achievementCmd.Flags().Bool("replace", false, "Discard an existing flat narrative")
}
