package cmd

import (
	"fmt"
	"strings"

	"github.com/khrees2412/cvbuilder/internal/document"
	"github.com/khrees2412/cvbuilder/pkg/models"
	"github.com/spf13/cobra"
)

var educationCmd = &cobra.Command{
	Use:     "education",
	Aliases: []string{"edu"},
	Short:   "Manage degrees, courses and certifications",
}

var addEducationCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an education entry",
	Example: `  cvbuilder education add --institution USP --degree BSc --field "Computer Science" --category academic
  cvbuilder education add --institution AWS --degree "Solutions Architect" --category certification`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		institution, _ := cmd.Flags().GetString("institution")
		degree, _ := cmd.Flags().GetString("degree")
		field, _ := cmd.Flags().GetString("field")
		category, _ := cmd.Flags().GetString("category")
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		inProgress, _ := cmd.Flags().GetBool("in-progress")

		if strings.TrimSpace(institution) == "" {
			return fmt.Errorf("--institution is required")
		}
		c := models.EducationCategory(strings.ToLower(category))
		if !c.Valid() {
			return fmt.Errorf("invalid category %q: must be academic, technical or certification", category)
		}

		entry := models.EducationEntry{
			ID:          document.NewEntryID(),
			Category:    c,
			Institution: institution,
			Degree:      degree,
			Field:       field,
			StartDate:   start,
			EndDate:     end,
			InProgress:  inProgress,
		}
		application.Document.SetEducation(append(application.Document.Snapshot().Education, entry))

		fmt.Printf("✓ Added education %s\n", entry.ID)
		return nil
	},
}

var listEducationCmd = &cobra.Command{
	Use:   "list",
	Short: "List education entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		education := application.Document.Snapshot().Education
		if len(education) == 0 {
			fmt.Println("No education entries yet. Add one with 'cvbuilder education add'")
			return nil
		}
		printEducation(education)
		return nil
	},
}

var removeEducationCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an education entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		list := application.Document.Snapshot().Education
		filtered := models.WithoutEducation(list, args[0])
		if len(filtered) == len(list) {
			return fmt.Errorf("no education entry with id %s", args[0])
		}
		application.Document.SetEducation(filtered)

		fmt.Printf("✓ Removed education %s\n", args[0])
		return nil
	},
}

func printEducation(education []models.EducationEntry) {
	for _, edu := range education {
		end := edu.EndDate
		if edu.InProgress {
			end = "in progress"
		}
		title := strings.TrimSpace(edu.Degree + " " + edu.Field)
		fmt.Printf("  • %s, %s  %s\n", title, edu.Institution, mutedStyle.Render(string(edu.Category)+" "+edu.StartDate+" – "+end))
		fmt.Printf("    %s\n", mutedStyle.Render(edu.ID))
	}
}

func init() {
	rootCmd.AddCommand(educationCmd)
	educationCmd.AddCommand(addEducationCmd)
	educationCmd.AddCommand(listEducationCmd)
	educationCmd.AddCommand(removeEducationCmd)

	addEducationCmd.Flags().String("institution", "", "School, university or issuer")
	addEducationCmd.Flags().String("degree", "", "Degree, course or certificate name")
	addEducationCmd.Flags().String("field", "", "Field of study")
	addEducationCmd.Flags().String("category", "academic", "academic, technical or certification")
	addEducationCmd.Flags().String("start", "", "Start date (YYYY-MM)")
	addEducationCmd.Flags().String("end", "", "End date (YYYY-MM)")
	addEducationCmd.Flags().Bool("in-progress", false, "Still studying")
}
