package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/khrees2412/cvbuilder/internal/document"
	"github.com/khrees2412/cvbuilder/internal/profile"
	"github.com/khrees2412/cvbuilder/pkg/models"
	"github.com/spf13/cobra"
)

var personalCmd = &cobra.Command{
	Use:   "personal",
	Short: "Edit the personal data block",
}

var setPersonalCmd = &cobra.Command{
	Use:   "set",
	Short: "Update personal data fields",
	Example: `  cvbuilder personal set --name "Ana Silva" --email ana@example.com
  cvbuilder personal set --linkedin https://linkedin.com/in/ana`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		patch := document.PersonalDataPatch{
			FullName:        changedString(cmd, "name"),
			Email:           changedString(cmd, "email"),
			Phone:           changedString(cmd, "phone"),
			Address:         changedString(cmd, "address"),
			LinkedIn:        changedString(cmd, "linkedin"),
			GitHub:          changedString(cmd, "github"),
			Portfolio:       changedString(cmd, "portfolio"),
			ProfilePhotoURL: changedString(cmd, "photo"),
		}
		if patch == (document.PersonalDataPatch{}) {
			fmt.Println("No fields to update. Use flags like --name, --email, etc.")
			return nil
		}

		application.Document.SetPersonalData(patch)
		fmt.Println("✓ Personal data updated")
		return nil
	},
}

var photoCmd = &cobra.Command{
	Use:   "photo [file]",
	Short: "Set or remove the profile photo shown on the CV",
	Long: `Copy an image (at most 10MB) into the data directory and use it as the
profile photo. The previous imported photo is deleted.`,
	Example: `  cvbuilder personal photo ~/Pictures/me.jpg
  cvbuilder personal photo --remove`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		remove, _ := cmd.Flags().GetBool("remove")
		if remove == (len(args) == 1) {
			return errors.New("pass either an image file or --remove")
		}

		dataDir := application.Config.DataDir
		previous := application.Document.Snapshot().PersonalData.ProfilePhotoURL

		ref := ""
		if !remove {
			if ref, err = profile.ImportPhoto(args[0], dataDir); err != nil {
				return err
			}
		}
		application.Document.SetPersonalData(document.PersonalDataPatch{ProfilePhotoURL: &ref})

		if err := profile.RemovePhoto(previous, dataDir); err != nil {
			application.Log.Warn("failed to delete previous photo", "ref", previous, "error", err)
		}

		if remove {
			fmt.Println("✓ Profile photo removed")
			return nil
		}
		fmt.Printf("✓ Profile photo set to %s\n", ref)
		return nil
	},
}

var objectiveCmd = &cobra.Command{
	Use:     "objective",
	Short:   "Update the career objective",
	Example: `  cvbuilder objective --position "Backend Engineer" --stack "Go, Postgres"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		patch := document.ObjectivePatch{
			Position: changedString(cmd, "position"),
			Stack:    changedString(cmd, "stack"),
			Goal:     changedString(cmd, "goal"),
		}
		if patch == (document.ObjectivePatch{}) {
			fmt.Println("No fields to update. Use --position, --stack or --goal.")
			return nil
		}

		application.Document.SetObjective(patch)
		fmt.Println("✓ Objective updated")
		return nil
	},
}

var skillsCmd = &cobra.Command{
	Use:   "skills [comma separated skills]",
	Short: "Show or replace the skills list",
	Example: `  cvbuilder skills
  cvbuilder skills "Go, SQL, Docker"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		if len(args) == 1 {
			application.Document.SetSkills(args[0])
			fmt.Println("✓ Skills updated")
		}

		skills := models.ParseSkills(application.Document.Snapshot().Skills)
		if len(skills) == 0 {
			fmt.Println("No skills yet.")
			return nil
		}
		for _, skill := range skills {
			fmt.Printf("  • %s\n", skill)
		}
		return nil
	},
}

var templateCmd = &cobra.Command{
	Use:   "template [id]",
	Short: "Show or select the rendering template",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		if len(args) == 1 {
			id := models.TemplateID(strings.ToLower(strings.TrimSpace(args[0])))
			application.Document.SetSelectedTemplate(id)
			if !id.Valid() {
				fmt.Printf("Warning: %q is not a known template, the preview will be empty\n", id)
			}
			fmt.Printf("✓ Template set to %s\n", id)
			return nil
		}

		selected := application.Document.Snapshot().SelectedTemplate
		for _, id := range models.KnownTemplates() {
			marker := " "
			if id == selected {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(personalCmd)
	rootCmd.AddCommand(objectiveCmd)
	rootCmd.AddCommand(skillsCmd)
	rootCmd.AddCommand(templateCmd)
	personalCmd.AddCommand(setPersonalCmd)
	personalCmd.AddCommand(photoCmd)

	setPersonalCmd.Flags().String("name", "", "Full name")
	setPersonalCmd.Flags().String("email", "", "Email address")
	setPersonalCmd.Flags().String("phone", "", "Phone number")
	setPersonalCmd.Flags().String("address", "", "City or full address")
	setPersonalCmd.Flags().String("linkedin", "", "LinkedIn URL")
	setPersonalCmd.Flags().String("github", "", "GitHub URL")
	setPersonalCmd.Flags().String("portfolio", "", "Portfolio URL")
	setPersonalCmd.Flags().String("photo", "", "Profile photo URL")

	photoCmd.Flags().Bool("remove", false, "Remove the current photo")

	objectiveCmd.Flags().String("position", "", "Desired position")
	objectiveCmd.Flags().String("stack", "", "Main technology stack")
	objectiveCmd.Flags().String("goal", "", "Career goal")
}
