package cmd

import (
	"fmt"
	"strings"

	"github.com/khrees2412/cvbuilder/internal/document"
	"github.com/khrees2412/cvbuilder/pkg/models"
	"github.com/spf13/cobra"
)

var languageCmd = &cobra.Command{
	Use:     "language",
	Aliases: []string{"lang"},
	Short:   "Manage spoken languages",
}

var addLanguageCmd = &cobra.Command{
	Use:   "add <language>",
	Short: "Add a language",
	Args:  cobra.ExactArgs(1),
	Example: `  cvbuilder language add English --level fluent
  cvbuilder language add Portuguese --level native`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		level, _ := cmd.Flags().GetString("level")
		proficiency, err := models.ParseProficiency(level)
		if err != nil {
			return err
		}
		name := strings.TrimSpace(args[0])
		if name == "" {
			return fmt.Errorf("language name is required")
		}

		entry := models.LanguageEntry{
			ID:          document.NewEntryID(),
			Language:    name,
			Proficiency: proficiency,
		}
		application.Document.SetLanguages(append(application.Document.Snapshot().Languages, entry))

		fmt.Printf("✓ Added language: %s (%s)\n", name, proficiency)
		return nil
	},
}

var listLanguageCmd = &cobra.Command{
	Use:   "list",
	Short: "List languages",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		languages := application.Document.Snapshot().Languages
		if len(languages) == 0 {
			fmt.Println("No languages yet. Add one with 'cvbuilder language add <language> --level <level>'")
			return nil
		}
		printLanguages(languages)
		return nil
	},
}

var removeLanguageCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a language",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		list := application.Document.Snapshot().Languages
		filtered := models.WithoutLanguage(list, args[0])
		if len(filtered) == len(list) {
			return fmt.Errorf("no language with id %s", args[0])
		}
		application.Document.SetLanguages(filtered)

		fmt.Printf("✓ Removed language %s\n", args[0])
		return nil
	},
}

func printLanguages(languages []models.LanguageEntry) {
	for _, lang := range languages {
		fmt.Printf("  • %s (%s)  %s\n", lang.Language, lang.Proficiency, mutedStyle.Render(lang.ID))
	}
}

func init() {
	rootCmd.AddCommand(languageCmd)
	languageCmd.AddCommand(addLanguageCmd)
	languageCmd.AddCommand(listLanguageCmd)
	languageCmd.AddCommand(removeLanguageCmd)

	addLanguageCmd.Flags().String("level", string(models.ProficiencyIntermediate), "basic, intermediate, advanced, fluent or native")
}
