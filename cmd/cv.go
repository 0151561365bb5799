package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/khrees2412/cvbuilder/internal/document"
	"github.com/khrees2412/cvbuilder/internal/gateway"
	"github.com/khrees2412/cvbuilder/pkg/models"
	"github.com/spf13/cobra"
)

var cvCmd = &cobra.Command{
	Use:   "cv",
	Short: "Manage the working CV and your saved CVs",
	Long:  "Create, show, save, load, delete, import and export CVs",
}

var newCVCmd = &cobra.Command{
	Use:     "new",
	Aliases: []string{"reset"},
	Short:   "Start over with an empty CV",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}
		application.Document.Reset()
		fmt.Println("✓ Started a new empty CV")
		return nil
	},
}

var showCVCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the working CV",
	Example: `  cvbuilder cv show
  cvbuilder cv show --format yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}
		doc := application.Document.Snapshot()

		format, _ := cmd.Flags().GetString("format")
		if format != "" {
			return document.Encode(os.Stdout, doc, document.Format(format))
		}

		printDocument(doc)
		return nil
	},
}

var saveCVCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the working CV",
	Long: `Save the working CV. The first save creates a new CV and binds the
working copy to it; later saves update it and record a history version.`,
	Example: `  cvbuilder cv save --title "Backend CV"
  cvbuilder cv save
  cvbuilder cv save --as-new --title "Backend CV (EN)"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, ctx, err := sessionFromCmd(cmd)
		if err != nil {
			return err
		}
		doc := application.Document.Snapshot()
		asNew, _ := cmd.Flags().GetBool("as-new")

		title, _ := cmd.Flags().GetString("title")
		if strings.TrimSpace(title) == "" && doc.ID != "" {
			existing, err := application.Gateway.LoadAsync(ctx, application.Runner, doc.ID).Wait(ctx)
			if err != nil {
				return fmt.Errorf("load current title: %w", err)
			}
			title = defaultSaveTitle(existing.Title, asNew)
		}
		if err := gateway.ValidateTitle(title); err != nil {
			return fmt.Errorf("%w: use --title", err)
		}

		target := prepareSave(doc, asNew)
		saved, err := application.Gateway.SaveAsync(ctx, application.Runner, title, target).Wait(ctx)
		if err != nil {
			return fmt.Errorf("save cv: %w", err)
		}
		if target.ID == "" {
			application.Document.SetID(saved.Document.ID)
		}

		fmt.Printf("✓ Saved %q (%s)\n", saved.Title, saved.Document.ID)
		return nil
	},
}

// prepareSave returns the document handed to the gateway. Without an id
// the gateway inserts a new CV.
func prepareSave(doc models.CVDocument, asNew bool) models.CVDocument {
	if asNew {
		doc.ID = ""
	}
	return doc
}

func defaultSaveTitle(current string, asNew bool) string {
	if asNew {
		return current + " (copy)"
	}
	return current
}

var listCVCmd = &cobra.Command{
	Use:   "list",
	Short: "List your saved CVs, most recently updated first",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, ctx, err := sessionFromCmd(cmd)
		if err != nil {
			return err
		}

		cvs, err := application.Gateway.ListAsync(ctx, application.Runner).Wait(ctx)
		if err != nil {
			return fmt.Errorf("list cvs: %w", err)
		}
		if len(cvs) == 0 {
			fmt.Println("No saved CVs yet. Save one with 'cvbuilder cv save --title <title>'")
			return nil
		}

		current := application.Document.Snapshot().ID
		fmt.Println(titleStyle.Render(fmt.Sprintf("Saved CVs (%d)", len(cvs))))
		for _, cv := range cvs {
			marker := " "
			if cv.Document.ID == current {
				marker = "*"
			}
			fmt.Printf("%s %s  %s  %s  %s\n",
				marker,
				labelStyle.Render(cv.Title),
				mutedStyle.Render(cv.Document.ID),
				cv.Document.SelectedTemplate,
				cv.UpdatedAt.Local().Format("2006-01-02 15:04"),
			)
		}
		return nil
	},
}

var loadCVCmd = &cobra.Command{
	Use:   "load <cv-id>",
	Short: "Replace the working CV with a saved one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, ctx, err := sessionFromCmd(cmd)
		if err != nil {
			return err
		}

		saved, err := application.Gateway.LoadAsync(ctx, application.Runner, args[0]).Wait(ctx)
		if err != nil {
			return fmt.Errorf("load cv: %w", err)
		}
		application.Document.Load(saved.Document)

		fmt.Printf("✓ Loaded %q\n", saved.Title)
		return nil
	},
}

var deleteCVCmd = &cobra.Command{
	Use:   "delete <cv-id>",
	Short: "Delete a saved CV and its history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, ctx, err := sessionFromCmd(cmd)
		if err != nil {
			return err
		}

		if _, err := application.Gateway.DeleteAsync(ctx, application.Runner, args[0]).Wait(ctx); err != nil {
			return fmt.Errorf("delete cv: %w", err)
		}
		// the working copy keeps its content but is no longer bound
		if application.Document.Snapshot().ID == args[0] {
			application.Document.SetID("")
		}

		fmt.Printf("✓ Deleted %s\n", args[0])
		return nil
	},
}

var importCVCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the working CV with a JSON or YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()

		doc, err := document.Decode(f, document.FormatFromPath(args[0]))
		if err != nil {
			return err
		}
		// an imported file is a new CV until it is saved
		doc.ID = ""
		application.Document.Load(doc)

		fmt.Printf("✓ Imported %s\n", args[0])
		return nil
	},
}

var exportCVCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the working CV to a JSON or YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("create %s: %w", args[0], err)
		}
		if err := document.Encode(f, application.Document.Snapshot(), document.FormatFromPath(args[0])); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}

		fmt.Printf("✓ Exported to %s\n", args[0])
		return nil
	},
}

func printDocument(doc models.CVDocument) {
	fmt.Println(titleStyle.Render("Working CV"))
	if doc.ID == "" {
		printField("Saved as", "")
	} else {
		printField("Saved as", doc.ID)
	}
	printField("Template", string(doc.SelectedTemplate))

	fmt.Println(labelStyle.Render("\nPersonal data"))
	p := doc.PersonalData
	printField("  Name", p.FullName)
	printField("  Email", p.Email)
	printField("  Phone", p.Phone)
	printField("  Address", p.Address)
	printField("  LinkedIn", p.LinkedIn)
	printField("  GitHub", p.GitHub)
	printField("  Portfolio", p.Portfolio)

	if !doc.Objective.IsZero() {
		fmt.Println(labelStyle.Render("\nObjective"))
		printField("  Position", doc.Objective.Position)
		printField("  Stack", doc.Objective.Stack)
		printField("  Goal", doc.Objective.Goal)
	}

	if len(doc.Experiences) > 0 {
		fmt.Println(labelStyle.Render("\nExperience"))
		printExperiences(doc.Experiences)
	}
	if len(doc.Education) > 0 {
		fmt.Println(labelStyle.Render("\nEducation"))
		printEducation(doc.Education)
	}
	if skills := models.ParseSkills(doc.Skills); len(skills) > 0 {
		fmt.Println(labelStyle.Render("\nSkills"))
		fmt.Printf("  %s\n", strings.Join(skills, " · "))
	}
	if len(doc.Languages) > 0 {
		fmt.Println(labelStyle.Render("\nLanguages"))
		printLanguages(doc.Languages)
	}
}

func init() {
	rootCmd.AddCommand(cvCmd)
	cvCmd.AddCommand(newCVCmd)
	cvCmd.AddCommand(showCVCmd)
	cvCmd.AddCommand(saveCVCmd)
	cvCmd.AddCommand(listCVCmd)
	cvCmd.AddCommand(loadCVCmd)
	cvCmd.AddCommand(deleteCVCmd)
	cvCmd.AddCommand(importCVCmd)
	cvCmd.AddCommand(exportCVCmd)

	showCVCmd.Flags().String("format", "", "Print raw document as json or yaml")
	saveCVCmd.Flags().String("title", "", "Title of the saved CV (defaults to the current title on update)")
	saveCVCmd.Flags().Bool("as-new", false, "Save a copy as a new CV and switch the working copy to it")
}
