package cmd

import (
	"fmt"
	"slices"

	"github.com/khrees2412/cvbuilder/internal/ai"
	"github.com/spf13/cobra"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <kind>",
	Short: "Ask the AI provider for text for an experience field",
	Long: `Ask the configured AI provider for text for an experience field.
Kinds: refine, context, problems, solutions, technologies, impact.`,
	Args: cobra.ExactArgs(1),
	Example: `  cvbuilder suggest impact --experience 3f2a...
  cvbuilder suggest refine --experience 3f2a... --text "Made deploys faster"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		kind := ai.Kind(args[0])
		if !slices.Contains(ai.Kinds(), kind) {
			return fmt.Errorf("unknown kind %q: must be one of %v", kind, ai.Kinds())
		}

		req := ai.Request{Kind: kind}
		req.CurrentText, _ = cmd.Flags().GetString("text")
		if id, _ := cmd.Flags().GetString("experience"); id != "" {
			list := application.Document.Snapshot().Experiences
			i, ok := findExperience(list, id)
			if !ok {
				return fmt.Errorf("no experience with id %s", id)
			}
			req.Context = list[i]
		}

		cmd.Printf("Asking %s...\n", application.Config.AIProvider)
		text, err := application.AI.Suggest(cmd.Context(), req)
		if err != nil {
			return err
		}

		fmt.Println(text)
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize all experiences into a professional profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		cmd.Printf("Asking %s...\n", application.Config.AIProvider)
		text, err := application.AI.SummarizeExperiences(cmd.Context(), application.Document.Snapshot().Experiences)
		if err != nil {
			return err
		}

		fmt.Println(titleStyle.Render("Professional Summary"))
		fmt.Println(text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)
	suggestCmd.AddCommand(summaryCmd)

	suggestCmd.Flags().String("experience", "", "Experience id to give the model as context")
	suggestCmd.Flags().String("text", "", "Current text (required for refine)")
}
