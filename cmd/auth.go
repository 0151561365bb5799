package cmd

import (
	"fmt"
	"strings"

	"github.com/khrees2412/cvbuilder/internal/auth"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Start a session as the given user",
	Long: `Issue a session token for the given user and store it in the config file.
Saved CVs are scoped to the logged in user.`,
	Example: `  cvbuilder login --user ana@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		user, _ := cmd.Flags().GetString("user")
		user = strings.TrimSpace(user)
		if user == "" {
			return fmt.Errorf("--user is required")
		}

		token, err := application.Tokens.Issue(user)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		if err := application.Config.Set("session_token", token); err != nil {
			return fmt.Errorf("store session: %w", err)
		}

		if printToken, _ := cmd.Flags().GetBool("print-token"); printToken {
			fmt.Println(token)
			return nil
		}
		fmt.Printf("✓ Logged in as %s\n", user)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}
		if err := application.Config.Set("session_token", ""); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		fmt.Println("✓ Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, ctx, err := sessionFromCmd(cmd)
		if err != nil {
			return err
		}
		user, ok := auth.PrincipalFromContext(ctx)
		if !ok {
			fmt.Println("Not logged in. Run 'cvbuilder login --user <id>'")
			return nil
		}
		fmt.Println(user)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	loginCmd.Flags().String("user", "", "User id (usually an email)")
	loginCmd.Flags().Bool("print-token", false, "Print the bearer token for use with 'cvbuilder serve'")
}
