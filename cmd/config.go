package cmd

import (
	"fmt"
	"os"
	"slices"

	"github.com/khrees2412/cvbuilder/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  "View and update configuration settings",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Run: func(cmd *cobra.Command, args []string) {
		application, err := appFromCmd(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg := application.Config

		fmt.Println(titleStyle.Render("Configuration"))
		fmt.Printf("%s %s\n", labelStyle.Render("config_file:"), cfg.Path())
		for _, key := range config.Keys() {
			value := cfg.Get(key)
			switch {
			case config.IsSecret(key) && value != "":
				value = "✓ Configured"
			case config.IsSecret(key):
				value = "✗ Not configured"
			case value == "":
				value = mutedStyle.Render("-")
			}
			fmt.Printf("%s %s\n", labelStyle.Render(key+":"), value)
		}
	},
}

var setConfigCmd = &cobra.Command{
	Use:   "set",
	Short: "Update a configuration value",
	Example: `  cvbuilder config set --key ai_provider --value anthropic
  cvbuilder config set --key anthropic_key --value sk-ant-...
  cvbuilder config set --key store_driver --value postgres
  cvbuilder config set --key database_url --value postgres://localhost/cvbuilder`,
	Run: func(cmd *cobra.Command, args []string) {
		application, err := appFromCmd(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		key, _ := cmd.Flags().GetString("key")
		value, _ := cmd.Flags().GetString("value")

		if key == "" {
			fmt.Println("--key is required")
			return
		}
		if !slices.Contains(config.Keys(), key) {
			fmt.Printf("Invalid key. Must be one of: %v\n", config.Keys())
			return
		}

		if err := application.Config.Set(key, value); err != nil {
			fmt.Fprintf(os.Stderr, "Error updating config: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("✓ Configuration updated: %s\n", key)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(setConfigCmd)

	setConfigCmd.Flags().String("key", "", "Configuration key")
	setConfigCmd.Flags().String("value", "", "Configuration value")
}
