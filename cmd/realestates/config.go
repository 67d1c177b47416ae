package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nrfta/realestates-go/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the service configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show configuration attributes and their sources",
	Long: `Show configuration attributes and their sources.

Values come from the built-in defaults, the config file, a .env file and
the environment, later sources taking precedence. Secrets are masked.

Example:
  realestates config show
  realestates config show --output json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "json" {
			out, err := cfg.FormatJSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		}

		fmt.Fprint(cmd.OutOrStdout(), cfg.FormatText())
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "\ninvalid: %v\n", err)
		}
		return nil
	},
}

// loadConfig loads and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configShowCmd.Flags().StringP("output", "o", "text", "output format (text or json)")
}
