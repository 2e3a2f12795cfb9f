package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tickbot/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
}

var configInitOutput string

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if err := cfg.SaveToFile(configInitOutput); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Printf("Created default configuration: %s\n", configInitOutput)
		fmt.Println("\nEdit the file and run with:")
		fmt.Printf("  tickbot run -f %s\n", configInitOutput)
		return nil
	},
}

var configValidatePath string

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFromFile(configValidatePath)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Printf("Configuration valid: %s\n", configValidatePath)
		fmt.Printf("  Symbol: %s  Contract: %s  Stake: %.2f %s\n",
			cfg.Trading.Symbol, cfg.Trading.Contract, cfg.Trading.Stake, cfg.Trading.Currency)
		fmt.Printf("  Journal: %s\n", cfg.Journal.Type)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "tickbot.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "config", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("config")
}
