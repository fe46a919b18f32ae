package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"frostadvisor/internal/config"
)

// configCmd inspects and edits the advisor configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change advisor configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

var configAICmd = &cobra.Command{
	Use:   "ai <off|on|unlimited>",
	Short: "Set the AI mode",
	Long: `Sets the AI gate for every user of this workspace. "off" disables AI
answers entirely, "on" applies the daily limits, "unlimited" removes
them but keeps the cooldown.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigAI,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configAICmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfgPath := config.DefaultConfigPath(workspace)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	fmt.Println("Config:", cfgPath)
	fmt.Println("Database:", cfg.Database.Path)
	fmt.Printf("AI mode: %s (free limit %d/day, admin %d/day, cooldown %ds)\n",
		cfg.AI.Mode, cfg.AI.DailyLimitFree, cfg.AI.DailyLimitAdmin, cfg.AI.CooldownSeconds)
	fmt.Printf("Primary provider: %s (%s)\n", cfg.AI.PrimaryProvider, providerModel(cfg, cfg.AI.PrimaryProvider))
	if cfg.AI.FallbackProvider != "" {
		fmt.Printf("Fallback provider: %s (%s)\n", cfg.AI.FallbackProvider, providerModel(cfg, cfg.AI.FallbackProvider))
	}
	fmt.Println("Anthropic key:", keyState(cfg.Providers.Anthropic.APIKey))
	fmt.Println("OpenAI key:", keyState(cfg.Providers.OpenAI.APIKey))
	return nil
}

func runConfigAI(cmd *cobra.Command, args []string) error {
	mode := config.AIMode(args[0])
	switch mode {
	case config.AIModeOff, config.AIModeOn, config.AIModeUnlimited:
	default:
		return fmt.Errorf("unknown AI mode %q (want off, on, or unlimited)", args[0])
	}

	cfgPath := config.DefaultConfigPath(workspace)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	cfg.AI.Mode = mode
	if err := cfg.Save(cfgPath); err != nil {
		return err
	}
	fmt.Println("AI mode set to", mode)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfgPath := config.DefaultConfigPath(workspace)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("config already exists at %s", cfgPath)
	}
	cfg := config.DefaultConfig()
	if err := cfg.Save(cfgPath); err != nil {
		return err
	}
	fmt.Println("Wrote", cfgPath)
	return nil
}

func providerModel(cfg *config.Config, provider string) string {
	switch provider {
	case "openai":
		return cfg.Providers.OpenAI.Model
	default:
		return cfg.Providers.Anthropic.Model
	}
}

func keyState(key string) string {
	if key == "" {
		return "not set"
	}
	return "configured"
}
