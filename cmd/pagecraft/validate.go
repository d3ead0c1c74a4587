package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pagecraft/pagecraft/config"
)

const (
	checkMark = "✓"
	crossMark = "✗"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration before deployment",
	Long: `Validate the pagecraft configuration file.

Checks:
  - YAML syntax is valid
  - Required fields are present
  - Limits and rate limit values are sane

Examples:
  pagecraft validate
  pagecraft validate --config /etc/pagecraft/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	fmt.Printf("Validating %s...\n\n", cfgFile)

	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Printf("  %s Config file exists\n", crossMark)
		return fmt.Errorf("config file not found: %s", cfgFile)
	}
	fmt.Printf("  %s Config file exists\n", checkMark)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Printf("  %s Config valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Printf("  %s Config valid\n", checkMark)

	fmt.Println()
	fmt.Printf("  Server:       %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("  Usage store:  %s\n", cfg.Usage.Store)
	fmt.Printf("  Rate limit:   %d req / %s (enabled: %v)\n",
		cfg.RateLimit.MaxRequests, cfg.RateLimit.Window, cfg.RateLimit.Enabled)
	fmt.Printf("  Demo mode:    %v\n", cfg.Usage.DemoMode)
	fmt.Printf("  API keys:     %d\n", len(cfg.Auth.Keys))
	if cfg.Providers.GeminiAPIKey != "" {
		fmt.Printf("  Prompts:      gemini\n")
	} else {
		fmt.Printf("  Prompts:      local templates\n")
	}

	return nil
}
