package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pagecraft",
	Short: "Landing page generation API with quotas and rate limiting",
	Long: `Pagecraft serves the landing page generation API.

It generates image prompts for a product, produces page images, removes
product photo backgrounds, and packages rendered pages for export, with
per-plan usage quotas and per-IP rate limiting on every operation.

Quick start:
  pagecraft serve     # Start the API server
  pagecraft validate  # Validate configuration
  pagecraft keygen    # Hash an API key for the config file`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "pagecraft.yaml", "config file path")
}
