package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pagecraft/pagecraft/bootstrap"
	"github.com/pagecraft/pagecraft/config"
)

var hotReload bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the pagecraft API server.

Configuration comes from the config file (--config), overridable with
PAGECRAFT_* environment variables. Without a config file the server runs
entirely from environment variables and defaults.

Environment variables (for container deployments):
  PAGECRAFT_SERVER_PORT      - Server port (default: 8080)
  PAGECRAFT_USAGE_STORE      - Usage store: memory or sqlite
  PAGECRAFT_USAGE_DSN        - SQLite path (default: pagecraft.db)
  PAGECRAFT_DEMO_MODE        - Restrict anonymous callers to demo quotas
  PAGECRAFT_GEMINI_API_KEY   - Enable the remote prompt provider
  PAGECRAFT_LOG_LEVEL        - Log level: debug, info, warn, error

Examples:
  pagecraft serve
  pagecraft serve --config /etc/pagecraft/config.yaml
  pagecraft serve --hot-reload=false`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "enable hot reload of configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	hasConfigFile := false
	if _, err := os.Stat(cfgFile); err == nil {
		hasConfigFile = true
	}

	var app *bootstrap.App
	var err error

	if hasConfigFile && hotReload {
		// Hot reload only works with a config file to watch.
		app, err = bootstrap.NewWithHotReload(cfgFile)
	} else {
		cfg, loadErr := config.LoadWithFallback(cfgFile)
		if loadErr != nil {
			return fmt.Errorf("error loading config: %w", loadErr)
		}
		if !hasConfigFile {
			fmt.Println("Running with environment variables (no config file)")
		}
		app, err = bootstrap.New(cfg)
	}
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}
