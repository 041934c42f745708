package main

import (
	"os"

	"github.com/spf13/cobra"

	_ "github.com/jackzampolin/folio/docs/swagger"
	"github.com/jackzampolin/folio/internal/server"
)

var (
	serveHost    string
	servePort    string
	manageEngine bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Folio server",
	Long: `Start the Folio HTTP server.

With --engine the segmentation engine container is started alongside the
server and stopped when the server shuts down (via Ctrl+C or SIGTERM).
Without it the engine at engine.url is used.

The configuration file is watched: changes to translation.strict and
engine.url take effect without a restart.

The server provides:
  - /health           - Basic server health check
  - /ready            - Readiness check (includes engine health)
  - /segment          - Segment a page
  - /api/translate    - Preview the engine parameters for settings
  - /metrics          - Prometheus metrics
  - /swagger          - API documentation

Examples:
  folio serve                    # Start on the configured port (default 8080)
  folio serve --port 3000        # Start on custom port
  folio serve --engine           # Also run the engine container`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		h, err := getHome()
		if err != nil {
			return err
		}
		cfgMgr, err := loadConfig(h)
		if err != nil {
			return err
		}
		cfgMgr.WatchConfig()

		logger := newLogger(os.Stdout, cfgMgr.Get().Log)
		if file := cfgMgr.ConfigFile(); file != "" {
			logger.Info("loaded configuration", "file", file)
		}

		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
			Home:          h,
			ConfigManager: cfgMgr,
			ManageEngine:  manageEngine,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default: server.host)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default: server.port)")
	serveCmd.Flags().BoolVar(&manageEngine, "engine", false, "Start and stop the engine container with the server")

	rootCmd.AddCommand(serveCmd)
}
