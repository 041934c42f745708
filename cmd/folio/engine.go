package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/folio/internal/config"
	"github.com/jackzampolin/folio/internal/engine"
	"github.com/jackzampolin/folio/internal/home"
)

var engineCmd = &cobra.Command{
	Use:   "engine",
	Short: "Manage the segmentation engine container",
	Long: `Manage the segmentation engine container lifecycle.

The engine runs in a Docker container with the books directory mounted
read-only and scratch data persisted to ~/.folio/engine/.

Examples:
  folio engine start   # Start the engine container
  folio engine stop    # Stop the container
  folio engine status  # Check container status
  folio engine logs    # View container logs`,
}

var engineStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the engine container",
	Long: `Start the engine container.

If the container doesn't exist, it will be created and started.
If it exists but is stopped, it will be started.
If it's already running, this is a no-op.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, err := getDockerManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		fmt.Println("Starting segmentation engine...")
		if err := mgr.Start(cmd.Context()); err != nil {
			return fmt.Errorf("failed to start engine: %w", err)
		}

		fmt.Printf("Engine is running at %s\n", mgr.URL())
		return nil
	},
}

var engineStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the engine container",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, err := getDockerManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		fmt.Println("Stopping segmentation engine...")
		if err := mgr.Stop(cmd.Context()); err != nil {
			return fmt.Errorf("failed to stop engine: %w", err)
		}

		fmt.Println("Engine stopped")
		return nil
	},
}

var engineStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show engine container status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, cfg, err := getDockerManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		status, err := mgr.Status(ctx)
		if err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}

		switch status {
		case engine.StatusRunning:
			fmt.Printf("Status: %s\n", status)
			fmt.Printf("URL: %s\n", mgr.URL())

			client := engine.NewClient(engine.ClientConfig{URL: mgr.URL(), Timeout: cfg.Engine.Timeout()})
			if err := client.Health(ctx); err != nil {
				fmt.Printf("Health: unhealthy (%v)\n", err)
			} else {
				fmt.Println("Health: healthy")
			}
		case engine.StatusStopped:
			fmt.Printf("Status: %s (use 'folio engine start' to start)\n", status)
		case engine.StatusNotFound:
			fmt.Printf("Status: %s (use 'folio engine start' to create)\n", status)
		default:
			fmt.Printf("Status: %s\n", status)
		}

		return nil
	},
}

var logsTail string

var engineLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show engine container logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, err := getDockerManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		logs, err := mgr.Logs(cmd.Context(), logsTail)
		if err != nil {
			return fmt.Errorf("failed to get logs: %w", err)
		}

		fmt.Print(logs)
		return nil
	},
}

var engineRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the engine container",
	Long: `Remove the engine container.

This stops and removes the container. Data in ~/.folio/engine/
is NOT deleted - only the container is removed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, err := getDockerManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		fmt.Println("Removing engine container...")
		if err := mgr.Remove(cmd.Context()); err != nil {
			return fmt.Errorf("failed to remove container: %w", err)
		}

		fmt.Println("Engine container removed (data preserved)")
		return nil
	},
}

var engineWaitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for the engine to be ready",
	Long: `Wait for the engine to answer its health check.

This is useful in scripts to ensure the engine is fully started
before segmenting pages.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, err := getDockerManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		timeout, _ := cmd.Flags().GetDuration("timeout")
		fmt.Printf("Waiting for engine (timeout: %s)...\n", timeout)

		if err := mgr.WaitReady(cmd.Context(), timeout); err != nil {
			return fmt.Errorf("engine not ready: %w", err)
		}

		fmt.Println("Engine is ready")
		return nil
	},
}

func init() {
	engineCmd.AddCommand(engineStartCmd)
	engineCmd.AddCommand(engineStopCmd)
	engineCmd.AddCommand(engineStatusCmd)
	engineCmd.AddCommand(engineLogsCmd)
	engineCmd.AddCommand(engineRemoveCmd)
	engineCmd.AddCommand(engineWaitCmd)

	engineLogsCmd.Flags().StringVar(&logsTail, "tail", "100", "Number of lines to show from the end")
	engineWaitCmd.Flags().Duration("timeout", 60*time.Second, "Timeout waiting for the engine")

	rootCmd.AddCommand(engineCmd)
}

// getDockerManager creates a DockerManager from the engine.docker config.
func getDockerManager() (*engine.DockerManager, *config.Config, error) {
	h, err := getHome()
	if err != nil {
		return nil, nil, err
	}
	cfgMgr, err := loadConfig(h)
	if err != nil {
		return nil, nil, err
	}
	cfg := cfgMgr.Get()

	dataPath := h.EngineDataPath()
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	mgr, err := engine.NewDockerManager(engine.DockerConfig{
		ContainerName: cfg.Engine.Docker.ContainerName,
		Image:         cfg.Engine.Docker.Image,
		HostPort:      cfg.Engine.Docker.Port,
		BooksPath:     booksDir(cfg, h),
		DataPath:      dataPath,
	})
	if err != nil {
		return nil, nil, err
	}
	return mgr, cfg, nil
}

func booksDir(cfg *config.Config, h *home.Dir) string {
	if cfg.Books.Path != "" {
		return cfg.Books.Path
	}
	return h.BooksPath()
}
