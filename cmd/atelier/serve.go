package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zulandar/atelier/internal/ai"
	"github.com/zulandar/atelier/internal/config"
	"github.com/zulandar/atelier/internal/hub"
	"github.com/zulandar/atelier/internal/server"
	"github.com/zulandar/atelier/internal/storage"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the collaboration server",
		Long:  "Loads the project store, connects the configured AI provider, and serves the websocket sync protocol.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "atelier.yaml", "path to Atelier config file")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	store, err := storage.Open(storage.OpenOpts{
		Driver:   cfg.Storage.Driver,
		Path:     cfg.Storage.Path,
		Host:     cfg.Storage.Host,
		Port:     cfg.Storage.Port,
		Database: cfg.Storage.Database,
		User:     cfg.Storage.User,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridge, err := createBridge(ctx, cfg)
	if err != nil {
		return err
	}

	h, err := hub.NewHub(hub.HubOpts{
		Store:  store,
		Bridge: bridge,
		Out:    cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	// Handle OS signals for graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return server.Start(ctx, server.StartOpts{
		Hub:           h,
		Host:          cfg.Server.Host,
		Port:          cfg.Server.Port,
		Out:           cmd.OutOrStdout(),
		IdleTimeout:   time.Duration(cfg.Session.IdleTimeoutSec) * time.Second,
		SweepInterval: time.Duration(cfg.Session.SweepIntervalSec) * time.Second,
	})
}

// loadConfig reads the config file, falling back to defaults when the
// default path does not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == "atelier.yaml" {
			return config.Default(), nil
		}
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// createBridge builds the AI merge bridge from the config. A nil bridge
// disables ai-request handling.
func createBridge(ctx context.Context, cfg *config.Config) (*ai.Bridge, error) {
	switch cfg.AI.Provider {
	case "", "none":
		return nil, nil
	case "gemini":
		key := os.Getenv(cfg.AI.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("ai: %s is not set (required for provider gemini)", cfg.AI.APIKeyEnv)
		}
		gen, err := ai.NewGemini(ctx, ai.GeminiOpts{
			APIKey: key,
			Model:  cfg.AI.Model,
		})
		if err != nil {
			return nil, err
		}
		return ai.NewBridge(ai.BridgeOpts{Generator: gen})
	default:
		return nil, fmt.Errorf("ai: unsupported provider %q", cfg.AI.Provider)
	}
}
