package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/framereel/framereel-agent/internal/api"
	"github.com/framereel/framereel-agent/internal/config"
	"github.com/framereel/framereel-agent/internal/encoder"
	"github.com/framereel/framereel-agent/internal/history"
	"github.com/framereel/framereel-agent/internal/logging"
	"github.com/framereel/framereel-agent/internal/playback"
	"github.com/framereel/framereel-agent/internal/studio"
	"github.com/framereel/framereel-agent/internal/ui"
)

var errAlreadyRunning = errors.New("another framereel agent is using this data directory")

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the agent: HTTP API and system tray",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx)
		},
	}
}

func runServe(parent context.Context, cc *commandContext) error {
	startTime := time.Now()

	cfg, err := cc.ensureConfig()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.ExportDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting framereel agent",
		"version", config.Version,
		"commit", config.GitCommit,
		"data_dir", cfg.DataDir())

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w (%s)", errAlreadyRunning, cfg.LockPath())
	}
	defer lock.Unlock()

	database, hist, repo, err := cc.historyStore(logger)
	if err != nil {
		return err
	}
	defer database.Close()

	authToken, err := ensureAuthToken(parent, repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Printf("Framereel agent v%s\n", config.Version)
	fmt.Printf("  API URL:    http://127.0.0.1:%d\n", cfg.Port())
	fmt.Printf("  Auth Token: %s\n", authToken)
	fmt.Printf("  Exports:    %s\n", cfg.ExportDir())
	fmt.Println()

	st := studio.New(studio.Options{
		Encoder:        encoder.NewGIFEncoder(logging.WithComponent(logger, "encoder")),
		History:        hist,
		Jobs:           repo,
		DefaultDelayMs: cfg.DefaultDelayMs(),
		Logger:         logging.WithComponent(logger, "studio"),
	})
	defer st.Close()

	apiServer := api.NewServer(api.ServerConfig{
		Port:           cfg.Port(),
		Studio:         st,
		History:        hist,
		Repository:     repo,
		PlaybackServer: playback.NewServer(logger),
		ExportDir:      cfg.ExportDir(),
		Logger:         logging.WithComponent(logger, "api"),
		StartTime:      startTime,
		Version:        config.Version,
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- apiServer.Start()
	}()

	sigCtx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	quitCh := make(chan struct{})
	var tray *ui.Tray
	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray = ui.NewTray(ui.TrayConfig{
			Studio: st,
			Logger: logging.WithComponent(logger, "tray"),
			OnQuit: func() { close(quitCh) },
		})
		go tray.Run()
	}

	select {
	case <-sigCtx.Done():
		logger.Info("received shutdown signal")
	case <-quitCh:
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server error", "error", err)
			return err
		}
	}

	logger.Info("initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}
	if tray != nil {
		tray.Quit()
	}

	logger.Info("shutdown complete")
	return nil
}

func ensureAuthToken(ctx context.Context, repo history.Repository) (string, error) {
	existing, err := repo.GetConfig(ctx, api.AuthTokenKey)
	if err == nil && existing != "" {
		return existing, nil
	}

	token := uuid.NewString()
	if err := repo.SetConfig(ctx, api.AuthTokenKey, token); err != nil {
		return "", err
	}
	return token, nil
}
