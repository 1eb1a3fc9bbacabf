package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/myconcall-sys/myconcall/pkg/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Executes one sync pass and exits",
	Run:   runOnce,
}

func init() {
	runCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the configuration file")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, appLogger := loadApp()
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting concall sync", zap.String("name", cfg.App.Name))

	r, cleanup, err := buildRunner(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to build pipeline", logger.ErrorField(err))
		os.Exit(1)
	}

	runErr := r.Run(ctx)
	cleanup()

	if runErr != nil {
		os.Exit(1)
	}
}
