package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/myconcall-sys/myconcall/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the sync on the configured cron schedule",
	Run:   runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the configuration file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, appLogger := loadApp()
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting concall sync scheduler",
		zap.String("name", cfg.App.Name),
		zap.String("schedule", cfg.Runner.CronSchedule))

	c := cron.New()
	_, err := c.AddFunc(cfg.Runner.CronSchedule, func() {
		ctx := context.Background()

		r, cleanup, err := buildRunner(ctx, cfg, appLogger)
		if err != nil {
			appLogger.Error("Failed to build pipeline", logger.ErrorField(err))
			return
		}
		defer cleanup()

		if err := r.Run(ctx); err != nil {
			appLogger.Error("Scheduled run failed", logger.ErrorField(err))
		}
	})
	if err != nil {
		appLogger.Fatal("Failed to parse cron schedule", logger.ErrorField(err))
	}

	c.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down scheduler")
	<-c.Stop().Done()
}
