package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/myconcall-sys/myconcall/internal/config"
	"github.com/myconcall-sys/myconcall/internal/extractor"
	"github.com/myconcall-sys/myconcall/internal/notifier"
	"github.com/myconcall-sys/myconcall/internal/runner"
	"github.com/myconcall-sys/myconcall/internal/scraper"
	"github.com/myconcall-sys/myconcall/internal/syncer"
	"github.com/myconcall-sys/myconcall/pkg/googleauth"
	"github.com/myconcall-sys/myconcall/pkg/logger"
	"github.com/myconcall-sys/myconcall/pkg/utils"
)

var configPath string

// loadApp loads configuration and the logger. Local .env files are applied
// best effort before the config reads the environment.
func loadApp() (*config.Config, *logger.Logger) {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	return cfg, appLogger
}

// buildRunner wires one pipeline pass. The returned cleanup tears down the
// browser session and must be called after the pass.
func buildRunner(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (*runner.Runner, func(), error) {
	creds, err := googleauth.CredentialsOption(cfg.Google.CredentialsBase64, cfg.Google.CredentialsFile)
	if err != nil {
		return nil, nil, err
	}

	sheetStore, err := syncer.NewGoogleSheetStore(ctx, creds, cfg.Google.SpreadsheetID, cfg.Google.SheetName, appLogger)
	if err != nil {
		return nil, nil, err
	}
	calendarStore, err := syncer.NewGoogleCalendarStore(ctx, creds, appLogger)
	if err != nil {
		return nil, nil, err
	}

	engine := syncer.NewEngine(sheetStore, calendarStore, cfg.Google, cfg.Watchlists, appLogger)
	collector := scraper.New(ctx, cfg.Screener, cfg.Watchlists.Sources, appLogger)
	phones := extractor.New(cfg.Extractor, appLogger)

	var channels notifier.Multi
	if cfg.Notifier.SMTP.Host != "" {
		channels = append(channels, notifier.NewEmail(cfg.Notifier.SMTP))
	}
	if cfg.Notifier.Telegram.BotToken != "" {
		tg, err := notifier.NewTelegram(cfg.Notifier.Telegram.BotToken, cfg.Notifier.Telegram.ChatID)
		if err != nil {
			appLogger.Warn("Telegram notifier unavailable", logger.ErrorField(err))
		} else {
			channels = append(channels, tg)
		}
	}

	r := runner.New(cfg.Runner, collector, phones, engine, channels, appLogger, utils.LocationIST())
	return r, collector.Close, nil
}
