package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zuenet070/livebets/internal/apifootball"
	"github.com/zuenet070/livebets/internal/config"
	"github.com/zuenet070/livebets/internal/logger"
	"github.com/zuenet070/livebets/internal/monitor"
	"github.com/zuenet070/livebets/internal/storage"
	"github.com/zuenet070/livebets/internal/telegram"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	store, err := storage.New(cfg.Storage.MaxAlerts, cfg.Storage.DBPath)
	if err != nil {
		logger.Fatal("Failed to initialize storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage: %v", err)
		}
	}()

	feed := apifootball.NewClient(
		cfg.Feed.BaseURL,
		cfg.Feed.APIKey,
		cfg.Feed.Timeout,
		apifootball.ClientConfig{
			MaxRetries:        cfg.Feed.MaxRetries,
			RetryDelayBase:    cfg.Feed.RetryDelayBase,
			RequestsPerMinute: cfg.Feed.RequestsPerMinute,
			StatsCacheTTL:     cfg.Feed.StatsCacheTTL,
		},
	)

	mon := monitor.New(feed, cfg.Engine)

	var telegramClient *telegram.Client
	if cfg.Telegram.Enabled {
		telegramClient, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		logger.Info("Telegram client initialized successfully")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	if cfg.Telegram.Enabled && telegramClient != nil {
		telegramClient.ListenForCommands(ctx, store)
		if err := telegramClient.SendStartup(); err != nil {
			logger.Warn("Failed to send startup notice: %v", err)
		}
	}

	logger.Info("Starting live fixture monitor (interval: %v, max signals/tick: %d, max lookups/tick: %d)",
		cfg.Feed.PollInterval,
		cfg.Engine.MaxSignalsPerTick,
		cfg.Engine.MaxStatLookupsPerTick,
	)

	consecutiveFailures := 0

	handleCycleResult := func(err error) {
		if err != nil {
			consecutiveFailures++
			logger.Error("Poll cycle failed: %v", err)
			if consecutiveFailures == 1 && cfg.Telegram.Enabled && telegramClient != nil {
				if sendErr := telegramClient.SendError(err); sendErr != nil {
					logger.Warn("Failed to send error notification to Telegram: %v", sendErr)
				}
			}
		} else {
			if consecutiveFailures > 0 && cfg.Telegram.Enabled && telegramClient != nil {
				if sendErr := telegramClient.SendRecovery(consecutiveFailures); sendErr != nil {
					logger.Warn("Failed to send recovery notification to Telegram: %v", sendErr)
				}
			}
			consecutiveFailures = 0
		}
	}

	// The next pass starts pollInterval after the previous one COMPLETES:
	// passes never overlap, and a slow pass simply delays the next one.
	for {
		handleCycleResult(runPollCycle(ctx, feed, mon, store, telegramClient, cfg))

		if err := store.RotateAlerts(); err != nil {
			logger.Warn("Failed to rotate alerts: %v", err)
		}

		select {
		case <-ctx.Done():
			logger.Info("Service stopped")
			return
		case <-time.After(cfg.Feed.PollInterval):
		}
	}
}

func runPollCycle(
	ctx context.Context,
	feed *apifootball.Client,
	mon *monitor.Monitor,
	store *storage.Storage,
	telegramClient *telegram.Client,
	cfg *config.Config,
) error {
	startTime := time.Now()
	logger.Debug("Starting poll cycle")

	fixtures, err := feed.LiveFixtures(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch live fixtures: %w", err)
	}
	logger.Info("Fetched %d live fixtures", len(fixtures))

	signals, resolutions := mon.ProcessPoll(ctx, fixtures)

	for i := range signals {
		sig := &signals[i]
		if err := store.AddAlert(sig); err != nil {
			logger.Warn("Failed to persist alert for fixture %d: %v", sig.FixtureID, err)
		}
		if cfg.Telegram.Enabled && telegramClient != nil {
			if err := telegramClient.SendSignal(*sig); err != nil {
				logger.Error("Failed to send signal for fixture %d: %v", sig.FixtureID, err)
			}
		}
	}

	for i := range resolutions {
		res := &resolutions[i]
		if err := store.AddResolution(res); err != nil {
			logger.Warn("Failed to persist result for fixture %d: %v", res.FixtureID, err)
		}
		if cfg.Telegram.Enabled && telegramClient != nil {
			if err := telegramClient.SendResolution(*res); err != nil {
				logger.Error("Failed to send resolution for fixture %d: %v", res.FixtureID, err)
			}
		}
		feed.DropCachedStats(res.FixtureID)
	}

	logger.Info("Poll cycle completed in %v (%d signals, %d resolutions, %d pending)",
		time.Since(startTime), len(signals), len(resolutions), mon.PendingSignals())
	return nil
}
