package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/services/scorebot/internal/aliases"
	"github.com/fortuna/services/scorebot/internal/cache"
	"github.com/fortuna/services/scorebot/internal/chat"
	"github.com/fortuna/services/scorebot/internal/chat/telegram"
	"github.com/fortuna/services/scorebot/internal/config"
	"github.com/fortuna/services/scorebot/internal/handlers"
	"github.com/fortuna/services/scorebot/internal/hub"
	"github.com/fortuna/services/scorebot/internal/logging"
	"github.com/fortuna/services/scorebot/internal/notifier"
	"github.com/fortuna/services/scorebot/internal/poller"
	"github.com/fortuna/services/scorebot/internal/providers/espn"
	"github.com/fortuna/services/scorebot/internal/publisher"
	"github.com/fortuna/services/scorebot/internal/query"
	"github.com/fortuna/services/scorebot/internal/registry"
	"github.com/fortuna/services/scorebot/internal/render"
	"github.com/fortuna/services/scorebot/internal/tracker"
	"github.com/fortuna/services/scorebot/pkg/contracts"
)

func main() {
	configPath := flag.String("config", os.Getenv("SCOREBOT_CONFIG"), "path to YAML config file")
	flag.Parse()

	envErr := godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Get().WithError(err).Fatal("Failed to load configuration")
	}

	log := logging.Init(cfg.Log.Level, cfg.Log.Format)
	if envErr != nil {
		log.Debug("No .env file loaded, using environment")
	}

	log.Info("=== Scorebot ===")

	module, err := registry.New().ForDivision(cfg.League)
	if err != nil {
		log.WithError(err).Fatal("Failed to resolve league")
	}
	league := module.GetLeagueKey()
	log.WithFields(logrus.Fields{
		"league": league,
		"feed":   cfg.Feed.Source,
	}).Info("League selected")

	fetcher := newFetcher(cfg.Feed)

	table, err := aliases.Load(cfg.AliasesPath)
	if err != nil {
		log.WithError(err).WithField("path", cfg.AliasesPath).Warn("Failed to load team aliases, continuing without")
		table = aliases.Empty()
	} else {
		log.WithField("teams", table.Len()).Info("Loaded team aliases")
	}

	style, err := render.StyleByName(cfg.Chat.Style)
	if err != nil {
		log.WithError(err).Fatal("Invalid chat style")
	}
	renderer := render.New(style)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Chat
	bot, err := telegram.NewBot(cfg.Chat.TelegramToken, style == render.Markdown)
	if err != nil {
		log.WithError(err).Fatal("Failed to start Telegram bot")
	}

	tr := tracker.New()
	queries := query.New(tr, table, renderer)
	dispatcher := chat.NewDispatcher(cfg.Chat.CommandPrefix)
	queries.RegisterCommands(dispatcher)

	// Announcement sinks
	wsHub := hub.NewHub(league)
	go wsHub.Run(ctx)

	announcer := notifier.NewAnnouncer(renderer,
		notifier.NewChatSink(bot, cfg.Chat.LiveChannels),
		wsHub,
	)

	if cfg.Slack.WebhookURL != "" {
		slackNotifier := notifier.NewSlackNotifier(cfg.Slack.WebhookURL)
		announcer.AddSink(slackNotifier)
		if err := slackNotifier.SendStartupNotification(ctx, module.GetDisplayName()); err != nil {
			log.WithError(err).Warn("Failed to send Slack startup notification")
		}
		log.Info("Slack notifications enabled")
	}

	var mirror poller.SnapshotSink
	if redisClient := connectRedis(ctx, log, cfg.Redis.URL); redisClient != nil {
		defer redisClient.Close()
		announcer.AddSink(publisher.NewStreamPublisher(redisClient, league))
		mirror = cache.NewRedisWriter(redisClient, league)
	}

	ops := notifier.NewOpsLog(bot, cfg.Chat.DebugChannel)

	// Poll loop
	p := poller.NewPoller(module, fetcher, tr, announcer, ops, poller.Options{
		Polling: contracts.PollingConfig{
			Interval:         cfg.Poll.Interval,
			InactiveInterval: cfg.Poll.InactiveInterval,
		},
		FetchTimeout: cfg.Feed.Timeout + 5*time.Second,
		Mirror:       mirror,
	})

	scheduler := poller.NewScheduler(ctx)
	if err := scheduler.Every(p.Interval(), p); err != nil {
		log.WithError(err).Fatal("Failed to schedule poller")
	}
	scheduler.Start()

	go bot.Listen(ctx, dispatcher)

	// HTTP API
	handler := handlers.NewHandler(ctx, league, tr, queries, wsHub)
	server := &http.Server{
		Addr:        cfg.HTTP.Addr,
		Handler:     handlers.NewRouter(handler, cfg.HTTP.CORSOrigins),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTP.Addr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	log.WithField("commands", dispatcher.Commands()).Info("Scorebot running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.WithField("signal", sig.String()).Info("Shutting down")
	case err := <-serverErrors:
		log.WithError(err).Error("HTTP server failed")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown error")
	}
	cancel()
	scheduler.Stop()

	log.Info("Shutdown complete")
}

// newFetcher picks the scoreboard fetcher for the configured source
func newFetcher(cfg config.FeedConfig) espn.Fetcher {
	fetcherCfg := espn.Config{
		BaseURL:   cfg.BaseURL,
		UserAgent: espn.PickUserAgent(cfg.UserAgents),
		Timeout:   cfg.Timeout,
	}
	if cfg.Source == "browser" {
		return espn.NewBrowser(fetcherCfg)
	}
	return espn.New(fetcherCfg)
}

// connectRedis returns nil when Redis is not configured or unreachable
func connectRedis(ctx context.Context, log *logrus.Logger, url string) *redis.Client {
	if url == "" {
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		log.WithError(err).Warn("Invalid Redis URL, mirroring disabled")
		return nil
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).Warn("Redis unreachable, mirroring disabled")
		client.Close()
		return nil
	}

	log.Info("Connected to Redis")
	return client
}
