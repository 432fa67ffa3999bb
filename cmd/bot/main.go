package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	discordadapter "github.com/jose-valero/activity-lb-bot/internal/adapters/discord"
	"github.com/jose-valero/activity-lb-bot/internal/adapters/keepalive"
	"github.com/jose-valero/activity-lb-bot/internal/app/service"
	"github.com/jose-valero/activity-lb-bot/internal/infra/config"
	"github.com/jose-valero/activity-lb-bot/internal/infra/storage"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config: ", err)
	}
	logger := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	// DB
	db, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := storage.Migrate(db); err != nil {
		log.Fatal("migrate: ", err)
	}
	logger.Info("database ready")

	// Repos
	countersRepo := storage.NewCountersRepo(db)
	settingsRepo := storage.NewSettingsRepo(db)
	publishedRepo := storage.NewPublishedRepo(db)
	snipeRepo := storage.NewSnipeRepo(db)

	// Discord session
	auth := cfg.DiscordToken
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(auth)), "bot ") {
		auth = "Bot " + strings.TrimSpace(auth)
	}
	s, err := discordgo.New(auth)
	if err != nil {
		log.Fatal(err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildVoiceStates
	// Cache recent messages so deletions can be sniped.
	s.State.MaxMessageCount = 512

	// Services
	store := service.NewCounterStore(countersRepo, logger)
	if err := store.Hydrate(ctx); err != nil {
		log.Fatal("hydrate counters: ", err)
	}
	tracker := service.NewVoiceTracker(store, logger)
	settings := service.NewSettingsService(settingsRepo, logger)
	snipes := service.NewSnipeService(snipeRepo, logger)
	publisher := service.NewPublisher(
		discordadapter.NewSender(s),
		store,
		tracker,
		settings,
		publishedRepo,
		cfg.AllowedGuilds,
		logger,
	)

	// Router
	r := discordadapter.NewRouter(s, cfg.Prefix, cfg.AllowedGuilds, store, tracker, settings, snipes, publisher, logger)
	r.Handlers()

	if err := s.Open(); err != nil {
		log.Fatal(err)
	}
	defer s.Close()
	logger.Info("connected", "user", s.State.User.Username, "id", s.State.User.ID)

	// Background loops
	go publisher.Run(ctx)
	go publisher.RunScheduler(ctx, time.Duration(cfg.RepublishMinutes)*time.Minute)
	go tracker.RunFlusher(ctx, time.Duration(cfg.VoiceFlushSeconds)*time.Second)
	go keepalive.New(cfg.HTTPAddr, logger).Start(ctx)

	<-ctx.Done()

	// Bank open sessions before exiting so minutes aren't lost.
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	tracker.FlushOpen(flushCtx)
	cancel()
	logger.Info("shutting down")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
