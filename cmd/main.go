package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"briefly/internal/article"
	"briefly/internal/bot"
	"briefly/internal/config"
	"briefly/internal/database"
	"briefly/internal/gemini"
	"briefly/internal/scheduler"
	"briefly/internal/session"
	"briefly/internal/speech"
	"briefly/internal/store"
	"briefly/internal/summarizer"
	"briefly/internal/theme"
)

const sessionMaxEntries = 10000

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}

	db, err := database.New(ctx, cfg.DBPath, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize db",
			"error", err,
			"dbPath", cfg.DBPath)

		return
	}
	defer func() {
		if err = db.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close db",
				"error", err,
				"dbPath", cfg.DBPath)
		}
	}()
	log.InfoContext(ctx, "DB is initialized",
		"dbPath", cfg.DBPath)

	if count, countErr := db.CountUsers(ctx, store.AreaSync, store.KeyGeminiAPIKey); countErr != nil {
		log.WarnContext(ctx, "Failed to count users with API key",
			"error", countErr)
	} else {
		log.InfoContext(ctx, "Users with API key are found",
			"usersCount", count)
	}

	syncArea := store.NewSQLArea(db, store.AreaSync)

	localArea, redisClient := initLocalArea(ctx, cfg, db, log)
	if redisClient != nil {
		defer func() {
			if err = redisClient.Close(); err != nil {
				log.ErrorContext(ctx, "Failed to close redis client",
					"error", err,
					"redisAddr", cfg.RedisAddr)
			}
		}()
	}

	client := gemini.NewClient(cfg.GeminiBaseURL, nil, log)
	pipeline := initPipeline(ctx, cfg, client, syncArea, log)

	sessions := session.NewStore(sessionMaxEntries, cfg.SessionTTL)
	speechController := speech.NewController(
		speech.NewGeminiSynthesizer(client, cfg.GeminiTTSModel, cfg.GeminiTTSVoice, log),
		log,
	)

	botInst, err := bot.New(cfg.Token, bot.Services{
		Pipeline:    pipeline,
		Sessions:    sessions,
		Keys:        syncArea,
		FallbackKey: cfg.GeminiAPIKey,
		Speech:      speechController,
		Themes:      theme.NewController(localArea),
	}, cfg.AllowedUsers, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize bot",
			"error", err,
			"allowedUsersCount", len(cfg.AllowedUsers))

		return
	}
	log.InfoContext(ctx, "Bot is initialized",
		"allowedUsersCount", len(cfg.AllowedUsers))

	sched := scheduler.New(ctx, sessions, log)

	if err = sched.Start(); err != nil {
		log.ErrorContext(ctx, "Failed to start scheduler",
			"error", err,
			"spec", scheduler.HourlySweepSpec,
			"timezone", time.FixedZone(scheduler.Timezone, scheduler.TimezoneOffsetSeconds).String())

		return
	}
	defer sched.Stop()
	log.InfoContext(ctx, "Scheduler is started",
		"spec", scheduler.HourlySweepSpec,
		"timezone", time.FixedZone(scheduler.Timezone, scheduler.TimezoneOffsetSeconds).String())

	go func() {
		botInst.Start(ctx)
	}()
	log.InfoContext(ctx, "Bot is started")

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	sig := <-c
	log.InfoContext(ctx, "Shutdown signal is received",
		"signal", sig.String())
	cancel()

	log.InfoContext(ctx, "Exiting...",
		"signal", sig.String(),
		"uptimeSeconds", time.Since(start).Seconds())

	botInst.Stop()
	log.InfoContext(ctx, "Bot is stopped",
		"uptimeSeconds", time.Since(start).Seconds())
}

// initLocalArea keeps display preferences in Redis when it is configured and
// reachable, and in the DB otherwise.
func initLocalArea(
	ctx context.Context,
	cfg config.Config,
	db *database.Database,
	log *slog.Logger,
) (store.Area, *redis.Client) {
	if cfg.RedisAddr == "" {
		log.InfoContext(ctx, "REDIS_ADDR is missing so DB will keep local settings",
			"envVar", "REDIS_ADDR")

		return store.NewSQLArea(db, store.AreaLocal), nil
	}

	client := store.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	if err := client.Ping(ctx).Err(); err != nil {
		log.ErrorContext(ctx, "Failed to ping redis so DB will keep local settings",
			"error", err,
			"redisAddr", cfg.RedisAddr)

		if closeErr := client.Close(); closeErr != nil {
			log.ErrorContext(ctx, "Failed to close redis client",
				"error", closeErr,
				"redisAddr", cfg.RedisAddr)
		}

		return store.NewSQLArea(db, store.AreaLocal), nil
	}

	log.InfoContext(ctx, "Redis keeps local settings",
		"redisAddr", cfg.RedisAddr,
		"redisDB", cfg.RedisDB)

	return store.NewRedisArea(client, store.AreaLocal), client
}

func initPipeline(
	ctx context.Context,
	cfg config.Config,
	client *gemini.Client,
	keys store.Area,
	log *slog.Logger,
) *summarizer.Pipeline {
	var opts []summarizer.PipelineOption

	if cfg.GeminiAPIKey == "" {
		log.WarnContext(ctx, "GEMINI_API_KEY is missing so users must set their own",
			"envVar", "GEMINI_API_KEY")
	} else {
		opts = append(opts, summarizer.WithFallbackAPIKey(cfg.GeminiAPIKey))
	}

	if cfg.SummarizeSingleFlight {
		opts = append(opts, summarizer.WithSingleFlight())
	}

	log.InfoContext(ctx, "Gemini summarizer is initialized",
		"model", cfg.GeminiModel,
		"singleFlight", cfg.SummarizeSingleFlight)

	return summarizer.NewPipeline(
		keys,
		article.NewFetcher(cfg.PageFetchTimeout, log),
		summarizer.NewGeminiSummarizer(client, cfg.GeminiModel, log),
		log,
		opts...,
	)
}
