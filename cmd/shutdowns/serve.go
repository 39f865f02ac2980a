package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"shutdowns-bot/internal/bot"
	"shutdowns-bot/internal/cache"
	"shutdowns-bot/internal/config"
	"shutdowns-bot/internal/database"
	"shutdowns-bot/internal/handlers"
	"shutdowns-bot/internal/jobs"
	"shutdowns-bot/internal/logger"
	"shutdowns-bot/internal/metrics"
	"shutdowns-bot/internal/mq"
	"shutdowns-bot/internal/ping"
	"shutdowns-bot/internal/schedule"
	"shutdowns-bot/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot, the notification jobs and the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	log := logger.New("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// --- Metrics ---
	prom, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Schedule ---
	fetcher := schedule.NewFetcher(cfg.ScheduleURL, cfg.ScheduleNextQuery, cfg.FetchTimeout)
	tables := schedule.NewCache(fetcher, cfg.Freshness,
		schedule.WithRecorder(prom),
		schedule.WithLogger(logger.New("schedule")),
	)

	// --- Subscribers ---
	subs, closeSubs, err := openSubscribers(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSubs()

	// --- Notified snapshot ---
	var snapshots jobs.SnapshotStore = &cache.Memory{}
	if cfg.RedisURL != "" {
		redisCache, err := cache.New(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer redisCache.Close()
		snapshots = redisCache
		log.Infof("redis connected")
	}

	jobOpts := []jobs.Option{jobs.WithRecorder(prom)}

	// --- RabbitMQ ---
	if cfg.RabbitMQURL != "" {
		pub, err := mq.NewPublisher(ctx, cfg.RabbitMQURL)
		if err != nil {
			return fmt.Errorf("rabbitmq publisher: %w", err)
		}
		defer pub.Close()
		jobOpts = append(jobOpts, jobs.WithPublisher(mq.NewChangeNotifier(pub)))
		log.Infof("rabbitmq connected")
	}

	// --- Telegram Bot ---
	tgBot, err := bot.New(cfg.BotToken, subs, tables, cfg.GroupCount)
	if err != nil {
		return fmt.Errorf("bot: %w", err)
	}
	sender := bot.NewSender(tgBot.TeleBot(), subs)

	// --- Jobs ---
	svc := jobs.NewService(tables, subs, sender, snapshots, jobs.Config{
		Location:      loc,
		DailyHour:     cfg.DailyHour,
		WarningMinute: cfg.WarningMinute,
		CheckInterval: cfg.ChangeCheckInterval,
		QuietFrom:     cfg.QuietFrom,
		QuietTo:       cfg.QuietTo,
	}, jobOpts...)
	runner := jobs.NewRunner(prom, svc.Jobs()...)
	runner.Start(ctx)
	runner.Trigger(ctx, jobs.KindChange)

	// --- Fiber HTTP Server ---
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New())

	h := &handlers.Handlers{
		Tables:       tables,
		Subs:         subs,
		Prober:       ping.NewProber(cfg.PingPrivileged),
		UpstreamHost: ping.HostOf(cfg.ScheduleURL),
		Gatherer:     prometheus.DefaultGatherer,
	}
	h.Register(app)

	errCh := make(chan error, 1)
	go func() {
		log.Infof("API starting on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			errCh <- fmt.Errorf("server: %w", err)
		}
	}()

	// --- Start bot polling ---
	go tgBot.Start()
	log.Infof("telegram bot started")

	// --- Graceful shutdown ---
	select {
	case <-ctx.Done():
	case err = <-errCh:
	}
	log.Infof("shutting down...")
	stop()
	tgBot.Stop()
	if shutdownErr := app.ShutdownWithTimeout(10 * time.Second); shutdownErr != nil {
		log.Errorf("http shutdown: %v", shutdownErr)
	}
	runner.Wait()
	return err
}

// openSubscribers picks Postgres when DATABASE_URL is set and the JSON file otherwise.
func openSubscribers(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		fs, err := store.NewFileStore(cfg.UsersFile)
		if err != nil {
			return nil, nil, fmt.Errorf("users file: %w", err)
		}
		return fs, func() {}, nil
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	logger.New("main").Infof("database connected and migrated")
	return db, db.Close, nil
}
