package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hermes/internal/adapters/binance"
	"hermes/internal/adapters/clickhouse"
	"hermes/internal/adapters/config"
	"hermes/internal/adapters/errors/noop"
	"hermes/internal/adapters/errors/sentry"
	"hermes/internal/adapters/newsapi"
	"hermes/internal/adapters/openai"
	"hermes/internal/adapters/postgres"
	"hermes/internal/adapters/redis"
	"hermes/internal/adapters/telegram"
	"hermes/internal/analysis"
	"hermes/internal/domain/news"
	"hermes/internal/metrics"
	"hermes/internal/pricing"
	chrepo "hermes/internal/repository/clickhouse"
	pgrepo "hermes/internal/repository/postgres"
	redisrepo "hermes/internal/repository/redis"
	"hermes/internal/report"
	"hermes/internal/risk"
	analysissvc "hermes/internal/services/analysis"
	"hermes/internal/workers"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	if cfg.Metrics.Enabled {
		metrics.Init()
		startMetricsServer(cfg.Metrics.Addr, log)
	}

	// Databases
	pgClient, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer func() { _ = pgClient.Close() }()

	chClient, err := clickhouse.NewClient(cfg.ClickHouse)
	if err != nil {
		log.Fatalf("Failed to connect to ClickHouse: %v", err)
	}
	defer func() { _ = chClient.Close() }()

	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() { _ = redisClient.Close() }()

	// Repositories
	tradeRepo := pgrepo.NewTradeRepository(pgClient.DB())
	candleRepo := chrepo.NewCandleRepository(chClient.Conn())
	sessionRepo := redisrepo.NewSessionRepository(redisClient.Client())

	// External services
	exchange := binance.NewClient(0)

	var newsFetcher news.Fetcher
	if cfg.NewsAPI.APIKey != "" {
		fetcher, err := newsapi.NewClient(cfg.NewsAPI)
		if err != nil {
			log.Warnf("News analysis disabled: %v", err)
		} else {
			newsFetcher = fetcher
		}
	} else {
		log.Info("News analysis disabled (no API key)")
	}

	var conclusionWriter analysis.ConclusionWriter
	if cfg.OpenAI.APIKey != "" {
		writer, err := openai.NewConclusionWriter(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
		if err != nil {
			log.Warnf("GPT conclusions disabled: %v", err)
		} else {
			conclusionWriter = writer
		}
	} else {
		log.Info("GPT conclusions disabled (no API key)")
	}

	// Analysis pipeline
	pricer := pricing.NewEngine(cfg.Analysis.RiskFreeRate)
	riskEngine := risk.NewEngine()

	pipeline := analysis.NewPipeline(
		analysis.NewBlockTradesStage(tradeRepo, pricer),
		analysis.NewFundamentalStage(newsFetcher),
		analysis.NewTechnicalStage(candleRepo),
		analysis.NewRiskStage(candleRepo, riskEngine,
			cfg.Analysis.Capital, cfg.Analysis.MaxRiskPercent),
		analysis.NewRecommendStage(conclusionWriter),
	)

	// Telegram bot and dialog
	bot, err := telegram.NewBot(cfg.Telegram)
	if err != nil {
		log.Fatalf("Failed to create telegram bot: %v", err)
	}

	service := analysissvc.NewService(pipeline, report.NewGenerator(), bot, sessionRepo)
	handler := telegram.NewHandler(bot, sessionRepo, service,
		cfg.Analysis.MinDays, cfg.Analysis.MaxDays)
	bot.SetMessageHandler(handler.HandleUpdate)

	// Workers
	scheduler := workers.NewScheduler()
	scheduler.RegisterWorker(workers.NewCandleBackfillWorker(
		exchange, candleRepo,
		cfg.Workers.CandleBackfillInterval,
		cfg.Workers.CandleBackfillDays,
		cfg.Workers.CandleBackfillEnabled,
	))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start workers: %v", err)
	}

	go func() {
		if err := bot.Start(ctx); err != nil {
			log.Errorf("Telegram bot stopped: %v", err)
		}
	}()

	log.Info("System initialized successfully")

	waitForShutdown(cancel, scheduler, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// startMetricsServer serves the Prometheus endpoint in the background
func startMetricsServer(addr string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	go func() {
		log.Infof("Metrics server listening on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			log.Errorf("Metrics server failed: %v", err)
		}
	}()
}

// waitForShutdown blocks until SIGINT/SIGTERM, then stops everything in order
func waitForShutdown(cancel context.CancelFunc, scheduler *workers.Scheduler, errorTracker errors.Tracker, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Infof("Received signal %s, shutting down...", sig)
	cancel()

	if err := scheduler.Stop(); err != nil {
		log.Warnf("Worker shutdown: %v", err)
	}

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := errorTracker.Flush(flushCtx); err != nil {
		log.Warnf("Error tracker flush failed: %v", err)
	}

	log.Info("Shutdown complete")
}
