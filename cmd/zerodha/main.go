package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dhanu0746/Zerodha-clone/internal/config"
	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
	"github.com/Dhanu0746/Zerodha-clone/internal/engine"
	"github.com/Dhanu0746/Zerodha-clone/internal/handler"
	"github.com/Dhanu0746/Zerodha-clone/internal/journal"
	"github.com/Dhanu0746/Zerodha-clone/internal/ledger"
	"github.com/Dhanu0746/Zerodha-clone/internal/metrics"
	"github.com/Dhanu0746/Zerodha-clone/internal/oracle"
	"github.com/Dhanu0746/Zerodha-clone/internal/publish"
	"github.com/Dhanu0746/Zerodha-clone/internal/service"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ledger and registries.
	store := ledger.NewStore(ledger.WithRetry(cfg.LockAttempts, cfg.LockBaseDelay))
	symbols := domain.NewSymbolRegistry()
	books := engine.NewBookManager()

	// Price oracle. The simulator always exists: in alpaca mode it is the
	// fallback and gets anchored by live trades.
	seed := cfg.OracleSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sim := oracle.NewSimulator(seed)
	var priceOracle oracle.Oracle = sim
	var tickSource oracle.TickSource = sim
	if cfg.OracleMode == config.OracleModeAlpaca {
		live := oracle.NewLive(cfg.AlpacaAPIKey, cfg.AlpacaAPISecret, cfg.AlpacaDataURL,
			cfg.OracleTimeout, sim, logger)
		priceOracle = live
		tickSource = live
		logger.Info("price oracle: alpaca live data with simulator fallback")
	} else {
		logger.Info("price oracle: simulator", slog.Int64("seed", seed))
	}

	// Event publishers: log always, Redis and webhooks when configured.
	webhookStore := publish.NewWebhookStore()
	publishers := publish.Fanout{
		publish.NewLogPublisher(logger),
		publish.NewWebhookPublisher(webhookStore, &http.Client{Timeout: cfg.WebhookTimeout}),
	}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		publishers = append(publishers, publish.NewRedisPublisher(client, cfg.RedisTimeout, logger))
		logger.Info("redis publisher enabled", slog.String("addr", cfg.RedisAddr))
		defer client.Close()
	}

	// Audit journal, optional.
	var auditJournal engine.Journal
	if cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath, logger)
		if err != nil {
			logger.Error("failed to open journal", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer j.Close()
		auditJournal = j
		logger.Info("audit journal enabled", slog.String("path", cfg.JournalPath))
	}

	reg := metrics.NewRegistry()

	// Engine and sweeper.
	fees := domain.FeeSchedule{MakerBps: cfg.MakerFeeBps, TakerBps: cfg.TakerFeeBps}
	eng := engine.NewEngine(store, books, symbols, fees, publishers, auditJournal, reg.Engine)
	sweeper := engine.NewSweeper(eng, store, books, reg.Engine, logger)
	validator := engine.NewValidator(store, priceOracle)

	// Services.
	accountSvc := service.NewAccountService(store, priceOracle, cfg.StartingBalanceCents)
	orderSvc := service.NewOrderService(validator, eng, sweeper, store)
	marketSvc := service.NewMarketService(priceOracle, books, symbols, cfg.DepthLevels)
	webhookSvc := service.NewWebhookService(webhookStore, store)

	router := handler.NewRouter(accountSvc, orderSvc, marketSvc, webhookSvc, reg, logger)

	// Background loops: the ticker advances prices and feeds the sweeper
	// plus the price channel; the sweeper drains its queue.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := oracle.NewTicker(tickSource, symbols, cfg.TickInterval,
		sweeper.OnTick,
		func(tick domain.PriceTick) {
			publishers.PublishPriceTick(ctx, tick)
		},
	)
	go sweeper.Run(ctx)
	go ticker.Run(ctx)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	cancel()

	logger.Info("server stopped")
}
