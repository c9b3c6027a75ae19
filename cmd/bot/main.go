package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/market-scanner/internal/adapters/config"
	"github.com/selivandex/market-scanner/internal/adapters/feeds"
	"github.com/selivandex/market-scanner/internal/adapters/telegram"
	"github.com/selivandex/market-scanner/internal/bias"
	"github.com/selivandex/market-scanner/internal/health"
	"github.com/selivandex/market-scanner/internal/reports"
	"github.com/selivandex/market-scanner/internal/scanner"
	"github.com/selivandex/market-scanner/internal/signals"
	"github.com/selivandex/market-scanner/internal/state"
	"github.com/selivandex/market-scanner/pkg/logger"
	"github.com/selivandex/market-scanner/pkg/worker"
)

func main() {
	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("Multi-Market Scanner starting...",
		zap.Duration("interval", cfg.Scanner.Interval),
	)

	// Restore persisted state
	ledger := state.NewLedger()
	acc := bias.NewAccumulator()
	store := state.NewStore(cfg.Scanner.StatePath)
	store.Load(ledger, acc)

	// Initialize Telegram notifier (degrades to no-op without credentials)
	notifier, err := telegram.NewNotifier(&cfg.Telegram)
	if err != nil {
		return fmt.Errorf("failed to create telegram notifier: %w", err)
	}

	// Build feed providers in declared order; EIA inventory source last
	providers, err := buildProviders(cfg)
	if err != nil {
		return err
	}

	engine := signals.NewEngine(acc)
	scheduler := reports.NewScheduler(acc, engine, notifier, cfg.Reports.SummaryInterval, cfg.Reports.AlertCooldown)
	pipeline := scanner.NewPipeline(providers, ledger, acc, store, notifier, cfg.Scanner.ItemsPerFeed)
	scan := scanner.NewScanner(pipeline, scheduler)

	// Startup message
	if err := notifier.Send(fmt.Sprintf(
		"✅ Multi-Market Scanner Connected\nTime: %s",
		time.Now().Format("2006-01-02 15:04:05"),
	)); err != nil {
		logger.Warn("startup message failed", zap.Error(err))
	}

	// Run the scanner loop under a supervisor: a crashed loop restarts after
	// a fixed backoff and the channel gets a crash notice
	runner := worker.NewRunner(scan, cfg.Scanner.Interval, cfg.Scanner.ErrorBackoff)
	supervisor := worker.NewSupervisor("scanner-loop", runner.RunLoop, cfg.Scanner.ErrorBackoff, func(err error) {
		if notifyErr := notifier.Send(fmt.Sprintf("⚠️ Scanner loop crashed, restarting: %v", err)); notifyErr != nil {
			logger.Warn("crash notification failed", zap.Error(notifyErr))
		}
	})
	go supervisor.Run(ctx)

	logger.Info("scanner loop started",
		zap.Int("feeds", len(providers)),
	)

	// Status server blocks; a bind failure is fatal
	srv := health.NewServer(cfg.Server.Port)

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Warn("status server shutdown failed", zap.Error(err))
		}
	}()

	if err := srv.Start(); err != nil {
		return fmt.Errorf("status server failed: %w", err)
	}

	logger.Info("shut down gracefully")
	return nil
}

// buildProviders assembles the polled sources in fixed order
func buildProviders(cfg *config.Config) ([]feeds.Provider, error) {
	feedList, err := cfg.Feeds.Parse()
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed sources: %w", err)
	}

	providers := make([]feeds.Provider, 0, len(feedList)+1)
	for _, feed := range feedList {
		providers = append(providers, feeds.NewRSSProvider(feed.Name, feed.URL, cfg.Scanner.FetchTimeout))
	}

	eia := feeds.NewEIAProvider(cfg.EIA.APIKey, cfg.Scanner.FetchTimeout)
	if !eia.IsEnabled() {
		logger.Warn("EIA API key not set, inventory provider disabled")
	}
	providers = append(providers, eia)

	return providers, nil
}
