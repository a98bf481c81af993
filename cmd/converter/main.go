package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Vodeneev/betcode/internal/converter"
	"github.com/Vodeneev/betcode/internal/parser/parsers"
	"github.com/Vodeneev/betcode/internal/parser/slip"
	"github.com/Vodeneev/betcode/internal/pkg/browser"
	"github.com/Vodeneev/betcode/internal/pkg/chat"
	pkgconfig "github.com/Vodeneev/betcode/internal/pkg/config"
	"github.com/Vodeneev/betcode/internal/pkg/health"
	"github.com/Vodeneev/betcode/internal/pkg/logging"
	"github.com/Vodeneev/betcode/internal/pkg/markets"
	"github.com/Vodeneev/betcode/internal/pkg/metrics"
	"github.com/Vodeneev/betcode/internal/pkg/notify"
	"github.com/Vodeneev/betcode/internal/pkg/performance"
	"github.com/Vodeneev/betcode/internal/pkg/storage"
	"github.com/Vodeneev/betcode/internal/pkg/validation"

	_ "github.com/Vodeneev/betcode/internal/parser/parsers/all"
)

const (
	serviceName       = "betcode-converter"
	defaultConfigPath = "configs/production.yaml"
)

type config struct {
	configPath string
	runFor     time.Duration
}

func main() {
	if err := run(); err != nil {
		slog.Error("Converter service failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := parseFlags()

	slog.Info("Loading config", "path", cfg.configPath)
	appConfig, err := pkgconfig.Load(cfg.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	_, logCloser, err := logging.SetupLogger(&appConfig.Logging, serviceName)
	if err != nil {
		slog.Warn("Failed to setup log file, continuing with stdout only", "error", err)
	}
	defer logCloser.Close()

	ctx, cancel := createContext(cfg.runFor)
	defer cancel()
	setupSignalHandler(ctx, cancel)

	b, err := browser.New(appConfig.Resolver.Fetcher, browser.Options{
		UserAgent:   appConfig.Resolver.UserAgent,
		ChromePath:  appConfig.Resolver.ChromePath,
		Headful:     appConfig.Resolver.Headful,
		SettleDelay: appConfig.Resolver.SettleDelay,
	})
	if err != nil {
		return err
	}

	m := metrics.NewConverterMetrics()
	tracker := performance.GetTracker()
	defer tracker.PrintSummary()

	sources := parsers.BuildAll(appConfig, parsers.Env{
		Browser:  b,
		Recorder: slip.Recorders{tracker, m},
	})
	slog.Info("Slip sources ready", "sources", parsers.AvailableNames(), "fetcher", appConfig.Resolver.Fetcher)

	audit := setupAudit(appConfig)
	defer audit.Close()

	notifier := setupNotifier(appConfig, m)
	defer notifier.Stop()

	hub := chat.NewHub(m)
	if relay := setupRelay(ctx, appConfig, hub); relay != nil {
		defer relay.Close()
	}

	svc := converter.NewService(converter.Deps{
		Sources:    sources,
		Translator: markets.NewTranslator(appConfig.Markets.Extra),
		Sanitizer:  validation.NewSanitizer(),
		Metrics:    m,
		Audit:      audit,
		Notifier:   notifier,
	})

	router := health.NewRouter(&appConfig.Server, health.Deps{
		Converter: svc,
		Hub:       hub,
		Metrics:   m,
		Tracker:   tracker,
		Audit:     audit,
	})
	return health.Run(ctx, &appConfig.Server, serviceName, router)
}

func parseFlags() config {
	var cfg config
	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}
	flag.StringVar(&cfg.configPath, "config", defaultConfig, "Path to config file")
	flag.DurationVar(&cfg.runFor, "run-for", 0, "Auto-stop after duration. 0 = run until SIGINT/SIGTERM")
	flag.Parse()
	return cfg
}

// setupAudit returns the Postgres audit log, or a no-op when it is not configured or unreachable.
func setupAudit(cfg *pkgconfig.Config) storage.AuditStorage {
	if cfg.Audit.PostgresDSN == "" {
		return storage.NopAuditStorage{}
	}
	audit, err := storage.NewPostgresAuditStorage(&cfg.Audit)
	if err != nil {
		slog.Warn("Audit storage disabled", "error", err)
		return storage.NopAuditStorage{}
	}
	return audit
}

// setupNotifier returns nil when Telegram is not configured; a nil notifier is a no-op.
func setupNotifier(cfg *pkgconfig.Config, m *metrics.ConverterMetrics) *notify.TelegramNotifier {
	if cfg.Telegram.BotToken == "" {
		return nil
	}
	n, err := notify.NewTelegramNotifier(&cfg.Telegram)
	if err != nil {
		slog.Warn("Telegram notifier disabled", "error", err)
		return nil
	}
	n.OnResult(m.RecordNotification)
	return n
}

func setupRelay(ctx context.Context, cfg *pkgconfig.Config, hub *chat.Hub) *chat.RedisRelay {
	if cfg.Chat.RedisURL == "" {
		return nil
	}
	relay, err := chat.NewRedisRelay(cfg.Chat.RedisURL, cfg.Chat.Channel, hub)
	if err != nil {
		slog.Warn("Chat relay disabled, broadcasting locally", "error", err)
		return nil
	}
	hub.SetRelay(relay)
	go func() {
		if err := relay.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("Chat relay stopped", "error", err)
			hub.SetRelay(nil)
		}
	}()
	return relay
}

func createContext(runFor time.Duration) (context.Context, context.CancelFunc) {
	if runFor > 0 {
		return context.WithTimeout(context.Background(), runFor)
	}
	return context.WithCancel(context.Background())
}

func setupSignalHandler(ctx context.Context, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
			signal.Stop(sigChan)
		}
	}()
}
