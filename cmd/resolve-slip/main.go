// resolve-slip resolves one booking code and prints the slip as JSON.
//
//	go run ./cmd/resolve-slip -platform sportybet -code 3F7K2P
//	go run ./cmd/resolve-slip -platform bet9ja -code BJ99999 -to sportybet
//	go run ./cmd/resolve-slip -code 3F7K2P -fetcher static -v
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Vodeneev/betcode/internal/converter"
	"github.com/Vodeneev/betcode/internal/parser/parsers"
	"github.com/Vodeneev/betcode/internal/pkg/browser"
	pkgconfig "github.com/Vodeneev/betcode/internal/pkg/config"
	"github.com/Vodeneev/betcode/internal/pkg/enums"
	"github.com/Vodeneev/betcode/internal/pkg/logging"
	"github.com/Vodeneev/betcode/internal/pkg/markets"
	"github.com/Vodeneev/betcode/internal/pkg/models"
	"github.com/Vodeneev/betcode/internal/pkg/performance"

	_ "github.com/Vodeneev/betcode/internal/parser/parsers/all"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "Path to config file (optional)")
	platform := flag.String("platform", string(enums.SportyBet), "Source platform")
	code := flag.String("code", "", "Booking code to resolve")
	to := flag.String("to", "", "Also convert to this platform")
	fetcher := flag.String("fetcher", "", "Override resolver.fetcher (chrome or static)")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall deadline")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	if err := run(*configPath, *platform, *code, *to, *fetcher, *timeout, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, platform, code, to, fetcher string, timeout time.Duration, verbose bool) error {
	if code == "" {
		return fmt.Errorf("-code is required")
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := pkgconfig.Default()
	if configPath != "" {
		loaded, err := pkgconfig.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if fetcher != "" {
		cfg.Resolver.Fetcher = fetcher
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	_, closer, err := logging.SetupLogger(&cfg.Logging, "resolve-slip")
	if err != nil {
		slog.Warn("Failed to setup log file", "error", err)
	}
	defer closer.Close()

	b, err := browser.New(cfg.Resolver.Fetcher, browser.Options{
		UserAgent:   cfg.Resolver.UserAgent,
		ChromePath:  cfg.Resolver.ChromePath,
		Headful:     cfg.Resolver.Headful,
		SettleDelay: cfg.Resolver.SettleDelay,
	})
	if err != nil {
		return err
	}

	factory, ok := parsers.FactoryByName(platform)
	if !ok {
		return fmt.Errorf("unknown platform %q (available: %v)", platform, parsers.AvailableNames())
	}
	tracker := performance.NewTracker()
	src := factory(cfg, parsers.Env{Browser: b, Recorder: tracker})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var out interface{}
	if to == "" {
		s, ok := src.Resolve(ctx, code)
		if !ok {
			return fmt.Errorf("code %s not resolved on %s", code, src.Name())
		}
		out = s
	} else {
		svc := converter.NewService(converter.Deps{
			Sources:    map[string]parsers.Source{src.Name(): src},
			Translator: markets.NewTranslator(cfg.Markets.Extra),
		})
		res, _ := svc.Convert(ctx, models.ConvertRequest{
			Code:         code,
			FromPlatform: enums.Platform(platform),
			ToPlatform:   enums.Platform(to),
		})
		out = res
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if verbose {
		tracker.PrintSummary()
	}
	return nil
}
