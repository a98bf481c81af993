package parsers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Vodeneev/betcode/internal/parser/slip"
	"github.com/Vodeneev/betcode/internal/pkg/browser"
	"github.com/Vodeneev/betcode/internal/pkg/models"
)

// Source resolves booking codes of one platform into slips.
type Source interface {
	Name() string
	Resolve(ctx context.Context, code string) (*models.Slip, bool)
}

// Env carries the shared runtime dependencies handed to every factory.
type Env struct {
	Browser  browser.Browser
	Recorder slip.Recorder
}

// PlatformSource serves fixtures first and falls back to scraping when a resolver is set.
type PlatformSource struct {
	name     string
	fixtures map[string]models.Slip
	resolver *slip.Resolver
	timeout  time.Duration
	recorder slip.Recorder
}

// NewPlatformSource creates a source. resolver may be nil for fixture-only platforms.
func NewPlatformSource(name string, fixtures map[string]models.Slip, resolver *slip.Resolver, timeout time.Duration, recorder slip.Recorder) *PlatformSource {
	normalized := make(map[string]models.Slip, len(fixtures))
	for code, s := range fixtures {
		normalized[fixtureKey(code)] = s
	}
	return &PlatformSource{
		name:     name,
		fixtures: normalized,
		resolver: resolver,
		timeout:  timeout,
		recorder: recorder,
	}
}

func (s *PlatformSource) Name() string {
	return s.name
}

// Resolve returns a copy of the fixture for code, or scrapes when none is configured.
func (s *PlatformSource) Resolve(ctx context.Context, code string) (*models.Slip, bool) {
	if fx, ok := s.fixtures[fixtureKey(code)]; ok && !fx.Empty() {
		out := fx.Clone()
		slog.Debug("Slip served from fixture", "platform", s.name, "code", code, "legs", len(out.Legs))
		if s.recorder != nil {
			s.recorder.RecordResolution(slip.Resolution{
				Platform: s.name, Code: code, Strategy: slip.StrategyFixture, Legs: len(out.Legs),
			})
		}
		return out, true
	}

	if s.resolver == nil {
		if s.recorder != nil {
			s.recorder.RecordResolution(slip.Resolution{Platform: s.name, Code: code, Strategy: slip.StrategyNone})
		}
		return nil, false
	}
	return s.resolver.Resolve(ctx, code, s.timeout)
}

func fixtureKey(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// MergeFixtures returns defaults overlaid with configured fixtures.
func MergeFixtures(defaults, configured map[string]models.Slip) map[string]models.Slip {
	out := make(map[string]models.Slip, len(defaults)+len(configured))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range configured {
		out[k] = v
	}
	return out
}

// Or returns configured when non-empty, defaults otherwise.
func Or(configured, defaults []string) []string {
	if len(configured) > 0 {
		return configured
	}
	return defaults
}
