// Package slip turns booking pages into slips. A Resolver walks candidate URLs
// of a platform and, on each, tries the rendered text of known slip containers
// first and the state payload embedded in the markup second.
package slip

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Vodeneev/betcode/internal/pkg/browser"
	"github.com/Vodeneev/betcode/internal/pkg/models"
)

// Strategies reported in Resolution.Strategy.
const (
	StrategyText    = "text"
	StrategyPayload = "payload"
	StrategyFixture = "fixture"
	StrategyNone    = "none"
)

// Resolution describes the outcome of one Resolve call.
type Resolution struct {
	Platform  string
	Code      string
	Strategy  string
	URL       string // page that produced the legs, empty on failure
	URLsTried int
	Legs      int
	Duration  time.Duration
	Err       error // why nothing was found, when the page tool failed outright
}

// Success reports whether legs were found.
func (r Resolution) Success() bool {
	return r.Strategy != StrategyNone
}

// Recorder receives resolution outcomes (metrics, tracker).
type Recorder interface {
	RecordResolution(r Resolution)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(r Resolution)

func (f RecorderFunc) RecordResolution(r Resolution) { f(r) }

// Recorders fans a resolution out to every non-nil recorder.
type Recorders []Recorder

func (rs Recorders) RecordResolution(r Resolution) {
	for _, rec := range rs {
		if rec != nil {
			rec.RecordResolution(r)
		}
	}
}

// Resolver resolves booking codes of one platform by scraping its pages.
type Resolver struct {
	platform     string
	browser      browser.Browser
	urlTemplates []string
	selectors    []string
	recorder     Recorder
}

// NewResolver creates a resolver. urlTemplates contain "{code}"; recorder may be nil.
func NewResolver(platform string, b browser.Browser, urlTemplates, selectors []string, recorder Recorder) *Resolver {
	return &Resolver{
		platform:     platform,
		browser:      b,
		urlTemplates: urlTemplates,
		selectors:    selectors,
		recorder:     recorder,
	}
}

// URLs returns the candidate page URLs for code, in priority order.
func (r *Resolver) URLs(code string) []string {
	escaped := url.PathEscape(code)
	urls := make([]string, 0, len(r.urlTemplates))
	for _, tpl := range r.urlTemplates {
		urls = append(urls, strings.ReplaceAll(tpl, "{code}", escaped))
	}
	return urls
}

// Resolve returns the slip behind code, or ok=false when no URL and no strategy
// produced legs. Failures of the page tool, including panics, never escape:
// they are logged and reported as not resolved.
func (r *Resolver) Resolve(ctx context.Context, code string, timeout time.Duration) (slip *models.Slip, ok bool) {
	res := Resolution{Platform: r.platform, Code: code, Strategy: StrategyNone}
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			slog.Error("Slip resolver panic", "platform", r.platform, "code", code, "panic", p, "stack", string(debug.Stack()))
			slip, ok = nil, false
			res.Strategy, res.URL, res.Legs = StrategyNone, "", 0
			res.Err = fmt.Errorf("panic: %v", p)
		}
		res.Duration = time.Since(start)
		if r.recorder != nil {
			r.recorder.RecordResolution(res)
		}
	}()

	page, err := r.browser.Open(ctx)
	if err != nil {
		slog.Warn("Page tool unavailable", "platform", r.platform, "error", err)
		res.Err = err
		return nil, false
	}
	defer func() {
		if err := page.Close(); err != nil {
			slog.Debug("Close page", "platform", r.platform, "error", err)
		}
	}()

	for _, u := range r.URLs(code) {
		if ctx.Err() != nil {
			res.Err = ctx.Err()
			break
		}
		res.URLsTried++

		legs, strategy := r.resolvePage(ctx, page, u, timeout)
		if len(legs) > 0 {
			res.Strategy, res.URL, res.Legs = strategy, u, len(legs)
			slog.Info("Slip resolved", "platform", r.platform, "code", code, "url", u, "strategy", strategy, "legs", len(legs))
			return &models.Slip{Legs: legs}, true
		}
	}

	slog.Info("Slip not resolved", "platform", r.platform, "code", code, "urls_tried", res.URLsTried)
	return nil, false
}

// resolvePage runs the per-URL strategies: container text first, embedded payload second.
func (r *Resolver) resolvePage(ctx context.Context, page browser.Page, u string, timeout time.Duration) ([]models.Leg, string) {
	if err := page.Navigate(ctx, u, timeout); err != nil {
		slog.Warn("Navigation failed, trying next URL", "platform", r.platform, "url", u, "error", err)
		return nil, StrategyNone
	}

	for _, sel := range r.selectors {
		el, found, err := page.QuerySelector(ctx, sel)
		if err != nil {
			slog.Debug("Selector query failed", "url", u, "selector", sel, "error", err)
			continue
		}
		if !found {
			continue
		}
		text, err := page.InnerText(ctx, el)
		if err != nil {
			slog.Debug("Inner text failed", "url", u, "selector", sel, "error", err)
			continue
		}
		if legs, ok := ParseLegsFromText(text); ok {
			return legs, StrategyText
		}
	}

	markup, err := page.Markup(ctx)
	if err != nil {
		slog.Debug("Markup unavailable", "url", u, "error", err)
		return nil, StrategyNone
	}
	payload, ok := LocatePayload(markup)
	if !ok {
		return nil, StrategyNone
	}
	if legs, ok := LegsFromPayload(payload); ok {
		return legs, StrategyPayload
	}
	return nil, StrategyNone
}
