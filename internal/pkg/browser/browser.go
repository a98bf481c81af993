// Package browser provides the page-fetch tool used to read booking pages:
// navigate to a URL, query elements by CSS selector, read their visible text
// and dump the full markup.
//
// ChromeBrowser renders pages in headless Chrome via chromedp. StaticBrowser
// downloads markup over plain HTTP and evaluates selectors with goquery; it
// cannot run scripts but is enough for pages that embed their state inline.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotNavigated is returned by Page methods called before a successful Navigate.
var ErrNotNavigated = errors.New("browser: page has not been navigated")

// Element is a handle to a node returned by Page.QuerySelector. It is only
// valid for the page that produced it, until the next Navigate.
type Element interface{}

// Browser opens pages. Each Page is owned by a single resolution and must be closed.
type Browser interface {
	Open(ctx context.Context) (Page, error)
}

// Page is one browser tab (or its static equivalent).
type Page interface {
	// Navigate loads url, failing if it does not load within timeout.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// QuerySelector returns the first element matching selector; ok is false when none matches.
	QuerySelector(ctx context.Context, selector string) (el Element, ok bool, err error)
	// InnerText returns the rendered text of el, one line per block.
	InnerText(ctx context.Context, el Element) (string, error)
	// Markup returns the full document markup.
	Markup(ctx context.Context) (string, error)
	Close() error
}

// Options are shared by both browser implementations.
type Options struct {
	UserAgent string
	// ChromePath overrides the Chrome binary; empty means chromedp's lookup.
	ChromePath string
	Headful    bool
	// SettleDelay is waited after navigation so client-side scripts can render.
	SettleDelay time.Duration
}

// Fetcher names accepted by New.
const (
	FetcherChrome = "chrome"
	FetcherStatic = "static"
)

// New returns the browser implementation named by fetcher.
func New(fetcher string, opts Options) (Browser, error) {
	switch fetcher {
	case FetcherChrome, "":
		return NewChromeBrowser(opts), nil
	case FetcherStatic:
		return NewStaticBrowser(opts, nil), nil
	default:
		return nil, fmt.Errorf("unknown fetcher %q (want %q or %q)", fetcher, FetcherChrome, FetcherStatic)
	}
}
