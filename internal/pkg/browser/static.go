package browser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// maxBodySize caps downloaded pages; booking pages are far below it.
const maxBodySize = 8 << 20

// StaticBrowser fetches pages without executing scripts.
type StaticBrowser struct {
	opts   Options
	client *http.Client
}

// NewStaticBrowser returns a StaticBrowser. A nil client means a fresh client
// with transparent compression disabled (bodies are decoded in readBodyDecode).
func NewStaticBrowser(opts Options, client *http.Client) *StaticBrowser {
	if client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.DisableCompression = true
		client = &http.Client{Transport: transport}
	}
	return &StaticBrowser{opts: opts, client: client}
}

func (b *StaticBrowser) Open(ctx context.Context) (Page, error) {
	return &staticPage{browser: b}, nil
}

type staticPage struct {
	browser *StaticBrowser
	markup  string
	doc     *goquery.Document
}

func (p *staticPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	p.markup, p.doc = "", nil

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br, zstd")
	if p.browser.opts.UserAgent != "" {
		req.Header.Set("User-Agent", p.browser.opts.UserAgent)
	}

	resp, err := p.browser.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("get %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := readBodyDecode(resp)
	if err != nil {
		return fmt.Errorf("read %s: %w", url, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse %s: %w", url, err)
	}
	p.markup, p.doc = string(body), doc
	return nil
}

func (p *staticPage) QuerySelector(ctx context.Context, selector string) (Element, bool, error) {
	if p.doc == nil {
		return nil, false, ErrNotNavigated
	}
	// invalid selectors match nothing
	sel := p.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, false, nil
	}
	return sel, true, nil
}

func (p *staticPage) InnerText(ctx context.Context, el Element) (string, error) {
	sel, ok := el.(*goquery.Selection)
	if !ok || sel == nil {
		return "", fmt.Errorf("static: unexpected element %T", el)
	}
	return VisibleText(sel), nil
}

func (p *staticPage) Markup(ctx context.Context) (string, error) {
	if p.doc == nil {
		return "", ErrNotNavigated
	}
	return p.markup, nil
}

func (p *staticPage) Close() error {
	p.markup, p.doc = "", nil
	return nil
}

// readBodyDecode reads response body and decompresses it based on Content-Encoding (gzip, br, zstd).
func readBodyDecode(resp *http.Response) ([]byte, error) {
	body := io.LimitReader(resp.Body, maxBodySize)
	enc := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	switch {
	case strings.Contains(enc, "br"):
		return io.ReadAll(io.LimitReader(brotli.NewReader(body), maxBodySize))
	case strings.Contains(enc, "zstd"):
		r, err := zstd.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		defer r.Close()
		return io.ReadAll(io.LimitReader(r, maxBodySize))
	case strings.Contains(enc, "gzip"):
		r, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer r.Close()
		b, err := io.ReadAll(io.LimitReader(r, maxBodySize))
		if err != nil {
			return nil, fmt.Errorf("read gzip body: %w", err)
		}
		return b, nil
	default:
		return io.ReadAll(body)
	}
}
