package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// ChromeBrowser launches one headless Chrome process per opened page.
type ChromeBrowser struct {
	opts Options
}

func NewChromeBrowser(opts Options) *ChromeBrowser {
	return &ChromeBrowser{opts: opts}
}

// Open starts Chrome. The process lives until Close is called or ctx is done.
func (b *ChromeBrowser) Open(ctx context.Context) (Page, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !b.opts.Headful),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
	)
	if b.opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(b.opts.UserAgent))
	}
	if b.opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(b.opts.ChromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...interface{}) {
		slog.Debug("chromedp", "message", fmt.Sprintf(format, v...))
	}))

	// The first Run on the tab context launches the browser; later runs use
	// short-lived child contexts that must not own the process.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	return &chromePage{
		ctx:         tabCtx,
		settleDelay: b.opts.SettleDelay,
		cancel: func() {
			cancelTab()
			cancelAlloc()
		},
	}, nil
}

type chromePage struct {
	ctx         context.Context
	cancel      context.CancelFunc
	settleDelay time.Duration
	timeout     time.Duration
	navigated   bool
}

func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	timeout := p.timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runCtx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	// Propagate cancellation of the caller's context as well.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (p *chromePage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	p.timeout = timeout
	p.navigated = false

	actions := []chromedp.Action{chromedp.Navigate(url)}
	if p.settleDelay > 0 {
		actions = append(actions, chromedp.Sleep(p.settleDelay))
	}
	if err := p.run(ctx, actions...); err != nil {
		return fmt.Errorf("chromedp navigation %s: %w", url, err)
	}
	p.navigated = true
	return nil
}

func (p *chromePage) QuerySelector(ctx context.Context, selector string) (Element, bool, error) {
	if !p.navigated {
		return nil, false, ErrNotNavigated
	}
	var nodes []*cdp.Node
	// AtLeast(0) makes the query return immediately instead of polling until a match appears.
	err := p.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return nil, false, fmt.Errorf("query %q: %w", selector, err)
	}
	if len(nodes) == 0 {
		return nil, false, nil
	}
	return nodes[0], true, nil
}

func (p *chromePage) InnerText(ctx context.Context, el Element) (string, error) {
	node, ok := el.(*cdp.Node)
	if !ok || node == nil {
		return "", fmt.Errorf("chromedp: unexpected element %T", el)
	}
	var text string
	if err := p.run(ctx, chromedp.Text([]cdp.NodeID{node.NodeID}, &text, chromedp.ByNodeID)); err != nil {
		return "", fmt.Errorf("inner text: %w", err)
	}
	return text, nil
}

func (p *chromePage) Markup(ctx context.Context) (string, error) {
	if !p.navigated {
		return "", ErrNotNavigated
	}
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("outer html: %w", err)
	}
	return html, nil
}

func (p *chromePage) Close() error {
	p.cancel()
	return nil
}
