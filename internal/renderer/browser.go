package renderer

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"mstern/restockwatch/logger"
)

// browserRenderer drives a long-lived headless Chrome via chromedp. The
// browser context is created once and reused serially for the process
// lifetime; each Load simply redirects the same tab.
type browserRenderer struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	log           *logger.Logger
}

func newBrowserRenderer(headless bool) (Renderer, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so the first check doesn't absorb the
	// startup cost inside its timeout budget.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &browserRenderer{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		log:           logger.ForRenderer(),
	}, nil
}

// run executes chromedp actions against the long-lived browser context,
// bounded by the caller's context. Cancellation abandons the actions but
// keeps the browser alive.
func (b *browserRenderer) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(b.browserCtx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- chromedp.Run(runCtx, actions...) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	}
}

func (b *browserRenderer) Load(ctx context.Context, url, userAgent string) error {
	actions := make([]chromedp.Action, 0, 2)
	if userAgent != "" {
		actions = append(actions, emulation.SetUserAgentOverride(userAgent))
	}
	actions = append(actions, chromedp.Navigate(url))

	b.log.Debug().Str("url", url).Msg("Navigating")
	return b.run(ctx, actions...)
}

func (b *browserRenderer) Evaluate(ctx context.Context, js string, out interface{}) error {
	return b.run(ctx, chromedp.Evaluate(js, out))
}

func (b *browserRenderer) Markup(ctx context.Context) (string, error) {
	var html string
	err := b.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (b *browserRenderer) Close() error {
	b.browserCancel()
	b.allocCancel()
	return nil
}
