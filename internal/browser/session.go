package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// Options configures the shared Chrome process.
type Options struct {
	Headless  bool
	UserAgent string
	// ChromePath overrides binary discovery; empty means auto-detect.
	ChromePath string
}

// Browser owns one ExecAllocator and lends page-scoped contexts from it.
// The allocator starts lazily on the first NewPage call so commands that
// never touch a browser pay nothing.
type Browser struct {
	opts Options

	mu          sync.Mutex
	allocCtx    context.Context
	allocCancel context.CancelFunc
	started     bool
	closed      bool
}

func New(opts Options) *Browser {
	return &Browser{opts: opts}
}

func (b *Browser) start() error {
	if b.started {
		return nil
	}
	if b.closed {
		return fmt.Errorf("browser already closed")
	}

	chromePath := b.opts.ChromePath
	if chromePath == "" {
		chromePath = FindChrome()
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("window-size", "1920,1080"),
	}
	if chromePath != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(chromePath)}, allocOpts...)
	}
	if b.opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(b.opts.UserAgent))
	}
	if b.opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	}

	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), allocOpts...)
	b.started = true
	log.Debug().Bool("headless", b.opts.Headless).Msg("browser allocator started")
	return nil
}

// NewPage returns a fresh tab context derived from the shared allocator.
// The caller must invoke cancel when done; closing the page never affects
// other pages. The returned context also respects parent cancellation.
func (b *Browser) NewPage(parent context.Context) (context.Context, context.CancelFunc, error) {
	b.mu.Lock()
	if err := b.start(); err != nil {
		b.mu.Unlock()
		return nil, nil, err
	}
	allocCtx := b.allocCtx
	b.mu.Unlock()

	pageCtx, pageCancel := chromedp.NewContext(allocCtx)

	// Bridge parent cancellation into the page context.
	stop := context.AfterFunc(parent, pageCancel)
	cancel := func() {
		stop()
		pageCancel()
	}

	// Materialize the tab so failures surface here, not mid-navigation.
	if err := chromedp.Run(pageCtx, chromedp.Navigate("about:blank")); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed to open page: %w", err)
	}
	return pageCtx, cancel, nil
}

// Close tears down the Chrome process. Safe to call multiple times.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	if b.started {
		b.allocCancel()
		log.Debug().Msg("browser allocator closed")
	}
}
