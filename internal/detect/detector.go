package detect

import (
	"context"
	"fmt"
	"time"

	"github.com/SameerVers3/Scrapply/internal/browser"
	"github.com/SameerVers3/Scrapply/pkg/models"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// How long the network must stay silent before it counts as idle.
const networkQuietWindow = 500 * time.Millisecond

// Detector probes a live page for dynamic-content evidence. Detection is
// best-effort by contract: every failure degrades to weaker evidence, never
// to an error.
type Detector struct {
	browser     *browser.Browser
	navTimeout  time.Duration
	idleTimeout time.Duration
	log         zerolog.Logger
}

func New(b *browser.Browser, navTimeout, idleTimeout time.Duration, log zerolog.Logger) *Detector {
	return &Detector{
		browser:     b,
		navTimeout:  navTimeout,
		idleTimeout: idleTimeout,
		log:         log.With().Str("component", "detector").Logger(),
	}
}

// DetectDynamicContent loads url in a fresh page, captures HTML at DOM-ready
// and again after the network settles, and scores the evidence. Any failure
// returns zeroed indicators so the caller falls through to the static
// strategy.
func (d *Detector) DetectDynamicContent(ctx context.Context, url string) models.DynamicIndicators {
	d.log.Info().Str("url", url).Msg("detecting dynamic content")

	pctx, cancel, err := d.browser.NewPage(ctx)
	if err != nil {
		d.log.Warn().Err(err).Msg("browser unavailable, returning zeroed indicators")
		return zeroIndicators()
	}
	defer cancel()

	// Track network activity before navigating so no request is missed.
	activity := make(chan struct{}, 32)
	chromedp.ListenTarget(pctx, func(ev interface{}) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent, *network.EventLoadingFinished, *network.EventLoadingFailed:
			select {
			case activity <- struct{}{}:
			default:
			}
		}
	})

	navCtx, navCancel := context.WithTimeout(pctx, d.navTimeout)
	defer navCancel()

	var initialHTML string
	err = chromedp.Run(navCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &initialHTML),
	)
	if err != nil {
		d.log.Warn().Err(err).Str("url", url).Msg("navigation failed, returning zeroed indicators")
		return zeroIndicators()
	}

	d.waitNetworkIdle(pctx, activity)

	var finalHTML string
	if err := chromedp.Run(pctx, chromedp.OuterHTML("html", &finalHTML)); err != nil {
		d.log.Warn().Err(err).Msg("final snapshot failed, returning zeroed indicators")
		return zeroIndicators()
	}

	frameworks := ScanFrameworks(finalHTML)
	spa := ScanSPAPatterns(finalHTML)
	loading := d.probeLoadingIndicators(pctx)
	ratio := ContentChangeRatio(initialHTML, finalHTML)

	ind := buildIndicators(frameworks, spa, loading, ratio)
	d.log.Info().
		Float64("confidence", ind.ConfidenceScore).
		Float64("change_ratio", ratio).
		Strs("frameworks", frameworks).
		Msg("dynamic content detection completed")
	return ind
}

// DetectFromHTML is the degraded path when no browser session is possible:
// fingerprint and SPA scans on the fetched HTML, loading affordances from a
// static parse, and goja preflight standing in for real script execution.
// No second snapshot exists, so the change ratio is 0.
func (d *Detector) DetectFromHTML(htmlSrc string) models.DynamicIndicators {
	frameworks := ScanFrameworks(htmlSrc)
	seen := map[string]bool{}
	for _, fw := range frameworks {
		seen[fw] = true
	}
	for _, fw := range Preflight(htmlSrc) {
		if !seen[fw] {
			seen[fw] = true
			frameworks = append(frameworks, fw)
		}
	}

	ind := buildIndicators(frameworks, ScanSPAPatterns(htmlSrc), ScanLoadingIndicators(htmlSrc), 0)
	d.log.Info().
		Float64("confidence", ind.ConfidenceScore).
		Msg("browserless detection completed")
	return ind
}

// waitNetworkIdle blocks until the network has been quiet for
// networkQuietWindow, or the idle timeout expires. Timing out here is not a
// failure: the page is simply analyzed as-is.
func (d *Detector) waitNetworkIdle(ctx context.Context, activity <-chan struct{}) {
	deadline := time.After(d.idleTimeout)
	quiet := time.NewTimer(networkQuietWindow)
	defer quiet.Stop()

	for {
		select {
		case <-activity:
			if !quiet.Stop() {
				select {
				case <-quiet.C:
				default:
				}
			}
			quiet.Reset(networkQuietWindow)
		case <-quiet.C:
			return
		case <-deadline:
			d.log.Warn().Msg("network idle timeout, continuing with analysis")
			return
		case <-ctx.Done():
			return
		}
	}
}

// probeLoadingIndicators counts loading affordances in the live DOM.
// Individual selector failures are logged and skipped.
func (d *Detector) probeLoadingIndicators(ctx context.Context) []string {
	indicators := []string{}

	count := func(selector string) int {
		var n int
		expr := fmt.Sprintf("document.querySelectorAll(%q).length", selector)
		if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &n)); err != nil {
			d.log.Warn().Err(err).Str("selector", selector).Msg("loading probe failed")
			return 0
		}
		return n
	}

	for _, sel := range loadingSelectors {
		if count(sel) > 0 {
			indicators = append(indicators, "loading-element-"+sel)
		}
	}
	if count(lazyImageSelector) > 0 {
		indicators = append(indicators, "lazy-loading-images")
	}
	if count(infiniteScrollSelector) > 0 {
		indicators = append(indicators, "infinite-scroll")
	}
	return indicators
}
