// Package detect gathers evidence about a page's reliance on client-side
// rendering: framework fingerprints, SPA mount points, loading affordances
// and how much the DOM grows after scripts run.
package detect

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/SameerVers3/Scrapply/pkg/models"
)

// Confidence weights. The sum can exceed 1.0 and is clamped, deliberately:
// any two strong signals already mean "needs a browser".
const (
	frameworkWeight     = 0.4
	spaWeight           = 0.3
	loadingWeight       = 0.2
	contentChangeWeight = 0.3

	// Text growth above this ratio counts as significant JS rendering.
	contentChangeThreshold = 0.3
)

type frameworkPattern struct {
	name     string
	patterns []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile("(?i)" + e)
	}
	return out
}

// Ordered so repeated scans list frameworks deterministically.
var frameworkPatterns = []frameworkPattern{
	{"React", compileAll(`react`, `reactdom`, `data-reactroot`, `__react_devtools_global_hook__`)},
	{"Vue", compileAll(`vue`, `vue\.js`, `v-app`, `data-v-`)},
	{"Angular", compileAll(`angular`, `ng-`, `ng-app`, `data-ng-`)},
	{"Next.js", compileAll(`__next_data__`, `_next/`, `next\.js`)},
	{"Nuxt", compileAll(`__nuxt__`, `nuxt\.js`)},
	{"Svelte", compileAll(`svelte`)},
	{"jQuery", compileAll(`jquery`, `\$\(`)},
	{"Ember", compileAll(`ember`, `ember\.`)},
	{"Backbone", compileAll(`backbone`, `backbone\.`)},
}

type spaPattern struct {
	re   *regexp.Regexp
	name string
}

var spaPatterns = []spaPattern{
	{regexp.MustCompile(`(?i)id="app"`), "app-root"},
	{regexp.MustCompile(`(?i)id="root"`), "react-root"},
	{regexp.MustCompile(`(?i)router-outlet`), "angular-router"},
	{regexp.MustCompile(`(?i)v-app`), "vue-app"},
	{regexp.MustCompile(`(?i)data-reactroot`), "react-spa"},
	{regexp.MustCompile(`(?i)ng-app`), "angular-spa"},
	{regexp.MustCompile(`(?i)<div[^>]*class="[^"]*app[^"]*"`), "app-container"},
}

// Selectors probed against the live DOM for loading affordances.
var loadingSelectors = []string{
	`[class*="loading"]`,
	`[class*="spinner"]`,
	`[class*="loader"]`,
	`[id*="loading"]`,
	`.skeleton`,
	`[data-loading]`,
}

const (
	lazyImageSelector      = `img[loading="lazy"], img[data-src]`
	infiniteScrollSelector = `[class*="infinite"], [class*="load-more"]`
)

// ScanFrameworks reports which JavaScript frameworks leave fingerprints in
// the rendered HTML. One match per framework is enough.
func ScanFrameworks(htmlSrc string) []string {
	frameworks := []string{}
	for _, fp := range frameworkPatterns {
		for _, re := range fp.patterns {
			if re.MatchString(htmlSrc) {
				frameworks = append(frameworks, fp.name)
				break
			}
		}
	}
	return frameworks
}

// ScanSPAPatterns reports single-page-app mount points present in the HTML.
func ScanSPAPatterns(htmlSrc string) []string {
	patterns := []string{}
	for _, sp := range spaPatterns {
		if sp.re.MatchString(htmlSrc) {
			patterns = append(patterns, sp.name)
		}
	}
	return patterns
}

// ScanLoadingIndicators is the static-HTML counterpart of the live-DOM
// probe, used on the degraded (browserless) path.
func ScanLoadingIndicators(htmlSrc string) []string {
	indicators := []string{}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlSrc))
	if err != nil {
		return indicators
	}
	for _, sel := range loadingSelectors {
		if doc.Find(sel).Length() > 0 {
			indicators = append(indicators, "loading-element-"+sel)
		}
	}
	if doc.Find(lazyImageSelector).Length() > 0 {
		indicators = append(indicators, "lazy-loading-images")
	}
	if doc.Find(infiniteScrollSelector).Length() > 0 {
		indicators = append(indicators, "infinite-scroll")
	}
	return indicators
}

// ContentChangeRatio measures visible text growth between the DOM-ready
// snapshot and the post-JS snapshot. Script, style and noscript bodies are
// excluded. An empty initial page that gains any text counts as 1.0.
func ContentChangeRatio(initialHTML, finalHTML string) float64 {
	initialText := visibleText(initialHTML)
	finalText := visibleText(finalHTML)

	if len(initialText) == 0 {
		if len(finalText) > 0 {
			return 1.0
		}
		return 0.0
	}

	ratio := abs(len(finalText)-len(initialText)) / float64(len(initialText))
	if ratio > 1.0 {
		return 1.0
	}
	return ratio
}

func visibleText(htmlSrc string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlSrc))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(doc.Text()), "")
}

func abs(n int) float64 {
	if n < 0 {
		return float64(-n)
	}
	return float64(n)
}

// buildIndicators combines the collected evidence into the final verdict.
func buildIndicators(frameworks, spa, loading []string, changeRatio float64) models.DynamicIndicators {
	score := 0.0
	if len(frameworks) > 0 {
		score += frameworkWeight
	}
	if len(spa) > 0 {
		score += spaWeight
	}
	if len(loading) > 0 {
		score += loadingWeight
	}
	if changeRatio > contentChangeThreshold {
		score += contentChangeWeight
	}
	if score > 1.0 {
		score = 1.0
	}

	return models.DynamicIndicators{
		JavaScriptFrameworks: frameworks,
		SPAPatterns:          spa,
		DynamicLoading:       loading,
		ConfidenceScore:      score,
		ContentChangeRatio:   changeRatio,
	}
}

// zeroIndicators is what callers get when detection fails: empty evidence,
// zero confidence, so the selector defaults to the static strategy.
func zeroIndicators() models.DynamicIndicators {
	return models.DynamicIndicators{
		JavaScriptFrameworks: []string{},
		SPAPatterns:          []string{},
		DynamicLoading:       []string{},
	}
}
