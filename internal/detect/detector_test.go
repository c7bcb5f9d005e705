package detect

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestDetectFromHTMLReactApp(t *testing.T) {
	page := `<html><head>
		<script>window.React = {}; window.ReactDOM = {};</script>
	</head><body>
		<div id="root" data-reactroot></div>
		<div class="loading-overlay"></div>
	</body></html>`

	d := New(nil, 0, 0, zerolog.Nop())
	ind := d.DetectFromHTML(page)

	if !contains(ind.JavaScriptFrameworks, "React") {
		t.Errorf("frameworks = %v, want React", ind.JavaScriptFrameworks)
	}
	if len(ind.SPAPatterns) == 0 {
		t.Errorf("spa patterns = %v, want react-root markers", ind.SPAPatterns)
	}
	// 0.4 frameworks + 0.3 spa + 0.2 loading; no change ratio on this path.
	if !almostEqual(ind.ConfidenceScore, 0.9) {
		t.Errorf("confidence = %f, want 0.9", ind.ConfidenceScore)
	}
	if ind.ContentChangeRatio != 0 {
		t.Errorf("change ratio = %f, want 0 on the browserless path", ind.ContentChangeRatio)
	}
}

func TestDetectFromHTMLStaticPage(t *testing.T) {
	page := `<html><body><h1>Plain server-rendered page</h1><p>Nothing moves here.</p></body></html>`
	d := New(nil, 0, 0, zerolog.Nop())
	ind := d.DetectFromHTML(page)
	if ind.ConfidenceScore != 0 {
		t.Errorf("confidence = %f, want 0 for a static page", ind.ConfidenceScore)
	}
}

func TestDetectFromHTMLMergesPreflightFrameworks(t *testing.T) {
	// Both the fingerprint scan and the preflight runtime see Vue here; the
	// merged list must not duplicate it.
	page := `<html><head><script>window.Vue = {};</script></head><body><p>hi</p></body></html>`
	d := New(nil, 0, 0, zerolog.Nop())
	ind := d.DetectFromHTML(page)
	if !contains(ind.JavaScriptFrameworks, "Vue") {
		t.Errorf("frameworks = %v, want Vue from preflight", ind.JavaScriptFrameworks)
	}
	vueCount := 0
	for _, fw := range ind.JavaScriptFrameworks {
		if fw == "Vue" {
			vueCount++
		}
	}
	if vueCount != 1 {
		t.Errorf("Vue listed %d times, want once", vueCount)
	}
}
