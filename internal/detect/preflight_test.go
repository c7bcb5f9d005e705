package detect

import "testing"

func TestPreflightDetectsRegisteredGlobals(t *testing.T) {
	page := `<html><head>
		<script>window.React = {version: "18.2.0"}; window.ReactDOM = {};</script>
		<script>var jQuery = function(sel) { return sel; }; window.$ = jQuery;</script>
	</head><body><div id="root"></div></body></html>`

	frameworks := Preflight(page)
	if !contains(frameworks, "React") {
		t.Errorf("frameworks = %v, want React", frameworks)
	}
	if !contains(frameworks, "jQuery") {
		t.Errorf("frameworks = %v, want jQuery", frameworks)
	}
	// One entry per framework even when several globals matched.
	count := 0
	for _, fw := range frameworks {
		if fw == "React" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("React listed %d times, want once", count)
	}
}

func TestPreflightSurvivesBrokenScripts(t *testing.T) {
	page := `<html><head>
		<script>document.querySelector(".missing").addEventListener("click", fn);</script>
		<script>this is not even javascript</script>
		<script>window.Vue = {version: "3.4"};</script>
	</head><body></body></html>`

	frameworks := Preflight(page)
	if !contains(frameworks, "Vue") {
		t.Errorf("frameworks = %v, want Vue despite broken sibling scripts", frameworks)
	}
}

func TestPreflightSkipsExternalScripts(t *testing.T) {
	page := `<html><head><script src="https://cdn.example.com/react.js"></script></head></html>`
	if got := Preflight(page); len(got) != 0 {
		t.Errorf("frameworks = %v, want none from external-only scripts", got)
	}
}

func TestPreflightInterruptsRunawayScript(t *testing.T) {
	page := `<html><head>
		<script>while (true) {}</script>
		<script>window.Backbone = {};</script>
	</head></html>`

	frameworks := Preflight(page)
	if !contains(frameworks, "Backbone") {
		t.Errorf("frameworks = %v, want Backbone after interrupting the loop", frameworks)
	}
}
