package detect

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
	"github.com/rs/zerolog/log"
)

// Per-script budget; inline bootstraps either register globals immediately
// or never will.
const preflightScriptBudget = 100 * time.Millisecond

// frameworkGlobals maps globals a framework registers to its canonical name.
var frameworkGlobals = []struct {
	global string
	name   string
}{
	{"React", "React"},
	{"ReactDOM", "React"},
	{"__NEXT_DATA__", "Next.js"},
	{"__NUXT__", "Nuxt"},
	{"Vue", "Vue"},
	{"angular", "Angular"},
	{"jQuery", "jQuery"},
	{"$", "jQuery"},
	{"Ember", "Ember"},
	{"Backbone", "Backbone"},
}

// Preflight executes a page's inline scripts in a stub JS runtime and
// reports frameworks that registered well-known globals. It is the
// browserless fallback for framework detection: no DOM exists, so most
// scripts throw, but framework bootstraps typically register their global
// before touching the document.
func Preflight(htmlSrc string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlSrc))
	if err != nil {
		return nil
	}

	vm := goja.New()
	vm.Set("window", vm.GlobalObject())
	vm.Set("self", vm.GlobalObject())
	vm.Set("document", map[string]interface{}{
		"location": map[string]interface{}{"href": ""},
	})
	vm.Set("console", map[string]interface{}{
		"log":   func(goja.FunctionCall) goja.Value { return nil },
		"warn":  func(goja.FunctionCall) goja.Value { return nil },
		"error": func(goja.FunctionCall) goja.Value { return nil },
	})

	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		if _, external := sel.Attr("src"); external {
			return
		}
		src := sel.Text()
		if src == "" {
			return
		}
		timer := time.AfterFunc(preflightScriptBudget, func() {
			vm.Interrupt("preflight budget exceeded")
		})
		if _, err := vm.RunString(src); err != nil {
			// Expected: most scripts need a real DOM.
			log.Trace().Err(err).Msg("preflight script failed")
		}
		timer.Stop()
		vm.ClearInterrupt()
	})

	seen := map[string]bool{}
	frameworks := []string{}
	for _, fg := range frameworkGlobals {
		if seen[fg.name] {
			continue
		}
		if val := vm.Get(fg.global); val != nil && !goja.IsUndefined(val) && !goja.IsNull(val) {
			seen[fg.name] = true
			frameworks = append(frameworks, fg.name)
		}
	}
	return frameworks
}
