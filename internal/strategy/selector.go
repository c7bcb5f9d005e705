// Package strategy maps dynamic-content evidence onto a scraping strategy
// and its engine configuration. Everything here is a pure function so the
// orchestrator and tests can call it without setup.
package strategy

import (
	"encoding/json"
	"strings"

	"github.com/SameerVers3/Scrapply/pkg/models"
	"github.com/rs/zerolog/log"
)

// Confidence thresholds. Strictly greater-than on both, so 0.7 is still
// hybrid and 0.3 is still static.
const (
	dynamicThreshold = 0.7
	hybridThreshold  = 0.3
)

// Fallback tuning for hybrid runs. A static result with fewer than
// thinRecordLimit records, all of which serialize to fewer than
// thinRecordChars characters, looks like a skeleton page.
const (
	thinRecordLimit    = 3
	thinRecordChars    = 50
	fallbackConfidence = 0.6
)

// Select chooses the scraping strategy for the given evidence. forceDynamic
// short-circuits the thresholds, used when a dynamic fallback already
// succeeded for this page.
func Select(ind models.DynamicIndicators, forceDynamic bool) models.Strategy {
	if forceDynamic {
		log.Info().Msg("forcing dynamic strategy")
		return models.StrategyDynamic
	}

	log.Debug().
		Float64("confidence", ind.ConfidenceScore).
		Strs("frameworks", ind.JavaScriptFrameworks).
		Strs("spa_patterns", ind.SPAPatterns).
		Strs("dynamic_loading", ind.DynamicLoading).
		Msg("selecting strategy")

	switch {
	case ind.ConfidenceScore > dynamicThreshold:
		return models.StrategyDynamic
	case ind.ConfidenceScore > hybridThreshold:
		return models.StrategyHybrid
	default:
		return models.StrategyStatic
	}
}

// Config returns the engine configuration for a strategy. Unknown strategy
// values fall back to the static config.
func Config(s models.Strategy, ind models.DynamicIndicators) models.StrategyConfig {
	switch s {
	case models.StrategyDynamic:
		cfg := models.StrategyConfig{
			"engine":        "playwright",
			"timeout":       60,
			"browser":       "chromium",
			"headless":      true,
			"wait_strategy": waitStrategy(ind),
			"handle_scroll": shouldHandleScroll(ind),
			"max_scrolls":   3,
			"libraries":     []string{"playwright", "asyncio", "json", "time"},
			"approach":      "Browser automation with JavaScript execution",
		}
		applyFrameworkConfig(cfg, ind)
		return cfg
	case models.StrategyHybrid:
		return models.StrategyConfig{
			"primary":           "static",
			"fallback":          "dynamic",
			"fallback_triggers": []string{"empty_results", "minimal_content", "js_required"},
			"timeout":           45,
			"approach":          "Try static first, fallback to dynamic if needed",
		}
	default:
		return models.StrategyConfig{
			"engine":    "requests",
			"timeout":   30,
			"libraries": []string{"requests", "beautifulsoup4", "json", "time"},
			"approach":  "Traditional HTTP request + BeautifulSoup parsing",
		}
	}
}

// waitStrategy picks the browser wait condition for dynamic scraping.
func waitStrategy(ind models.DynamicIndicators) string {
	if hasAny(ind.JavaScriptFrameworks, "React", "Next.js") {
		return "networkidle"
	}
	if hasAny(ind.JavaScriptFrameworks, "Vue", "Nuxt") {
		return "domcontentloaded"
	}
	// Loading indicators or nothing at all: wait for the network to settle.
	return "networkidle"
}

func shouldHandleScroll(ind models.DynamicIndicators) bool {
	for _, indicator := range ind.DynamicLoading {
		if strings.Contains(indicator, "infinite-scroll") || strings.Contains(indicator, "load-more") {
			return true
		}
	}
	return false
}

func applyFrameworkConfig(cfg models.StrategyConfig, ind models.DynamicIndicators) {
	if hasAny(ind.JavaScriptFrameworks, "React") {
		cfg["react_mode"] = true
		cfg["wait_for_react"] = true
	}
	if hasAny(ind.JavaScriptFrameworks, "Vue") {
		cfg["vue_mode"] = true
	}
	if hasAny(ind.JavaScriptFrameworks, "Next.js", "Nuxt") {
		cfg["ssr_mode"] = true
		cfg["wait_strategy"] = "networkidle"
	}
	if len(ind.SPAPatterns) > 0 {
		cfg["spa_mode"] = true
		cfg["wait_for_navigation"] = true
	}
}

// ShouldFallbackToDynamic decides whether a hybrid run abandons the static
// attempt. Called exactly once per static attempt, before any refinement.
func ShouldFallbackToDynamic(result models.SandboxResult, ind models.DynamicIndicators) bool {
	if !result.Success {
		return true
	}

	if len(result.Data) == 0 {
		log.Info().Msg("fallback triggered: empty results from static scraping")
		return true
	}

	if len(result.Data) < thinRecordLimit && allThin(result.Data) {
		log.Info().Msg("fallback triggered: minimal content detected")
		return true
	}

	if ind.ConfidenceScore > fallbackConfidence {
		log.Info().
			Float64("confidence", ind.ConfidenceScore).
			Msg("fallback triggered: high dynamic confidence")
		return true
	}

	return false
}

func allThin(data []map[string]interface{}) bool {
	for _, item := range data {
		encoded, err := json.Marshal(item)
		if err != nil || len(encoded) >= thinRecordChars {
			return false
		}
	}
	return true
}

func hasAny(haystack []string, wanted ...string) bool {
	for _, h := range haystack {
		for _, w := range wanted {
			if h == w {
				return true
			}
		}
	}
	return false
}
