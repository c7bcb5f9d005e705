package strategy

import (
	"testing"

	"github.com/SameerVers3/Scrapply/pkg/models"
)

func indicatorsWithConfidence(score float64) models.DynamicIndicators {
	return models.DynamicIndicators{ConfidenceScore: score}
}

func TestSelectThresholds(t *testing.T) {
	cases := []struct {
		confidence float64
		want       models.Strategy
	}{
		{0.0, models.StrategyStatic},
		{0.30, models.StrategyStatic}, // boundary stays static
		{0.31, models.StrategyHybrid},
		{0.5, models.StrategyHybrid},
		{0.70, models.StrategyHybrid}, // boundary stays hybrid
		{0.71, models.StrategyDynamic},
		{1.0, models.StrategyDynamic},
	}
	for _, c := range cases {
		got := Select(indicatorsWithConfidence(c.confidence), false)
		if got != c.want {
			t.Errorf("Select(confidence=%.2f) = %s, want %s", c.confidence, got, c.want)
		}
	}
}

func TestSelectForceDynamic(t *testing.T) {
	if got := Select(indicatorsWithConfidence(0.0), true); got != models.StrategyDynamic {
		t.Errorf("forced select = %s, want dynamic", got)
	}
}

func TestSelectIdempotent(t *testing.T) {
	ind := models.DynamicIndicators{
		JavaScriptFrameworks: []string{"React"},
		SPAPatterns:          []string{"react-root"},
		ConfidenceScore:      0.55,
	}
	first := Select(ind, false)
	for i := 0; i < 5; i++ {
		if got := Select(ind, false); got != first {
			t.Fatalf("run %d: Select returned %s, previously %s", i, got, first)
		}
	}
}

func TestConfigStatic(t *testing.T) {
	cfg := Config(models.StrategyStatic, models.DynamicIndicators{})
	if cfg["engine"] != "requests" {
		t.Errorf("engine = %v, want requests", cfg["engine"])
	}
	if cfg["timeout"] != 30 {
		t.Errorf("timeout = %v, want 30", cfg["timeout"])
	}
}

func TestConfigHybrid(t *testing.T) {
	cfg := Config(models.StrategyHybrid, models.DynamicIndicators{})
	if cfg["primary"] != "static" || cfg["fallback"] != "dynamic" {
		t.Errorf("hybrid config missing primary/fallback: %v", cfg)
	}
	if cfg["timeout"] != 45 {
		t.Errorf("timeout = %v, want 45", cfg["timeout"])
	}
}

func TestConfigDynamicWaitStrategy(t *testing.T) {
	cases := []struct {
		name       string
		indicators models.DynamicIndicators
		want       string
	}{
		{"react", models.DynamicIndicators{JavaScriptFrameworks: []string{"React"}}, "networkidle"},
		{"vue", models.DynamicIndicators{JavaScriptFrameworks: []string{"Vue"}}, "domcontentloaded"},
		{"loading only", models.DynamicIndicators{DynamicLoading: []string{"loading-indicators: 2 found"}}, "networkidle"},
		{"nothing", models.DynamicIndicators{}, "networkidle"},
		// Nuxt is Vue-based but SSR forces networkidle back on.
		{"nuxt", models.DynamicIndicators{JavaScriptFrameworks: []string{"Vue", "Nuxt"}}, "networkidle"},
	}
	for _, c := range cases {
		cfg := Config(models.StrategyDynamic, c.indicators)
		if cfg["wait_strategy"] != c.want {
			t.Errorf("%s: wait_strategy = %v, want %s", c.name, cfg["wait_strategy"], c.want)
		}
	}
}

func TestConfigDynamicFrameworkModes(t *testing.T) {
	ind := models.DynamicIndicators{
		JavaScriptFrameworks: []string{"React", "Next.js"},
		SPAPatterns:          []string{"react-root"},
	}
	cfg := Config(models.StrategyDynamic, ind)
	for _, key := range []string{"react_mode", "wait_for_react", "ssr_mode", "spa_mode", "wait_for_navigation"} {
		if cfg[key] != true {
			t.Errorf("%s = %v, want true", key, cfg[key])
		}
	}
	if cfg["timeout"] != 60 {
		t.Errorf("timeout = %v, want 60", cfg["timeout"])
	}
}

func TestConfigDynamicScrollHandling(t *testing.T) {
	ind := models.DynamicIndicators{DynamicLoading: []string{"infinite-scroll"}}
	cfg := Config(models.StrategyDynamic, ind)
	if cfg["handle_scroll"] != true {
		t.Errorf("handle_scroll = %v, want true for infinite-scroll", cfg["handle_scroll"])
	}
	if cfg["max_scrolls"] != 3 {
		t.Errorf("max_scrolls = %v, want 3", cfg["max_scrolls"])
	}

	cfg = Config(models.StrategyDynamic, models.DynamicIndicators{DynamicLoading: []string{"lazy-loading-images"}})
	if cfg["handle_scroll"] != false {
		t.Errorf("handle_scroll = %v, want false for lazy images", cfg["handle_scroll"])
	}
}

func richRecord() map[string]interface{} {
	return map[string]interface{}{
		"title": "A reasonably long product title for testing",
		"price": "$19.99",
		"link":  "https://example.com/products/1",
	}
}

func TestShouldFallbackToDynamic(t *testing.T) {
	lowConf := indicatorsWithConfidence(0.2)

	cases := []struct {
		name   string
		result models.SandboxResult
		ind    models.DynamicIndicators
		want   bool
	}{
		{
			"failure always falls back",
			models.SandboxResult{Success: false},
			lowConf, true,
		},
		{
			"empty data falls back",
			models.SandboxResult{Success: true, Data: nil},
			lowConf, true,
		},
		{
			"few thin records fall back",
			models.SandboxResult{Success: true, Data: []map[string]interface{}{
				{"t": "x"}, {"t": "y"},
			}},
			lowConf, true,
		},
		{
			"few rich records stay static",
			models.SandboxResult{Success: true, Data: []map[string]interface{}{
				richRecord(), richRecord(),
			}},
			lowConf, false,
		},
		{
			"many thin records stay static",
			models.SandboxResult{Success: true, Data: []map[string]interface{}{
				{"t": "a"}, {"t": "b"}, {"t": "c"}, {"t": "d"},
			}},
			lowConf, false,
		},
		{
			"high confidence overrides good data",
			models.SandboxResult{Success: true, Data: []map[string]interface{}{
				richRecord(), richRecord(), richRecord(), richRecord(),
			}},
			indicatorsWithConfidence(0.65), true,
		},
		{
			"boundary confidence does not trigger",
			models.SandboxResult{Success: true, Data: []map[string]interface{}{
				richRecord(), richRecord(), richRecord(), richRecord(),
			}},
			indicatorsWithConfidence(0.6), false,
		},
	}
	for _, c := range cases {
		if got := ShouldFallbackToDynamic(c.result, c.ind); got != c.want {
			t.Errorf("%s: ShouldFallbackToDynamic = %v, want %v", c.name, got, c.want)
		}
	}
}
