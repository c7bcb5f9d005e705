// Package models contains the shared data structures passed between the
// analyzer, detector, strategy selector, sandbox and orchestrator.
package models

import "time"

// Strategy identifies the scraping engine family chosen for a target page.
type Strategy string

const (
	// StrategyStatic uses plain HTTP fetching plus HTML parsing.
	StrategyStatic Strategy = "static"
	// StrategyDynamic drives a headless browser to render JavaScript.
	StrategyDynamic Strategy = "dynamic"
	// StrategyHybrid tries the static engine first and falls back to the
	// dynamic engine when the static results look wrong.
	StrategyHybrid Strategy = "hybrid"
)

// StrategyConfig is the engine configuration handed to the code generator.
// Keys vary by strategy (engine, timeout, wait_strategy, libraries, ...), so
// it stays a loose map rather than a struct.
type StrategyConfig map[string]interface{}

// DynamicIndicators is the evidence collected about a page's reliance on
// client-side rendering. Slices are deduplicated and deterministic in order.
type DynamicIndicators struct {
	JavaScriptFrameworks []string `json:"javascript_frameworks"`
	SPAPatterns          []string `json:"spa_patterns"`
	DynamicLoading       []string `json:"dynamic_loading"`
	RequiresInteraction  bool     `json:"requires_interaction"`

	// ConfidenceScore is 0.0..1.0; higher means the page likely needs a
	// browser to render its content.
	ConfidenceScore float64 `json:"confidence_score"`

	// ContentChangeRatio measures how much the visible text grew between
	// DOM-ready and network-idle.
	ContentChangeRatio float64 `json:"content_change_ratio"`
}

// IsZero reports whether no evidence at all was collected, which is how a
// failed browser probe looks. Used to decide when to fall back to scanning
// the fetched HTML directly.
func (d DynamicIndicators) IsZero() bool {
	return len(d.JavaScriptFrameworks) == 0 &&
		len(d.SPAPatterns) == 0 &&
		len(d.DynamicLoading) == 0 &&
		d.ConfidenceScore == 0 &&
		d.ContentChangeRatio == 0
}

// FieldHints describes the repeating record shape the analyzer found:
// a CSS selector for one item plus per-field selectors within an item.
// Absent fields map to an empty string.
type FieldHints struct {
	ItemSelector string            `json:"item_selector"`
	Fields       map[string]string `json:"fields"`
}

// SandboxResult is the outcome of one sandboxed execution of generated
// scraper code. Expected failures (timeouts, runtime errors, bad output) are
// reported here rather than as Go errors.
type SandboxResult struct {
	Success   bool                     `json:"success"`
	Data      []map[string]interface{} `json:"data,omitempty"`
	Metadata  map[string]interface{}   `json:"metadata,omitempty"`
	Error     string                   `json:"error,omitempty"`
	ErrorType string                   `json:"error_type,omitempty"`
	Traceback string                   `json:"traceback,omitempty"`

	ExitCode      int    `json:"exit_code"`
	StdoutPreview string `json:"stdout_preview,omitempty"`
	StderrPreview string `json:"stderr_preview,omitempty"`
}

// JobStatus is the lifecycle state of a scraper-build job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobAnalyzing  JobStatus = "analyzing"
	JobGenerating JobStatus = "generating"
	JobTesting    JobStatus = "testing"
	JobReady      JobStatus = "ready"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether the status is an end state.
func (s JobStatus) Terminal() bool {
	return s == JobReady || s == JobFailed
}

// PageSnapshot is the raw material the pipeline extracts from a target URL
// before any strategy decision is made.
type PageSnapshot struct {
	URL        string        `json:"url"`
	HTML       string        `json:"-"`
	StatusCode int           `json:"status_code"`
	FetchTime  time.Duration `json:"fetch_time_ms"`
	Truncated  bool          `json:"truncated,omitempty"`
}
