// Package generate produces scraper source code for a target page. The LLM
// behind it is opaque to the pipeline: callers see only Generate and Refine.
package generate

import (
	"context"

	"github.com/SameerVers3/Scrapply/pkg/models"
)

// Context is everything the generator knows about the target page.
type Context struct {
	URL         string
	Description string

	// Snippet is the record container's HTML; SnippetMarkdown is the same
	// content converted for the prompt.
	Snippet         string
	SnippetMarkdown string

	Hints    models.FieldHints
	Strategy models.Strategy
	Config   models.StrategyConfig
}

// Generator produces Python scraper source implementing the
// scrape_data(url) contract.
type Generator interface {
	// Generate writes a fresh scraper for the page.
	Generate(ctx context.Context, gc Context) (string, error)

	// Refine repairs prevSource given the sandbox failure it produced.
	Refine(ctx context.Context, gc Context, prevSource string, failure models.SandboxResult) (string, error)
}
