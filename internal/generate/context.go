package generate

import (
	"encoding/json"
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/SameerVers3/Scrapply/pkg/models"
)

// ToMarkdown converts an HTML snippet into markdown for prompt use. LLMs
// read markdown structure far better than raw tag soup. Conversion failures
// fall back to the raw HTML.
func ToMarkdown(htmlSnippet string) string {
	if htmlSnippet == "" {
		return ""
	}
	converter := md.NewConverter("", true, nil)
	out, err := converter.ConvertString(htmlSnippet)
	if err != nil || strings.TrimSpace(out) == "" {
		return htmlSnippet
	}
	return out
}

// BuildPrompt assembles the generation prompt from the page context.
func BuildPrompt(gc Context) string {
	var b strings.Builder

	b.WriteString("Write a Python web scraper for the following page.\n\n")
	fmt.Fprintf(&b, "URL: %s\n", gc.URL)
	if gc.Description != "" {
		fmt.Fprintf(&b, "What to extract: %s\n", gc.Description)
	}
	fmt.Fprintf(&b, "Scraping strategy: %s\n", gc.Strategy)

	if cfg, err := json.MarshalIndent(gc.Config, "", "  "); err == nil {
		b.WriteString("\nEngine configuration:\n")
		b.Write(cfg)
		b.WriteString("\n")
	}

	if gc.Hints.ItemSelector != "" {
		b.WriteString("\nSelector hints from structural analysis:\n")
		fmt.Fprintf(&b, "- item container: %s\n", gc.Hints.ItemSelector)
		for _, field := range []string{"title", "price", "image", "link"} {
			if sel := gc.Hints.Fields[field]; sel != "" {
				fmt.Fprintf(&b, "- %s: %s\n", field, sel)
			}
		}
	}

	if gc.SnippetMarkdown != "" {
		b.WriteString("\nContent sample from the page:\n")
		b.WriteString(gc.SnippetMarkdown)
		b.WriteString("\n")
	}

	b.WriteString(`
Requirements:
1. Define exactly one entry function: def scrape_data(url):
2. Return a dict: {'data': [list of record dicts], 'metadata': {}}
3. Use only the libraries named in the engine configuration.
4. Handle missing elements gracefully; never raise on an empty page.
5. Do not print anything.

Generate only the Python code, no explanations.
`)
	return b.String()
}

// BuildRefinePrompt assembles the repair prompt after a sandbox failure.
func BuildRefinePrompt(gc Context, prevSource string, failure models.SandboxResult) string {
	var b strings.Builder

	b.WriteString("The following scraper code failed during testing. Fix the issues and return improved code.\n\n")
	b.WriteString("Original code:\n")
	b.WriteString(prevSource)
	b.WriteString("\n\nError information:\n")
	if info, err := json.MarshalIndent(failure, "", "  "); err == nil {
		b.Write(info)
	}
	fmt.Fprintf(&b, "\n\nTarget URL: %s\n", gc.URL)
	if gc.Description != "" {
		fmt.Fprintf(&b, "What to extract: %s\n", gc.Description)
	}

	b.WriteString(`
Common issues to check:
1. CSS selectors that don't match elements
2. Missing error handling for network requests
3. Incorrect data extraction logic
4. Timeout issues
5. Empty results due to wrong selectors

Return the corrected Python code with the same scrape_data(url) signature.
If selectors are failing, try more generic approaches or multiple fallback selectors.

Generate only the corrected Python code, no explanations.
`)
	return b.String()
}
