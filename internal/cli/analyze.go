package cli

import (
	"encoding/json"
	"fmt"

	"github.com/SameerVers3/Scrapply/internal/analyze"
	"github.com/SameerVers3/Scrapply/internal/generate"
	"github.com/SameerVers3/Scrapply/internal/ui"
	"github.com/spf13/cobra"
)

var analyzeMarkdown bool

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Show the structural analysis for a page",
	Long: `Analyze fetches a page and reports the repeated-content container the
scraper would target, along with derived CSS selector hints for common
fields like titles and prices.`,
	Example: `  # Inspect what the analyzer sees on a listing page
  scrapply analyze https://shop.example/products

  # Also print the container converted to markdown
  scrapply analyze https://shop.example/products --markdown`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&analyzeMarkdown, "markdown", false, "Print the selected container as markdown")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	url, err := targetURL(args[0])
	if err != nil {
		return err
	}

	a := GetApp()
	snap, err := a.Fetcher.Fetch(cmd.Context(), url)
	if err != nil {
		return err
	}

	container, score := a.Analyzer.Analyze(snap.HTML)
	if container == nil {
		fmt.Println(ui.Info("No repeated-content container found on this page"))
		return nil
	}

	hints := analyze.DeriveFieldHints(container)

	fmt.Printf("%s %.2f\n", ui.Bold("Container score:"), score)
	fmt.Printf("%s %s\n", ui.Bold("Item selector: "), orNone(hints.ItemSelector))
	for _, field := range []string{"title", "price", "image", "link"} {
		fmt.Printf("  %-6s %s\n", field+":", orNone(hints.Fields[field]))
	}
	if snap.Truncated {
		fmt.Println(ui.Info("Page body was truncated at the size cap"))
	}

	if analyzeMarkdown {
		snippet := analyze.Snippet(container, 4000)
		fmt.Printf("\n%s\n%s\n", ui.Bold("Container as markdown:"), generate.ToMarkdown(snippet))
	}

	if a.Config.JSONLog {
		out, err := json.MarshalIndent(hints, "", "  ")
		if err == nil {
			fmt.Println(string(out))
		}
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return ui.Info("(none)")
	}
	return s
}
