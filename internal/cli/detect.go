package cli

import (
	"encoding/json"
	"fmt"

	"github.com/SameerVers3/Scrapply/internal/strategy"
	"github.com/SameerVers3/Scrapply/internal/ui"
	"github.com/SameerVers3/Scrapply/pkg/models"
	"github.com/spf13/cobra"
)

var detectNoBrowser bool

// detectCmd represents the detect command
var detectCmd = &cobra.Command{
	Use:   "detect <url>",
	Short: "Detect dynamic content and show the selected strategy",
	Long: `Detect loads a page in a headless browser, compares the HTML before and
after client-side rendering, and reports the dynamic-content indicators
together with the scraping strategy they select.`,
	Example: `  # Probe a page with the headless browser
  scrapply detect https://app.example

  # Skip the browser and scan the raw HTML only
  scrapply detect https://app.example --no-browser`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().BoolVar(&detectNoBrowser, "no-browser", false, "Scan fetched HTML instead of rendering the page")
}

func runDetect(cmd *cobra.Command, args []string) error {
	url, err := targetURL(args[0])
	if err != nil {
		return err
	}

	a := GetApp()

	var ind models.DynamicIndicators
	if !detectNoBrowser {
		ind = a.Detector.DetectDynamicContent(cmd.Context(), url)
	}
	if ind.IsZero() {
		snap, err := a.Fetcher.Fetch(cmd.Context(), url)
		if err != nil {
			return err
		}
		ind = a.Detector.DetectFromHTML(snap.HTML)
	}

	selected := strategy.Select(ind, false)
	cfg := strategy.Config(selected, ind)

	fmt.Printf("%s %.2f\n", ui.Bold("Confidence:    "), ind.ConfidenceScore)
	fmt.Printf("%s %.2f\n", ui.Bold("Content change:"), ind.ContentChangeRatio)
	fmt.Printf("%s %v\n", ui.Bold("Frameworks:    "), ind.JavaScriptFrameworks)
	fmt.Printf("%s %v\n", ui.Bold("SPA patterns:  "), ind.SPAPatterns)
	fmt.Printf("%s %v\n", ui.Bold("Loading:       "), ind.DynamicLoading)
	fmt.Printf("\n%s %s\n", ui.Bold("Strategy:"), ui.Success(string(selected)))

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err == nil {
		fmt.Printf("%s\n%s\n", ui.Bold("Engine configuration:"), out)
	}
	return nil
}
