package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/SameerVers3/Scrapply/internal/job"
	"github.com/SameerVers3/Scrapply/internal/ui"
	"github.com/SameerVers3/Scrapply/internal/utils/output"
	urlutil "github.com/SameerVers3/Scrapply/internal/utils/url"
	"github.com/SameerVers3/Scrapply/pkg/models"
	"github.com/spf13/cobra"
)

var (
	buildDescription  string
	buildOutput       string
	buildShowSample   bool
	buildSampleOutput string
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build <url>",
	Short: "Analyze a page and build a tested Python scraper for it",
	Long: `Build runs the full pipeline: fetch and analyze the page structure,
detect dynamic content, select a scraping strategy, generate Python scraper
code and test it in the local sandbox. On success the working scraper code
is printed or written to a file.`,
	Example: `  # Build a scraper for a product listing
  scrapply build https://shop.example/products -d "product names and prices"

  # Write the generated scraper to a file
  scrapply build https://shop.example/products -o scraper.py

  # Include the sample records the test run extracted
  scrapply build https://shop.example/products --sample`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildDescription, "description", "d", "", "What data to extract from the page")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "File path for the generated scraper code")
	buildCmd.Flags().BoolVar(&buildShowSample, "sample", false, "Print the sample records from the test run")
	buildCmd.Flags().StringVar(&buildSampleOutput, "sample-output", "", "Save sample records to a file (.json or .csv)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	url, err := targetURL(args[0])
	if err != nil {
		return err
	}

	a := GetApp()

	var sink job.EventSink = &job.LogSink{Log: a.Logger}
	if !a.Config.JSONLog {
		sink = newProgressSink()
	}

	orch, err := a.Orchestrator(sink)
	if err != nil {
		return err
	}

	j, err := orch.Run(cmd.Context(), url, buildDescription)
	if err != nil {
		return err
	}

	if j.Status != models.JobReady {
		if j.ErrorInfo != nil {
			info, _ := json.MarshalIndent(j.ErrorInfo, "", "  ")
			fmt.Fprintf(os.Stderr, "\nLast test result:\n%s\n", info)
		}
		return fmt.Errorf("%s", j.Message)
	}

	fmt.Printf("\n%s  %s\n", ui.Bold("Strategy:"), j.Strategy)
	if j.FallbackUsed {
		fmt.Println(ui.Info("Static attempt fell back to dynamic scraping"))
	}

	if buildShowSample && len(j.SampleData) > 0 {
		sample, err := json.MarshalIndent(j.SampleData, "", "  ")
		if err == nil {
			fmt.Printf("\n%s\n%s\n", ui.Bold("Sample data:"), sample)
		}
	}
	if buildSampleOutput != "" {
		if err := output.SaveRecords(j.SampleData, buildSampleOutput); err != nil {
			return fmt.Errorf("failed to save sample data: %w", err)
		}
		fmt.Println(ui.Success("✓ Sample data saved to " + buildSampleOutput))
	}

	if buildOutput != "" {
		if err := os.WriteFile(buildOutput, []byte(j.ScraperCode), 0644); err != nil {
			return fmt.Errorf("failed to write scraper: %w", err)
		}
		fmt.Println(ui.Success("✓ Scraper saved to " + buildOutput))
		return nil
	}

	fmt.Printf("\n%s\n", j.ScraperCode)
	return nil
}

// targetURL normalizes a CLI URL argument and validates it.
func targetURL(arg string) (string, error) {
	url := urlutil.Normalize(arg)
	if err := urlutil.ValidateURL(url); err != nil {
		return "", err
	}
	return url, nil
}
