package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/SameerVers3/Scrapply/internal/sandbox"
	"github.com/spf13/cobra"
)

var (
	execProfile string
	execTimeout time.Duration
)

// execCmd represents the exec command
var execCmd = &cobra.Command{
	Use:   "exec <script.py> <url>",
	Short: "Run a scraper script in the sandbox",
	Long: `Exec runs a local Python scraper through the same sandbox the build
pipeline uses: the code is sanitized, wrapped in the execution harness and
run with resource limits. The script must define scrape_data(url).`,
	Example: `  # Test a generated scraper by hand
  scrapply exec scraper.py https://shop.example/products

  # Allow browser automation libraries and a longer run
  scrapply exec scraper.py https://app.example --profile dynamic --timeout 90s`,
	Args: cobra.ExactArgs(2),
	RunE: runExec,
}

func init() {
	rootCmd.AddCommand(execCmd)

	execCmd.Flags().StringVar(&execProfile, "profile", "static", "Sandbox profile: static or dynamic")
	execCmd.Flags().DurationVar(&execTimeout, "timeout", 0, "Execution timeout (default 30s static, 60s dynamic)")
}

func runExec(cmd *cobra.Command, args []string) error {
	script := args[0]
	url, err := targetURL(args[1])
	if err != nil {
		return err
	}

	var profile sandbox.Profile
	switch execProfile {
	case "static":
		profile = sandbox.ProfileStatic
	case "dynamic":
		profile = sandbox.ProfileDynamic
	default:
		return fmt.Errorf("invalid profile: %s (must be static or dynamic)", execProfile)
	}

	timeout := execTimeout
	if timeout == 0 && profile == sandbox.ProfileDynamic {
		timeout = sandbox.DefaultDynamicTimeout
	}

	source, err := os.ReadFile(script)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	a := GetApp()
	sb, err := sandbox.New(profile, timeout, a.Config.SandboxMemoryMB, a.Logger)
	if err != nil {
		return err
	}

	result, err := sb.Execute(cmd.Context(), string(source), url)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if !result.Success {
		os.Exit(1)
	}
	return nil
}
