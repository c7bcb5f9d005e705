package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/SameerVers3/Scrapply/internal/auth"
	"github.com/SameerVers3/Scrapply/internal/ui"
	"github.com/spf13/cobra"
)

var loginDelete bool

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login [api-key]",
	Short: "Store the Gemini API key for code generation",
	Long: `Login saves the Gemini API key in the OS keyring (or a protected file
when no keyring is available). The key can be passed as an argument or
entered on stdin. Environment variables take precedence over the stored
key at runtime.`,
	Example: `  # Store a key interactively
  scrapply login

  # Store a key directly
  scrapply login AIza...

  # Remove the stored key
  scrapply login --delete`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().BoolVar(&loginDelete, "delete", false, "Remove the stored API key")
}

func runLogin(cmd *cobra.Command, args []string) error {
	if loginDelete {
		if err := auth.DeleteAPIKey(); err != nil {
			return err
		}
		fmt.Println(ui.Success("✓ API key removed"))
		return nil
	}

	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		fmt.Print("Gemini API key: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}
		key = strings.TrimSpace(line)
	}

	if err := auth.SaveAPIKey(key); err != nil {
		return err
	}
	fmt.Println(ui.Success("✓ API key stored"))
	return nil
}
