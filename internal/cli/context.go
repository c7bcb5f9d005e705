// Package cli provides the command-line interface for scrapply.
package cli

import (
	"github.com/SameerVers3/Scrapply/internal/app"
	"github.com/spf13/cobra"
)

// Global reference, set once by the root command's PersistentPreRunE.
var globalApp *app.Application

// SetApp stores the Application for commands to access
func SetApp(cmd *cobra.Command, a *app.Application) {
	globalApp = a
}

// GetApp retrieves the Application
func GetApp() *app.Application {
	return globalApp
}
