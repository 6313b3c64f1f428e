// ABOUTME: Root command for the wp-capacity CLI
// ABOUTME: Handles global flags and configuration

package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	apiURL     string
	jsonOutput bool
)

const defaultAPIURL = "http://localhost:8080"

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "wp-capacity",
	Short: "CLI for the wp-nixos capacity planner",
	Long: `wp-capacity is a command-line interface for the wp-nixos capacity planner.

It inspects hardware facts, computes allocation plans for shared WordPress
hosts, and gates CI/CD pipelines on projected memory footprint.

Environment Variables:
  WP_CAPACITY_API_URL  Planner API URL (default: http://localhost:8080)`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Planner API URL (overrides WP_CAPACITY_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// GetAPIURL returns the API URL from flag, env, or default (in priority order)
func GetAPIURL() string {
	if apiURL != "" {
		return apiURL
	}
	if envURL := os.Getenv("WP_CAPACITY_API_URL"); envURL != "" {
		return envURL
	}
	return defaultAPIURL
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}
