// ABOUTME: Health command for the wp-capacity CLI
// ABOUTME: Checks planner connectivity and probe status

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Martel-IT/wp-nixos/internal/client"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check planner connectivity",
	Long:  `Check connectivity to the capacity planner service and verify the hardware probe.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runHealth(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

// runHealth executes the health check and returns exit code
func runHealth(ctx context.Context, w io.Writer) int {
	url := GetAPIURL()
	c := client.New(url)

	resp, err := c.Health(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatHealthJSON(url, resp))
	} else {
		fmt.Fprintln(w, formatHealthHuman(url, resp))
	}

	return 0
}

// formatHealthHuman formats health response for human readability
func formatHealthHuman(url string, resp *client.HealthResponse) string {
	return fmt.Sprintf(`Planner:      %s
Status:       %s
Facts source: %s
Facts probe:  %s`, url, resp.Status, resp.FactsSource, resp.FactsProbe)
}

// formatHealthJSON formats health response as JSON
func formatHealthJSON(url string, resp *client.HealthResponse) string {
	output := map[string]interface{}{
		"planner":      url,
		"status":       resp.Status,
		"facts_source": resp.FactsSource,
		"facts_probe":  resp.FactsProbe,
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
