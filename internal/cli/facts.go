// ABOUTME: Facts command for the wp-capacity CLI
// ABOUTME: Shows the hardware facts the planner will compute against

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

var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "Show probed hardware facts",
	Long:  `Show the hardware facts (RAM, cores) the planner's configured probe reports.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runFacts(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(factsCmd)
}

// runFacts fetches and prints hardware facts, returning an exit code
func runFacts(ctx context.Context, w io.Writer) int {
	c := client.New(GetAPIURL())

	resp, err := c.Facts(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintf(w, "Source: %s\nRAM:    %d MB\nCores:  %d\n", resp.Source, resp.Facts.RAMMb, resp.Facts.Cores)
	}

	return 0
}
