// ABOUTME: Check command for the wp-capacity CLI
// ABOUTME: Validates allocation plans against thresholds for CI/CD pipelines

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
	"github.com/Martel-IT/wp-nixos/planner"
)

var (
	checkTenants    uint
	checkRAMMb      uint
	checkCores      uint
	checkThreshold  int
	checkFailOnWarn bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check plan thresholds",
	Long: `Compute a plan and exit non-zero if it breaches thresholds.

Exit codes:
  0 - All checks passed
  1 - Footprint over threshold or plan carries warnings
  2 - Error (connectivity, invalid input, fatal diagnostics)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runCheck(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().UintVar(&checkTenants, "tenants", 1, "Number of tenant sites to plan for")
	checkCmd.Flags().UintVar(&checkRAMMb, "ram-mb", 0, "Override probed RAM in MB (requires --cores)")
	checkCmd.Flags().UintVar(&checkCores, "cores", 0, "Override probed core count (requires --ram-mb)")
	checkCmd.Flags().IntVar(&checkThreshold, "overcommit-threshold", 100, "Max projected footprint percentage")
	checkCmd.Flags().BoolVar(&checkFailOnWarn, "fail-on-warning", true, "Fail when the plan carries warnings")
}

// checkResult represents the result of a single threshold check
type checkResult struct {
	name      string
	value     float64
	threshold float64
	unit      string
	passed    bool
}

// runCheck computes the plan and evaluates thresholds, returning an exit code
func runCheck(ctx context.Context, w io.Writer) int {
	if checkThreshold < 0 || checkThreshold > 200 {
		fmt.Fprintln(w, "Error: --overcommit-threshold must be between 0 and 200")
		return 2
	}

	req := &client.PlanRequest{TenantCount: checkTenants}
	if checkRAMMb > 0 || checkCores > 0 {
		if checkRAMMb == 0 || checkCores == 0 {
			fmt.Fprintln(w, "Error: --ram-mb and --cores must be given together")
			return 2
		}
		req.Facts = &planner.HardwareFacts{RAMMb: checkRAMMb, Cores: checkCores}
	}

	c := client.New(GetAPIURL())
	plan, err := c.Plan(ctx, req)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	results := performChecks(plan)

	if IsJSONOutput() {
		fmt.Fprintln(w, formatCheckJSON(results))
	} else {
		fmt.Fprintln(w, formatCheckHuman(results))
	}

	for _, r := range results {
		if !r.passed {
			return 1
		}
	}
	return 0
}

// performChecks evaluates the plan against the configured thresholds
func performChecks(plan *planner.AllocationPlan) []checkResult {
	var results []checkResult

	percent := plan.FootprintPercent()
	results = append(results, checkResult{
		name:      "Projected footprint",
		value:     percent,
		threshold: float64(checkThreshold),
		unit:      "%",
		passed:    percent <= float64(checkThreshold),
	})

	if checkFailOnWarn {
		warnings := 0
		for _, d := range plan.Diagnostics {
			if d.Severity == planner.SeverityWarning {
				warnings++
			}
		}
		results = append(results, checkResult{
			name:      "Plan warnings",
			value:     float64(warnings),
			threshold: 0,
			unit:      "",
			passed:    warnings == 0,
		})
	}

	return results
}

// formatCheckHuman formats check results for human readability
func formatCheckHuman(results []checkResult) string {
	var output string
	failed := 0

	for _, r := range results {
		symbol := "✓"
		if !r.passed {
			symbol = "✗"
			failed++
		}
		output += fmt.Sprintf("%s %s: %.0f%s (threshold: %.0f%s)\n",
			symbol, r.name, r.value, r.unit, r.threshold, r.unit)
	}

	if failed > 0 {
		output += fmt.Sprintf("\nFAILED: %d check(s) exceeded threshold", failed)
	} else {
		output += fmt.Sprintf("\nPASSED: All %d check(s) within thresholds", len(results))
	}

	return output
}

// formatCheckJSON formats check results as JSON
func formatCheckJSON(results []checkResult) string {
	failed := 0
	checks := make([]map[string]interface{}, len(results))
	for i, r := range results {
		if !r.passed {
			failed++
		}
		checks[i] = map[string]interface{}{
			"name":      r.name,
			"value":     r.value,
			"threshold": r.threshold,
			"unit":      r.unit,
			"passed":    r.passed,
		}
	}

	status := "passed"
	if failed > 0 {
		status = "failed"
	}

	output := map[string]interface{}{
		"status": status,
		"checks": checks,
	}

	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
