// ABOUTME: Plan command for the wp-capacity CLI
// ABOUTME: Requests an allocation plan and renders it with utilization bars

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/Martel-IT/wp-nixos/internal/client"
	"github.com/Martel-IT/wp-nixos/internal/tui/styles"
	"github.com/Martel-IT/wp-nixos/internal/tui/widgets"
	"github.com/Martel-IT/wp-nixos/planner"
)

var (
	planTenants     uint
	planRAMMb       uint
	planCores       uint
	planInteractive bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute an allocation plan",
	Long: `Compute worker pool, database, and cache allocations for a tenant count.

Facts come from the planner's probe unless --ram-mb and --cores are given.
With --interactive, a form prompts for facts and tenant count instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runPlan(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().UintVar(&planTenants, "tenants", 1, "Number of tenant sites to plan for")
	planCmd.Flags().UintVar(&planRAMMb, "ram-mb", 0, "Override probed RAM in MB (requires --cores)")
	planCmd.Flags().UintVar(&planCores, "cores", 0, "Override probed core count (requires --ram-mb)")
	planCmd.Flags().BoolVar(&planInteractive, "interactive", false, "Prompt for facts and tenant count")
}

// runPlan builds the request, calls the API, and renders the plan
func runPlan(ctx context.Context, w io.Writer) int {
	req := &client.PlanRequest{TenantCount: planTenants}

	if planInteractive {
		interactive, err := promptPlanRequest()
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		req = interactive
	} else if planRAMMb > 0 || planCores > 0 {
		if planRAMMb == 0 || planCores == 0 {
			fmt.Fprintln(w, "Error: --ram-mb and --cores must be given together")
			return 2
		}
		req.Facts = &planner.HardwareFacts{RAMMb: planRAMMb, Cores: planCores}
	}

	c := client.New(GetAPIURL())
	plan, err := c.Plan(ctx, req)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(plan, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintln(w, formatPlanHuman(plan))
	}

	if plan.HasWarnings() {
		return 1
	}
	return 0
}

// promptPlanRequest collects facts and tenant count through a form
func promptPlanRequest() (*client.PlanRequest, error) {
	var ramStr, coresStr, tenantsStr string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Host RAM (MB)").
				Placeholder("8192").
				Validate(validateUint).
				Value(&ramStr),
			huh.NewInput().
				Title("CPU cores").
				Placeholder("4").
				Validate(validateUint).
				Value(&coresStr),
			huh.NewInput().
				Title("Tenant sites").
				Placeholder("2").
				Validate(validateUint).
				Value(&tenantsStr),
		),
	)

	if err := form.Run(); err != nil {
		return nil, err
	}

	ram, _ := strconv.ParseUint(ramStr, 10, 64)
	cores, _ := strconv.ParseUint(coresStr, 10, 64)
	tenants, _ := strconv.ParseUint(tenantsStr, 10, 64)

	return &client.PlanRequest{
		Facts:       &planner.HardwareFacts{RAMMb: uint(ram), Cores: uint(cores)},
		TenantCount: uint(tenants),
	}, nil
}

func validateUint(s string) error {
	if _, err := strconv.ParseUint(s, 10, 64); err != nil {
		return fmt.Errorf("must be a non-negative integer")
	}
	return nil
}

// formatPlanHuman renders the plan with styled sections and a footprint bar
func formatPlanHuman(plan *planner.AllocationPlan) string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render("Allocation plan"))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("%d MB RAM / %d cores, %d tenant(s)",
		plan.Facts.RAMMb, plan.Facts.Cores, plan.TenantCount)))
	sb.WriteString("\n\n")

	sb.WriteString("Worker pool (per tenant)\n")
	sb.WriteString(fmt.Sprintf("  max children:  %s\n", styles.ValueStyle.Render(fmt.Sprintf("%d", plan.WorkerPool.MaxChildren))))
	sb.WriteString(fmt.Sprintf("  start servers: %d, spare %d-%d\n",
		plan.WorkerPool.StartServers, plan.WorkerPool.MinSpare, plan.WorkerPool.MaxSpare))
	sb.WriteString("\n")

	sb.WriteString("Database\n")
	sb.WriteString(fmt.Sprintf("  buffer pool:   %s (%d instance(s))\n",
		styles.ValueStyle.Render(fmt.Sprintf("%d MB", plan.Database.BufferPoolMb)), plan.Database.BufferPoolInstances))
	sb.WriteString(fmt.Sprintf("  log file:      %d MB\n", plan.Database.LogFileMb))
	sb.WriteString(fmt.Sprintf("  connections:   %d\n", plan.Database.MaxConnections))
	sb.WriteString("\n")

	sb.WriteString("Cache\n")
	sb.WriteString(fmt.Sprintf("  max memory:    %s\n", styles.ValueStyle.Render(fmt.Sprintf("%d MB", plan.Cache.MaxMemoryMb))))
	sb.WriteString(fmt.Sprintf("  max clients:   %d, backlog %d\n", plan.Cache.MaxClients, plan.Cache.TCPBacklog))
	sb.WriteString("\n")

	percent := plan.FootprintPercent()
	sb.WriteString("Projected footprint\n")
	sb.WriteString(fmt.Sprintf("  %s  %d of %d MB\n",
		widgets.ProgressBarWithLabel(percent, widgets.DefaultProgressBarConfig(), true),
		plan.FootprintMb, plan.Facts.RAMMb))

	for _, d := range plan.Diagnostics {
		style := styles.StatusOK
		switch d.Severity {
		case planner.SeverityWarning:
			style = styles.StatusWarning
		case planner.SeverityFatal:
			style = styles.StatusCritical
		}
		sb.WriteString(fmt.Sprintf("\n%s %s", style.Render(strings.ToUpper(string(d.Severity))), d.Message))
	}

	return sb.String()
}
