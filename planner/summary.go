// ABOUTME: Plain-text operator summary for allocation plans
// ABOUTME: Renders budgets and diagnostics in a human-readable report

package planner

import (
	"fmt"
	"strings"
)

// RenderSummary formats a plan as a plain-text operator report.
func RenderSummary(plan *AllocationPlan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Allocation plan for %d MB RAM / %d cores, %d tenant(s)\n",
		plan.Facts.RAMMb, plan.Facts.Cores, plan.TenantCount)
	fmt.Fprintf(&b, "\nWorker pool (per tenant):\n")
	fmt.Fprintf(&b, "  max children   %d\n", plan.WorkerPool.MaxChildren)
	fmt.Fprintf(&b, "  start servers  %d\n", plan.WorkerPool.StartServers)
	fmt.Fprintf(&b, "  spare servers  %d-%d\n", plan.WorkerPool.MinSpare, plan.WorkerPool.MaxSpare)

	fmt.Fprintf(&b, "\nDatabase:\n")
	fmt.Fprintf(&b, "  buffer pool    %d MB (%d instance(s))\n",
		plan.Database.BufferPoolMb, plan.Database.BufferPoolInstances)
	fmt.Fprintf(&b, "  log file       %d MB\n", plan.Database.LogFileMb)
	fmt.Fprintf(&b, "  connections    %d (thread cache %d, table cache %d)\n",
		plan.Database.MaxConnections, plan.Database.ThreadCacheSize, plan.Database.TableOpenCache)

	fmt.Fprintf(&b, "\nCache:\n")
	fmt.Fprintf(&b, "  max memory     %d MB\n", plan.Cache.MaxMemoryMb)
	fmt.Fprintf(&b, "  max clients    %d\n", plan.Cache.MaxClients)
	fmt.Fprintf(&b, "  tcp backlog    %d\n", plan.Cache.TCPBacklog)

	fmt.Fprintf(&b, "\nProjected footprint: %d of %d MB (%.1f%%)\n",
		plan.FootprintMb, plan.Facts.RAMMb, footprintPercent(plan))

	if len(plan.Diagnostics) == 0 {
		b.WriteString("No diagnostics.\n")
	} else {
		fmt.Fprintf(&b, "Diagnostics (%d):\n", len(plan.Diagnostics))
		for _, d := range plan.Diagnostics {
			fmt.Fprintf(&b, "  [%s] %s: %s\n", strings.ToUpper(string(d.Severity)), d.Code, d.Message)
		}
	}

	return b.String()
}

func footprintPercent(plan *AllocationPlan) float64 {
	if plan.Facts.RAMMb == 0 {
		return 0
	}
	return float64(plan.FootprintMb) / float64(plan.Facts.RAMMb) * 100
}

// FootprintPercent reports projected footprint as a percentage of RAM.
func (p *AllocationPlan) FootprintPercent() float64 {
	return footprintPercent(p)
}
