// ABOUTME: Cross-checking validator for computed allocation plans
// ABOUTME: Sums projected footprints against total RAM and emits diagnostics

package planner

import "fmt"

// AllocationValidator cross-checks a computed plan against the host's
// physical memory.
type AllocationValidator struct {
	policy TuningPolicy
}

// NewAllocationValidator creates a validator for the given policy.
func NewAllocationValidator(policy TuningPolicy) *AllocationValidator {
	return &AllocationValidator{policy: policy}
}

// FootprintMb projects the combined memory claim of all budgets plus the OS
// headroom. The database contribution is buffer pool plus log file.
func (v *AllocationValidator) FootprintMb(facts HardwareFacts, plan *AllocationPlan) uint {
	workerTotalMb := plan.WorkerPool.MaxChildren * v.policy.AvgProcessMb * plan.EffectiveTenantCount
	return workerTotalMb +
		plan.Database.BufferPoolMb + plan.Database.LogFileMb +
		plan.Cache.MaxMemoryMb +
		v.policy.OSHeadroomMb
}

// Validate returns diagnostics for the plan. A fatal diagnostic means the
// orchestrator must abort instead of returning the plan.
func (v *AllocationValidator) Validate(facts HardwareFacts, plan *AllocationPlan) []Diagnostic {
	if facts.RAMMb == 0 {
		return []Diagnostic{{
			Severity: SeverityFatal,
			Code:     CodeNoUsableRAM,
			Message:  "host reports no usable RAM",
		}}
	}

	var diags []Diagnostic
	footprint := v.FootprintMb(facts, plan)
	if footprint > facts.RAMMb {
		diags = append(diags, Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeOvercommit,
			Message: fmt.Sprintf("projected footprint %d MB exceeds %d MB RAM by %d MB; reduce tenants or raise headroom",
				footprint, facts.RAMMb, footprint-facts.RAMMb),
		})
	}
	return diags
}
