// ABOUTME: Allocation orchestrator composing sizer, budget planners, and validator
// ABOUTME: Pure and deterministic; identical inputs yield bit-identical plans

package planner

import "fmt"

// Orchestrator runs the full planning pipeline for one policy. It holds no
// mutable state; callers may share one instance across goroutines.
type Orchestrator struct {
	policy    TuningPolicy
	sizer     *ProcessPoolSizer
	db        *DatabaseBudgetPlanner
	cache     *CacheBudgetPlanner
	validator *AllocationValidator
}

// NewOrchestrator validates the policy and builds the pipeline. An invalid
// policy yields a ConfigError and no orchestrator.
func NewOrchestrator(policy TuningPolicy) (*Orchestrator, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Orchestrator{
		policy:    policy,
		sizer:     NewProcessPoolSizer(policy),
		db:        NewDatabaseBudgetPlanner(policy),
		cache:     NewCacheBudgetPlanner(policy),
		validator: NewAllocationValidator(policy),
	}, nil
}

// Policy returns the policy the orchestrator was built with.
func (o *Orchestrator) Policy() TuningPolicy {
	return o.policy
}

// Compute derives a full allocation plan for the host and tenant count.
// A fatal diagnostic or config error aborts: no partial plan is returned.
func (o *Orchestrator) Compute(facts HardwareFacts, tenantCount uint) (*AllocationPlan, error) {
	effectiveTenants := maxU(1, tenantCount)

	pool, err := o.sizer.Size(facts, effectiveTenants)
	if err != nil {
		return nil, err
	}
	workerTotalMb := o.sizer.TotalMb(pool, effectiveTenants)

	availableMb := o.policy.budgetCapacityMb(facts, workerTotalMb)
	dbBudget, dbDiags := o.db.Plan(facts, availableMb, tenantCount)
	cacheBudget, cacheDiags := o.cache.Plan(facts, availableMb)

	plan := &AllocationPlan{
		Facts:                facts,
		TenantCount:          tenantCount,
		EffectiveTenantCount: effectiveTenants,
		WorkerPool:           pool,
		Database:             dbBudget,
		Cache:                cacheBudget,
	}
	plan.Diagnostics = append(plan.Diagnostics, dbDiags...)
	plan.Diagnostics = append(plan.Diagnostics, cacheDiags...)

	for _, d := range o.validator.Validate(facts, plan) {
		if d.Severity == SeverityFatal {
			return nil, fmt.Errorf("allocation aborted: %s", d.Message)
		}
		plan.Diagnostics = append(plan.Diagnostics, d)
	}
	plan.FootprintMb = o.validator.FootprintMb(facts, plan)

	return plan, nil
}

// ComputePlan is a one-shot convenience for callers without a long-lived
// orchestrator.
func ComputePlan(facts HardwareFacts, policy TuningPolicy, tenantCount uint) (*AllocationPlan, error) {
	o, err := NewOrchestrator(policy)
	if err != nil {
		return nil, err
	}
	return o.Compute(facts, tenantCount)
}
