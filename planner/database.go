// ABOUTME: Database budget planning from the configured capacity slice
// ABOUTME: Buffer pool, log file, and connection sizing with floor/ceiling clamps

package planner

import "fmt"

// DatabaseBudgetPlanner derives database engine settings from the capacity
// slice chosen by the deployment's budget mode.
type DatabaseBudgetPlanner struct {
	policy TuningPolicy
}

// NewDatabaseBudgetPlanner creates a planner for the given policy.
func NewDatabaseBudgetPlanner(policy TuningPolicy) *DatabaseBudgetPlanner {
	return &DatabaseBudgetPlanner{policy: policy}
}

// Plan computes the database budget. availableMb is the shared capacity
// value for the configured budget mode; tenantCount is the raw (not
// effective) tenant count, so an empty host still gets its base connections.
func (p *DatabaseBudgetPlanner) Plan(facts HardwareFacts, availableMb, tenantCount uint) (DatabaseBudget, []Diagnostic) {
	var diags []Diagnostic

	raw := uint(float64(availableMb) * p.policy.DBRatio)
	budgetMb := clampU(raw, p.policy.MinDBMb, p.policy.MaxDBMb)
	if raw < p.policy.MinDBMb {
		diags = append(diags, Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeDBBudgetFloor,
			Message: fmt.Sprintf("database budget clamped to floor %d MB (computed %d MB); host is under-provisioned",
				p.policy.MinDBMb, raw),
		})
	}

	bufferPoolMb := minU(p.policy.BufferPoolCeilingMb, uint(float64(budgetMb)*0.70))
	logFileMb := minU(2048, bufferPoolMb/4)

	maxConnections := p.policy.BaseConnections +
		tenantCount*p.policy.PerTenantConnections +
		facts.Cores*p.policy.PerCoreConnections

	return DatabaseBudget{
		BufferPoolMb:        bufferPoolMb,
		LogFileMb:           logFileMb,
		BufferPoolInstances: clampU(bufferPoolMb/1024, 1, 64),
		MaxConnections:      maxConnections,
		ThreadCacheSize:     maxConnections / 10,
		TableOpenCache:      p.policy.TableOpenCacheBase + tenantCount*p.policy.TableOpenCacheIncrement,
	}, diags
}
