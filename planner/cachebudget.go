// ABOUTME: In-memory cache budget planning from the configured capacity slice
// ABOUTME: Memory ceiling, client limit, and TCP backlog sizing

package planner

import "fmt"

// perClientOverheadBytes is the assumed accounting overhead per cache
// connection.
const perClientOverheadBytes = 20

// CacheBudgetPlanner derives cache settings symmetric to the database
// planner, using the cache ratio against the same capacity slice.
type CacheBudgetPlanner struct {
	policy TuningPolicy
}

// NewCacheBudgetPlanner creates a planner for the given policy.
func NewCacheBudgetPlanner(policy TuningPolicy) *CacheBudgetPlanner {
	return &CacheBudgetPlanner{policy: policy}
}

// Plan computes the cache budget from the shared capacity value.
func (p *CacheBudgetPlanner) Plan(facts HardwareFacts, availableMb uint) (CacheBudget, []Diagnostic) {
	var diags []Diagnostic

	raw := uint(float64(availableMb) * p.policy.CacheRatio)
	cacheMb := clampU(raw, p.policy.MinCacheMb, p.policy.MaxCacheMb)
	if raw < p.policy.MinCacheMb {
		diags = append(diags, Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeCacheBudgetFloor,
			Message: fmt.Sprintf("cache budget clamped to floor %d MB (computed %d MB); host is under-provisioned",
				p.policy.MinCacheMb, raw),
		})
	}

	// 80% of the ceiling is usable for connection accounting; the rest is
	// data.
	maxClients := minU(p.policy.HardClientCap,
		uint(float64(cacheMb)*1024*0.8/perClientOverheadBytes))

	return CacheBudget{
		MaxMemoryMb: cacheMb,
		MaxClients:  maxClients,
		TCPBacklog:  minU(2048, 512*facts.Cores),
	}, diags
}
