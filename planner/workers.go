// ABOUTME: Per-tenant worker pool sizing from available RAM
// ABOUTME: Fair-share division with a data-driven tier staircase

package planner

// ProcessPoolSizer derives the per-tenant worker pool from RAM remaining
// after OS headroom.
type ProcessPoolSizer struct {
	policy TuningPolicy
}

// NewProcessPoolSizer creates a sizer for the given policy.
func NewProcessPoolSizer(policy TuningPolicy) *ProcessPoolSizer {
	return &ProcessPoolSizer{policy: policy}
}

// Size computes the uniform per-tenant pool spec. effectiveTenants must be
// at least 1; the orchestrator guarantees that.
func (s *ProcessPoolSizer) Size(facts HardwareFacts, effectiveTenants uint) (WorkerPoolSpec, error) {
	if s.policy.AvgProcessMb == 0 {
		return WorkerPoolSpec{}, &ConfigError{Field: "avg_process_mb", Reason: "must be positive"}
	}

	availableMb := maxU(512, subFloor(facts.RAMMb, s.policy.OSHeadroomMb))
	totalWorkers := maxU(2, availableMb/s.policy.AvgProcessMb)

	// Uncapped fair share; scale rules may not push past it.
	fairShare := totalWorkers / effectiveTenants
	perTenant := maxU(2, fairShare)

	for _, rule := range s.policy.TierRules {
		if !rule.matches(facts) {
			continue
		}
		if rule.CapPerTenant > 0 && perTenant > rule.CapPerTenant {
			perTenant = rule.CapPerTenant
		}
		if rule.ScalePerTenant > 0 {
			scaled := uint(float64(perTenant) * rule.ScalePerTenant)
			if scaled > fairShare {
				scaled = fairShare
			}
			if scaled > perTenant {
				perTenant = scaled
			}
		}
		break
	}

	startServers := maxU(1, perTenant/4)
	return WorkerPoolSpec{
		MaxChildren:  perTenant,
		StartServers: startServers,
		MinSpare:     startServers,
		MaxSpare:     maxU(2, perTenant/2),
	}, nil
}

// TotalMb projects the pool's worst-case memory claim across all tenants.
func (s *ProcessPoolSizer) TotalMb(spec WorkerPoolSpec, effectiveTenants uint) uint {
	return spec.MaxChildren * s.policy.AvgProcessMb * effectiveTenants
}
