// ABOUTME: Tuning policy for the allocation engine
// ABOUTME: Per-deployment ratios, clamps, and tier rules with validation

package planner

import "fmt"

// BudgetMode selects where database and cache budgets are drawn from.
// Both conventions exist in the field; the mode makes the choice explicit
// instead of guessing.
type BudgetMode string

const (
	// BudgetModeRemaining draws budgets from RAM left over after the worker
	// pool's claim and the OS headroom.
	BudgetModeRemaining BudgetMode = "remaining"
	// BudgetModeReserveSlice draws budgets from a slice of the OS headroom
	// itself, independent of worker pool sizing.
	BudgetModeReserveSlice BudgetMode = "reserve_slice"
)

// TierRule caps or scales the per-tenant worker count based on host shape.
// Rules are evaluated in order; the first rule whose conditions all hold is
// applied and evaluation stops. A rule with no condition set never matches.
type TierRule struct {
	// MaxRAMMb matches hosts with RAMMb <= MaxRAMMb. Zero means no RAM
	// condition.
	MaxRAMMb uint `json:"max_ram_mb,omitempty"`
	// MinCores matches hosts with Cores >= MinCores. Zero means no core
	// condition.
	MinCores uint `json:"min_cores,omitempty"`
	// CapPerTenant limits the per-tenant worker count when set.
	CapPerTenant uint `json:"cap_per_tenant,omitempty"`
	// ScalePerTenant multiplies the per-tenant worker count when set,
	// bounded by the tenant's uncapped fair share of the pool.
	ScalePerTenant float64 `json:"scale_per_tenant,omitempty"`
}

func (r TierRule) matches(facts HardwareFacts) bool {
	if r.MaxRAMMb == 0 && r.MinCores == 0 {
		return false
	}
	if r.MaxRAMMb > 0 && facts.RAMMb > r.MaxRAMMb {
		return false
	}
	if r.MinCores > 0 && facts.Cores < r.MinCores {
		return false
	}
	return true
}

// TuningPolicy carries every knob of the planning pipeline. One immutable
// value per deployment; the engine never mutates it.
type TuningPolicy struct {
	OSHeadroomMb uint `json:"os_headroom_mb"`
	AvgProcessMb uint `json:"avg_process_mb"`

	DBRatio    float64 `json:"db_ratio"`
	CacheRatio float64 `json:"cache_ratio"`

	MinDBMb    uint `json:"min_db_mb"`
	MaxDBMb    uint `json:"max_db_mb"`
	MinCacheMb uint `json:"min_cache_mb"`
	MaxCacheMb uint `json:"max_cache_mb"`

	BaseConnections      uint `json:"base_connections"`
	PerTenantConnections uint `json:"per_tenant_connections"`
	PerCoreConnections   uint `json:"per_core_connections"`

	BufferPoolCeilingMb     uint `json:"buffer_pool_ceiling_mb"`
	TableOpenCacheBase      uint `json:"table_open_cache_base"`
	TableOpenCacheIncrement uint `json:"table_open_cache_increment"`
	HardClientCap           uint `json:"hard_client_cap"`

	// OSOverheadMb and ReserveFloorMb only matter in reserve_slice mode:
	// the slice is headroom minus overhead, floored at ReserveFloorMb.
	OSOverheadMb   uint `json:"os_overhead_mb"`
	ReserveFloorMb uint `json:"reserve_floor_mb"`

	BudgetMode BudgetMode `json:"budget_mode"`
	TierRules  []TierRule `json:"tier_rules"`
}

// DefaultPolicy returns the stock tuning policy for a shared WordPress host:
// PHP-FPM pools per site, one MySQL instance, one Redis instance.
func DefaultPolicy() TuningPolicy {
	return TuningPolicy{
		OSHeadroomMb: 2048,
		AvgProcessMb: 70,

		DBRatio:    0.30,
		CacheRatio: 0.15,

		MinDBMb:    512,
		MaxDBMb:    32768,
		MinCacheMb: 256,
		MaxCacheMb: 8192,

		BaseConnections:      100,
		PerTenantConnections: 20,
		PerCoreConnections:   25,

		BufferPoolCeilingMb:     12288,
		TableOpenCacheBase:      2000,
		TableOpenCacheIncrement: 400,
		HardClientCap:           10000,

		OSOverheadMb:   512,
		ReserveFloorMb: 256,

		BudgetMode: BudgetModeRemaining,
		TierRules: []TierRule{
			{MaxRAMMb: 4096, CapPerTenant: 5},
			{MaxRAMMb: 8192, CapPerTenant: 10},
			{MinCores: 8, ScalePerTenant: 2},
		},
	}
}

// ConfigError reports an invalid tuning policy. It is fatal: no partial plan
// is produced.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid tuning policy: %s %s", e.Field, e.Reason)
}

// Validate checks the policy for values the pipeline cannot work with.
func (p TuningPolicy) Validate() error {
	if p.AvgProcessMb == 0 {
		return &ConfigError{Field: "avg_process_mb", Reason: "must be positive"}
	}
	if p.DBRatio <= 0 || p.DBRatio >= 1 {
		return &ConfigError{Field: "db_ratio", Reason: fmt.Sprintf("must be in (0,1), got %g", p.DBRatio)}
	}
	if p.CacheRatio <= 0 || p.CacheRatio >= 1 {
		return &ConfigError{Field: "cache_ratio", Reason: fmt.Sprintf("must be in (0,1), got %g", p.CacheRatio)}
	}
	if p.MinDBMb > p.MaxDBMb {
		return &ConfigError{Field: "min_db_mb", Reason: fmt.Sprintf("exceeds max_db_mb (%d > %d)", p.MinDBMb, p.MaxDBMb)}
	}
	if p.MinCacheMb > p.MaxCacheMb {
		return &ConfigError{Field: "min_cache_mb", Reason: fmt.Sprintf("exceeds max_cache_mb (%d > %d)", p.MinCacheMb, p.MaxCacheMb)}
	}
	switch p.BudgetMode {
	case BudgetModeRemaining, BudgetModeReserveSlice:
	default:
		return &ConfigError{Field: "budget_mode", Reason: fmt.Sprintf("unknown mode %q", p.BudgetMode)}
	}
	for i, r := range p.TierRules {
		if r.CapPerTenant == 0 && r.ScalePerTenant == 0 {
			return &ConfigError{Field: "tier_rules", Reason: fmt.Sprintf("rule %d has no action", i)}
		}
		if r.ScalePerTenant < 0 {
			return &ConfigError{Field: "tier_rules", Reason: fmt.Sprintf("rule %d has negative scale", i)}
		}
	}
	return nil
}

// budgetCapacityMb returns the capacity database and cache budgets are drawn
// from, per the configured budget mode. Both planners share the same value.
func (p TuningPolicy) budgetCapacityMb(facts HardwareFacts, workerTotalMb uint) uint {
	switch p.BudgetMode {
	case BudgetModeReserveSlice:
		return maxU(p.ReserveFloorMb, subFloor(p.OSHeadroomMb, p.OSOverheadMb))
	default:
		return maxU(256, subFloor(facts.RAMMb, workerTotalMb+p.OSHeadroomMb))
	}
}
