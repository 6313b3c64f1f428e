// ABOUTME: Data model for host allocation planning
// ABOUTME: Hardware facts, per-service budgets, and the computed allocation plan

package planner

// HardwareFacts describes the host the plan is computed for. Values come
// from an external probe or a static fallback; the engine treats both the
// same way.
type HardwareFacts struct {
	RAMMb uint `json:"ram_mb"`
	Cores uint `json:"cores"`
}

// WorkerPoolSpec is the per-tenant worker pool sizing. One spec applies
// uniformly to every tenant on the host.
type WorkerPoolSpec struct {
	MaxChildren  uint `json:"max_children"`
	StartServers uint `json:"start_servers"`
	MinSpare     uint `json:"min_spare"`
	MaxSpare     uint `json:"max_spare"`
}

// DatabaseBudget holds the derived database engine settings.
type DatabaseBudget struct {
	BufferPoolMb        uint `json:"buffer_pool_mb"`
	LogFileMb           uint `json:"log_file_mb"`
	BufferPoolInstances uint `json:"buffer_pool_instances"`
	MaxConnections      uint `json:"max_connections"`
	ThreadCacheSize     uint `json:"thread_cache_size"`
	TableOpenCache      uint `json:"table_open_cache"`
}

// CacheBudget holds the derived in-memory cache settings.
type CacheBudget struct {
	MaxMemoryMb uint `json:"max_memory_mb"`
	MaxClients  uint `json:"max_clients"`
	TCPBacklog  uint `json:"tcp_backlog"`
}

// AllocationPlan is the full result of one planning pass. Plans are rebuilt
// from scratch on every invocation and never patched incrementally.
type AllocationPlan struct {
	Facts                HardwareFacts  `json:"facts"`
	TenantCount          uint           `json:"tenant_count"`
	EffectiveTenantCount uint           `json:"effective_tenant_count"`
	WorkerPool           WorkerPoolSpec `json:"worker_pool"`
	Database             DatabaseBudget `json:"database"`
	Cache                CacheBudget    `json:"cache"`
	FootprintMb          uint           `json:"footprint_mb"`
	Diagnostics          []Diagnostic   `json:"diagnostics"`
}

// HasWarnings reports whether any diagnostic of warning severity is attached.
func (p *AllocationPlan) HasWarnings() bool {
	for _, d := range p.Diagnostics {
		if d.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

func maxU(a, b uint) uint {
	if a > b {
		return a
	}
	return b
}

func minU(a, b uint) uint {
	if a < b {
		return a
	}
	return b
}

// clampU constrains v to [lo, hi]. Callers guarantee lo <= hi.
func clampU(v, lo, hi uint) uint {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// subFloor returns a-b floored at zero, for unsigned budget arithmetic.
func subFloor(a, b uint) uint {
	if a <= b {
		return 0
	}
	return a - b
}
