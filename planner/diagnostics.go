// ABOUTME: Diagnostics attached to allocation plans
// ABOUTME: Severity levels and stable codes for operator tooling

package planner

// Severity classifies a diagnostic.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityFatal   Severity = "fatal"
)

// Diagnostic codes. Codes are stable identifiers for tooling; messages are
// for humans.
const (
	CodeNoUsableRAM      = "no_usable_ram"
	CodeOvercommit       = "projected_overcommit"
	CodeDBBudgetFloor    = "db_budget_floor"
	CodeCacheBudgetFloor = "cache_budget_floor"
)

// Diagnostic is a single finding from the planning pipeline. A fatal
// diagnostic aborts the computation; warnings travel with the plan.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}
