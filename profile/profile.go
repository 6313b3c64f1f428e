// ABOUTME: Layered sandboxing profile composition for managed services
// ABOUTME: Ordered merge of partial overrides: base, hardening level, per-service

package profile

// Level names a predefined hardening tier.
type Level string

const (
	LevelBaseline Level = "baseline"
	LevelHardened Level = "hardened"
	LevelStrict   Level = "strict"
)

// Profile is the effective sandboxing profile applied to one managed
// service. Field names follow the systemd unit directives they feed.
type Profile struct {
	NoNewPrivileges        bool     `json:"no_new_privileges"`
	PrivateTmp             bool     `json:"private_tmp"`
	PrivateDevices         bool     `json:"private_devices"`
	ProtectHome            bool     `json:"protect_home"`
	ProtectSystem          string   `json:"protect_system"` // "", "full", "strict"
	MemoryDenyWriteExecute bool     `json:"memory_deny_write_execute"`
	RestrictAddressFamilies []string `json:"restrict_address_families"`
	SystemCallFilter       []string `json:"system_call_filter"`

	// BindAddress is consumed by the derive step, not emitted directly: an
	// empty address means the service listens on a local socket only.
	BindAddress string `json:"bind_address"`
}

// Override is a partial profile; nil fields leave the current value alone.
// Overrides compose left to right, last writer wins per field.
type Override struct {
	NoNewPrivileges        *bool     `json:"no_new_privileges,omitempty"`
	PrivateTmp             *bool     `json:"private_tmp,omitempty"`
	PrivateDevices         *bool     `json:"private_devices,omitempty"`
	ProtectHome            *bool     `json:"protect_home,omitempty"`
	ProtectSystem          *string   `json:"protect_system,omitempty"`
	MemoryDenyWriteExecute *bool     `json:"memory_deny_write_execute,omitempty"`
	RestrictAddressFamilies *[]string `json:"restrict_address_families,omitempty"`
	SystemCallFilter       *[]string `json:"system_call_filter,omitempty"`
	BindAddress            *string   `json:"bind_address,omitempty"`
}

// setIf copies an override field over the profile field when set.
func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (o Override) apply(p *Profile) {
	setIf(&p.NoNewPrivileges, o.NoNewPrivileges)
	setIf(&p.PrivateTmp, o.PrivateTmp)
	setIf(&p.PrivateDevices, o.PrivateDevices)
	setIf(&p.ProtectHome, o.ProtectHome)
	setIf(&p.ProtectSystem, o.ProtectSystem)
	setIf(&p.MemoryDenyWriteExecute, o.MemoryDenyWriteExecute)
	setIf(&p.RestrictAddressFamilies, o.RestrictAddressFamilies)
	setIf(&p.SystemCallFilter, o.SystemCallFilter)
	setIf(&p.BindAddress, o.BindAddress)
}

// Compose merges overrides onto a base profile in order and evaluates
// derived fields once at the end.
func Compose(base Profile, overrides ...Override) Profile {
	out := base
	for _, o := range overrides {
		o.apply(&out)
	}
	out.derive()
	return out
}

// derive computes fields that depend on other configuration. Evaluated once
// during composition rather than scattered through consumers.
func (p *Profile) derive() {
	// A service without a bind address talks over local sockets only, so
	// inet families are dropped from its sandbox.
	if p.BindAddress == "" && len(p.RestrictAddressFamilies) > 0 {
		families := make([]string, 0, len(p.RestrictAddressFamilies))
		for _, f := range p.RestrictAddressFamilies {
			if f == "AF_INET" || f == "AF_INET6" {
				continue
			}
			families = append(families, f)
		}
		p.RestrictAddressFamilies = families
	}
}

func boolPtr(b bool) *bool       { return &b }
func strPtr(s string) *string    { return &s }
func listPtr(s []string) *[]string { return &s }

// LevelOverride returns the partial override for a hardening level. Unknown
// levels compose as no-ops.
func LevelOverride(level Level) Override {
	switch level {
	case LevelHardened:
		return Override{
			NoNewPrivileges: boolPtr(true),
			PrivateTmp:      boolPtr(true),
			ProtectHome:     boolPtr(true),
			ProtectSystem:   strPtr("full"),
		}
	case LevelStrict:
		return Override{
			NoNewPrivileges:        boolPtr(true),
			PrivateTmp:             boolPtr(true),
			PrivateDevices:         boolPtr(true),
			ProtectHome:            boolPtr(true),
			ProtectSystem:          strPtr("strict"),
			MemoryDenyWriteExecute: boolPtr(true),
			SystemCallFilter:       listPtr([]string{"@system-service"}),
		}
	default:
		return Override{}
	}
}

// DefaultBase is the profile every managed service starts from.
func DefaultBase() Profile {
	return Profile{
		PrivateTmp:              true,
		RestrictAddressFamilies: []string{"AF_UNIX", "AF_INET", "AF_INET6"},
	}
}
