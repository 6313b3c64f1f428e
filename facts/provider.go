// ABOUTME: Hardware facts providers for the allocation planner
// ABOUTME: The engine never probes; these collaborators supply RAM and core counts

package facts

import (
	"context"
	"fmt"

	"github.com/Martel-IT/wp-nixos/planner"
)

// Provider supplies the hardware facts the planner computes against.
type Provider interface {
	// Probe returns the host's usable RAM and core count.
	Probe(ctx context.Context) (planner.HardwareFacts, error)
	// Source names the provider for logs and the health endpoint.
	Source() string
}

// StaticProvider returns fixed facts from configuration. It backs hosts the
// planner cannot probe and serves as the fallback for failed probes.
type StaticProvider struct {
	facts planner.HardwareFacts
}

func NewStaticProvider(ramMb, cores uint) *StaticProvider {
	return &StaticProvider{facts: planner.HardwareFacts{RAMMb: ramMb, Cores: cores}}
}

func (s *StaticProvider) Probe(_ context.Context) (planner.HardwareFacts, error) {
	if s.facts.RAMMb == 0 || s.facts.Cores == 0 {
		return planner.HardwareFacts{}, fmt.Errorf("static facts not configured (ram=%d cores=%d)", s.facts.RAMMb, s.facts.Cores)
	}
	return s.facts, nil
}

func (s *StaticProvider) Source() string { return "static" }
