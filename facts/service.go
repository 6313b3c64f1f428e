// ABOUTME: Cached probe front for hardware facts providers
// ABOUTME: TTL cache plus singleflight so concurrent callers share one probe

package facts

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Martel-IT/wp-nixos/planner"
)

// Service wraps a Provider with a TTL cache. Concurrent callers during a
// cache miss share a single probe via singleflight.
type Service struct {
	provider Provider
	ttl      time.Duration

	mu       sync.RWMutex
	facts    planner.HardwareFacts
	fetched  time.Time
	haveData bool

	sfGroup singleflight.Group
}

func NewService(provider Provider, ttl time.Duration) *Service {
	return &Service{provider: provider, ttl: ttl}
}

// Facts returns cached facts when fresh, otherwise probes the provider.
func (s *Service) Facts(ctx context.Context) (planner.HardwareFacts, error) {
	s.mu.RLock()
	if s.haveData && time.Since(s.fetched) < s.ttl {
		facts := s.facts
		s.mu.RUnlock()
		return facts, nil
	}
	s.mu.RUnlock()

	result, err, _ := s.sfGroup.Do("probe", func() (interface{}, error) {
		// Another caller may have refreshed while we queued.
		s.mu.RLock()
		if s.haveData && time.Since(s.fetched) < s.ttl {
			facts := s.facts
			s.mu.RUnlock()
			return facts, nil
		}
		s.mu.RUnlock()

		facts, err := s.provider.Probe(ctx)
		if err != nil {
			return planner.HardwareFacts{}, err
		}

		s.mu.Lock()
		s.facts = facts
		s.fetched = time.Now()
		s.haveData = true
		s.mu.Unlock()

		return facts, nil
	})
	if err != nil {
		return planner.HardwareFacts{}, err
	}

	return result.(planner.HardwareFacts), nil
}

// Invalidate drops the cached facts so the next call probes again.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.haveData = false
	s.mu.Unlock()
}

// Source names the underlying provider.
func (s *Service) Source() string { return s.provider.Source() }
