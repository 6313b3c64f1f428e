// ABOUTME: Local hardware probe via /proc/meminfo and runtime.NumCPU
// ABOUTME: Falls back to static facts when the probe fails

package facts

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/Martel-IT/wp-nixos/planner"
)

const meminfoPath = "/proc/meminfo"

// LocalProvider probes the host the planner runs on. When /proc/meminfo is
// unreadable it falls back to the static provider's values, if any.
type LocalProvider struct {
	fallback *StaticProvider
}

func NewLocalProvider(fallback *StaticProvider) *LocalProvider {
	return &LocalProvider{fallback: fallback}
}

func (l *LocalProvider) Probe(ctx context.Context) (planner.HardwareFacts, error) {
	f, err := os.Open(meminfoPath)
	if err != nil {
		return l.fallbackFacts(ctx, err)
	}
	defer f.Close()

	ramMb, err := parseMemTotalMb(f)
	if err != nil {
		return l.fallbackFacts(ctx, err)
	}

	return planner.HardwareFacts{
		RAMMb: ramMb,
		Cores: uint(runtime.NumCPU()),
	}, nil
}

func (l *LocalProvider) fallbackFacts(ctx context.Context, cause error) (planner.HardwareFacts, error) {
	if l.fallback == nil {
		return planner.HardwareFacts{}, fmt.Errorf("local probe failed: %w", cause)
	}
	slog.Warn("Local probe failed, using static facts", "error", cause)
	return l.fallback.Probe(ctx)
}

func (l *LocalProvider) Source() string { return "local" }

// parseMemTotalMb reads the MemTotal line from a meminfo-format stream.
// The kernel reports the value in KiB.
func parseMemTotalMb(r io.Reader) (uint, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0, fmt.Errorf("malformed MemTotal line: %q", line)
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing MemTotal value %q: %w", fields[1], err)
		}
		return uint(kb / 1024), nil
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("reading meminfo: %w", err)
	}
	return 0, fmt.Errorf("MemTotal not found in meminfo")
}
