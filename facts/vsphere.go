// ABOUTME: vSphere hardware probe via govmomi
// ABOUTME: Reads the backing ESXi host's memory and core counts for virtualized planners

package facts

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/vmware/govmomi"
	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/vim25/mo"

	"github.com/Martel-IT/wp-nixos/planner"
)

// VSphereCredentials holds vCenter connection info.
type VSphereCredentials struct {
	Host       string
	Username   string
	Password   string
	Datacenter string
	HostName   string // inventory path or name of the ESXi host to probe
	Insecure   bool
}

// VSphereProvider probes an ESXi host's hardware summary through vCenter.
// Used when the shared host is a VM and the plan should be sized against
// the hypervisor's physical capacity.
type VSphereProvider struct {
	creds  VSphereCredentials
	client *govmomi.Client
	finder *find.Finder
}

func NewVSphereProvider(creds VSphereCredentials) *VSphereProvider {
	return &VSphereProvider{creds: creds}
}

// Connect establishes the vCenter session and scopes the finder to the
// configured datacenter.
func (v *VSphereProvider) Connect(ctx context.Context) error {
	host := v.creds.Host
	if !strings.HasPrefix(host, "https://") && !strings.HasPrefix(host, "http://") {
		host = "https://" + host
	}

	u, err := url.Parse(host + "/sdk")
	if err != nil {
		return fmt.Errorf("invalid vCenter URL '%s': %w", v.creds.Host, err)
	}
	u.User = url.UserPassword(v.creds.Username, v.creds.Password)

	client, err := govmomi.NewClient(ctx, u, v.creds.Insecure)
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "connection refused") {
			return fmt.Errorf("connection refused to vCenter at %s - verify the host is reachable", v.creds.Host)
		}
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "Cannot complete login") {
			return fmt.Errorf("authentication failed - verify username and password")
		}
		if strings.Contains(errStr, "certificate") || strings.Contains(errStr, "x509") {
			return fmt.Errorf("SSL certificate error connecting to %s - try setting VSPHERE_INSECURE=true", v.creds.Host)
		}
		return fmt.Errorf("failed to connect to vCenter at %s: %w", v.creds.Host, err)
	}

	v.client = client
	v.finder = find.NewFinder(client.Client, true)

	dc, err := v.finder.Datacenter(ctx, v.creds.Datacenter)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("datacenter '%s' not found - verify the datacenter name", v.creds.Datacenter)
		}
		return fmt.Errorf("error accessing datacenter '%s': %w", v.creds.Datacenter, err)
	}
	v.finder.SetDatacenter(dc)

	slog.Info("vSphere connected", "host", v.creds.Host, "datacenter", v.creds.Datacenter)
	return nil
}

// Disconnect closes the vCenter session.
func (v *VSphereProvider) Disconnect(ctx context.Context) error {
	if v.client != nil {
		return v.client.Logout(ctx)
	}
	return nil
}

// IsConnected returns true when the session is still valid.
func (v *VSphereProvider) IsConnected() bool {
	return v.client != nil && v.client.Valid()
}

func (v *VSphereProvider) Probe(ctx context.Context) (planner.HardwareFacts, error) {
	if !v.IsConnected() {
		if err := v.Connect(ctx); err != nil {
			return planner.HardwareFacts{}, err
		}
	}

	host, err := v.finder.HostSystem(ctx, v.creds.HostName)
	if err != nil {
		return planner.HardwareFacts{}, fmt.Errorf("finding host '%s': %w", v.creds.HostName, err)
	}

	var hostMo mo.HostSystem
	if err := host.Properties(ctx, host.Reference(), []string{"summary"}, &hostMo); err != nil {
		return planner.HardwareFacts{}, fmt.Errorf("getting host properties: %w", err)
	}

	facts := planner.HardwareFacts{
		RAMMb: uint(hostMo.Summary.Hardware.MemorySize / (1024 * 1024)),
		Cores: uint(hostMo.Summary.Hardware.NumCpuCores),
	}
	slog.Debug("vSphere probe complete", "host", v.creds.HostName, "ram_mb", facts.RAMMb, "cores", facts.Cores)
	return facts, nil
}

func (v *VSphereProvider) Source() string { return "vsphere" }
