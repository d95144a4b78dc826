// Package fingerprint collects the hardware and OS attributes a device
// presents to the backend the first time it bootstraps an identity.
package fingerprint

import (
	"context"
	"fmt"
	"net"
	"runtime"
	"sort"

	"github.com/shirou/gopsutil/v3/host"

	"banbds/internal/crypto"
	"banbds/internal/domain"
)

// Provider reads attributes from the running host. The raw MAC address is
// never exposed; only its digest is reported.
type Provider struct {
	hostInfo   func(ctx context.Context) (*host.InfoStat, error)
	interfaces func() ([]net.Interface, error)
}

// New returns a Provider backed by gopsutil and the OS network interfaces.
func New() *Provider {
	return &Provider{
		hostInfo:   host.InfoWithContext,
		interfaces: net.Interfaces,
	}
}

// Fingerprint gathers the current attributes. Missing host details degrade
// to runtime values rather than failing, but at least one stable identifier
// (host id or MAC digest) is required.
func (p *Provider) Fingerprint(ctx context.Context) (domain.Fingerprint, error) {
	fp := domain.Fingerprint{
		OSName: runtime.GOOS,
		Model:  runtime.GOARCH,
	}

	info, err := p.hostInfo(ctx)
	if err == nil && info != nil {
		fp.Brand = info.Platform
		if info.KernelArch != "" {
			fp.Model = info.KernelArch
		}
		if info.OS != "" {
			fp.OSName = info.OS
		}
		fp.OSVersion = info.PlatformVersion
		fp.BuildID = info.KernelVersion
		fp.HardwareID = info.HostID
	}
	if fp.Brand == "" {
		fp.Brand = runtime.GOOS
	}

	if mac := p.primaryMAC(); mac != nil {
		fp.MACID = crypto.Fingerprint(mac)
	}

	if fp.HardwareID == "" && fp.MACID == "" {
		if err != nil {
			return domain.Fingerprint{}, fmt.Errorf("read host info: %w", err)
		}
		return domain.Fingerprint{}, fmt.Errorf("no stable device identifier available")
	}
	return fp, nil
}

// primaryMAC picks the hardware address of the first non-loopback interface
// by name, so the choice does not depend on enumeration order.
func (p *Provider) primaryMAC() net.HardwareAddr {
	ifaces, err := p.interfaces()
	if err != nil {
		return nil
	}
	sort.Slice(ifaces, func(i, j int) bool { return ifaces[i].Name < ifaces[j].Name })
	for _, ifc := range ifaces {
		if ifc.Flags&net.FlagLoopback != 0 || len(ifc.HardwareAddr) == 0 {
			continue
		}
		return ifc.HardwareAddr
	}
	return nil
}

// Static is a FingerprintProvider returning a fixed value.
type Static domain.Fingerprint

// Fingerprint returns s unchanged.
func (s Static) Fingerprint(context.Context) (domain.Fingerprint, error) {
	return domain.Fingerprint(s), nil
}

var (
	_ domain.FingerprintProvider = (*Provider)(nil)
	_ domain.FingerprintProvider = Static{}
)
