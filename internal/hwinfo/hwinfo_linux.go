//go:build linux

package hwinfo

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/safchain/ethtool"
)

// Reader queries ethtool for interface details.
type Reader struct {
	handle   *ethtool.Ethtool
	sysfsNet string
}

// NewReader opens an ethtool handle.
func NewReader() (*Reader, error) {
	h, err := ethtool.NewEthtool()
	if err != nil {
		return nil, fmt.Errorf("failed to open ethtool handle: %w", err)
	}
	return &Reader{handle: h, sysfsNet: "/sys/class/net"}, nil
}

// Close closes the ethtool handle.
func (r *Reader) Close() {
	r.handle.Close()
}

// Read collects what is known about iface. Devices without a driver
// (loopback, most virtual kinds) yield a mostly empty Info and no error.
func (r *Reader) Read(iface string) (*Info, error) {
	info := &Info{}

	if drv, err := r.handle.DriverInfo(iface); err == nil {
		info.Driver = drv.Driver
		info.Version = drv.Version
		info.Firmware = drv.FwVersion
		info.BusInfo = drv.BusInfo
	}

	info.Virtual = r.isVirtual(iface, info.Driver)
	if info.Virtual {
		r.readSysfs(iface, info)
		return info, nil
	}

	settings, err := r.handle.GetLinkSettings(iface)
	if err != nil {
		r.readSysfs(iface, info)
		return info, nil
	}
	info.Speed = settings.Speed
	info.Duplex = duplexString(settings.Duplex)
	info.Autoneg = settings.Autoneg != 0
	return info, nil
}

// readSysfs fills speed and duplex without ethtool, which avoids kernel
// warnings from drivers that do not implement link settings.
func (r *Reader) readSysfs(iface string, info *Info) {
	base := filepath.Join(r.sysfsNet, iface)

	if data, err := os.ReadFile(filepath.Join(base, "speed")); err == nil {
		s := strings.TrimSpace(string(data))
		if v, err := strconv.ParseUint(s, 10, 32); err == nil {
			info.Speed = uint32(v)
		}
	}

	info.Duplex = "unknown"
	if data, err := os.ReadFile(filepath.Join(base, "duplex")); err == nil {
		if d := strings.TrimSpace(string(data)); d == "full" || d == "half" {
			info.Duplex = d
		}
	}
}

func (r *Reader) isVirtual(iface, driver string) bool {
	if driver == "" {
		if target, err := os.Readlink(filepath.Join(r.sysfsNet, iface, "device", "driver")); err == nil {
			driver = filepath.Base(target)
		}
	}
	if IsVirtualDriver(driver) {
		return true
	}

	// Reliable for KVM/QEMU.
	if data, err := os.ReadFile(filepath.Join(r.sysfsNet, iface, "device", "modalias")); err == nil {
		if strings.HasPrefix(string(data), "virtio") {
			return true
		}
	}

	// No device directory means a software interface.
	if _, err := os.Stat(filepath.Join(r.sysfsNet, iface, "device")); os.IsNotExist(err) {
		return true
	}
	return false
}
