// Package hwinfo reads driver and link-speed details that route netlink does
// not report. It backs the extra fields of "rtlink show".
package hwinfo

// Info describes the hardware behind a link. Fields that could not be read
// are left zero.
type Info struct {
	Driver   string `json:"driver,omitempty" yaml:"driver,omitempty"`
	Version  string `json:"driver_version,omitempty" yaml:"driver_version,omitempty"`
	Firmware string `json:"firmware,omitempty" yaml:"firmware,omitempty"`
	BusInfo  string `json:"bus_info,omitempty" yaml:"bus_info,omitempty"`
	Speed    uint32 `json:"speed_mbps,omitempty" yaml:"speed_mbps,omitempty"`
	Duplex   string `json:"duplex,omitempty" yaml:"duplex,omitempty"`
	Autoneg  bool   `json:"autoneg,omitempty" yaml:"autoneg,omitempty"`
	Virtual  bool   `json:"virtual,omitempty" yaml:"virtual,omitempty"`
}

// virtualDrivers never answer GetLinkSettings usefully.
var virtualDrivers = map[string]bool{
	"virtio_net": true, "veth": true, "tun": true, "tap": true,
	"bridge": true, "dummy": true, "xen_netfront": true, "vmxnet3": true,
	"hv_netvsc": true, "e1000": true, "e1000e": true,
}

// IsVirtualDriver reports whether driver is a known virtual NIC driver.
func IsVirtualDriver(driver string) bool {
	return virtualDrivers[driver]
}

func duplexString(d uint8) string {
	switch d {
	case 0x00:
		return "half"
	case 0x01:
		return "full"
	}
	return "unknown"
}
