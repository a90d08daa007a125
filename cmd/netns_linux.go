//go:build linux

package cmd

import (
	"fmt"

	"github.com/vishvananda/netns"
)

// openNamedNetNS opens a namespace created with "ip netns add" and returns
// its descriptor for IFLA_NET_NS_FD.
func openNamedNetNS(name string) (uint32, func(), error) {
	h, err := netns.GetFromName(name)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to open netns %s: %w", name, err)
	}
	return uint32(h), func() { h.Close() }, nil
}
