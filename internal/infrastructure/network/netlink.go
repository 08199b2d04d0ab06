package network

import (
	"sort"

	"netapply-agent/internal/domain/errors"
	"netapply-agent/internal/domain/interfaces"

	"github.com/vishvananda/netlink"
)

// NetlinkInspector is a NetworkInspector implementation backed by the kernel
// routing and link tables via netlink.
type NetlinkInspector struct{}

// NewNetlinkInspector creates a new NetlinkInspector
func NewNetlinkInspector() interfaces.NetworkInspector {
	return &NetlinkInspector{}
}

// ListPhysicalInterfaces returns the names of physical NICs in sorted order
func (i *NetlinkInspector) ListPhysicalInterfaces() ([]string, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, errors.NewNetworkError("failed to list network links", err)
	}

	var names []string
	for _, link := range links {
		names = append(names, link.Attrs().Name)
	}

	names = filterPhysicalInterfaces(names)
	sort.Strings(names)
	return names, nil
}

// DefaultGateway returns the IPv4 default gateway from the live routing table.
// The second return value is false when no default route exists.
func (i *NetlinkInspector) DefaultGateway() (string, bool, error) {
	routes, err := netlink.RouteList(nil, netlink.FAMILY_V4)
	if err != nil {
		return "", false, errors.NewNetworkError("failed to list routes", err)
	}

	for _, route := range routes {
		if route.Gw == nil {
			continue
		}
		if route.Dst == nil || route.Dst.IP.IsUnspecified() {
			return route.Gw.String(), true, nil
		}
	}

	return "", false, nil
}
