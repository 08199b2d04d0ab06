package network

import (
	"context"
	"fmt"
	"strings"

	"netapply-agent/internal/domain/constants"
	"netapply-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
)

// LiveStateReporter is a StateReporter implementation that logs the live
// addresses, routes and nameservers so the operator always sees ground truth,
// whatever the workflow outcome was.
type LiveStateReporter struct {
	fileSystem interfaces.FileSystem
	logger     *logrus.Logger
}

// NewLiveStateReporter creates a new LiveStateReporter
func NewLiveStateReporter(fs interfaces.FileSystem, logger *logrus.Logger) *LiveStateReporter {
	return &LiveStateReporter{
		fileSystem: fs,
		logger:     logger,
	}
}

// Report logs the current network state
func (r *LiveStateReporter) Report(ctx context.Context) {
	r.logger.WithFields(logrus.Fields{
		"addresses":   r.collectAddresses(),
		"routes":      r.collectRoutes(),
		"nameservers": r.collectNameservers(),
	}).Info("final network state")
}

// collectAddresses returns per-interface address summaries
func (r *LiveStateReporter) collectAddresses() []string {
	links, err := netlink.LinkList()
	if err != nil {
		r.logger.WithError(err).Warn("failed to list links for state report")
		return nil
	}

	var summaries []string
	for _, link := range links {
		addrs, err := netlink.AddrList(link, netlink.FAMILY_V4)
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			summaries = append(summaries, fmt.Sprintf("%s=%s", link.Attrs().Name, addr.IPNet.String()))
		}
	}
	return summaries
}

// collectRoutes returns route summaries from the main table
func (r *LiveStateReporter) collectRoutes() []string {
	routes, err := netlink.RouteList(nil, netlink.FAMILY_V4)
	if err != nil {
		r.logger.WithError(err).Warn("failed to list routes for state report")
		return nil
	}

	var summaries []string
	for _, route := range routes {
		dst := "default"
		if route.Dst != nil {
			dst = route.Dst.String()
		}
		if route.Gw != nil {
			summaries = append(summaries, fmt.Sprintf("%s via %s", dst, route.Gw.String()))
		} else {
			summaries = append(summaries, dst)
		}
	}
	return summaries
}

// collectNameservers parses resolv.conf for nameserver entries
func (r *LiveStateReporter) collectNameservers() []string {
	content, err := r.fileSystem.ReadFile(constants.ResolvConfFile)
	if err != nil {
		return nil
	}

	var servers []string
	for _, line := range strings.Split(string(content), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "nameserver" {
			servers = append(servers, fields[1])
		}
	}
	return servers
}
