package probe

import (
	"context"
	"fmt"
	"net"
	"time"

	"netapply-agent/internal/domain/entities"
	"netapply-agent/internal/infrastructure/config"

	"github.com/miekg/dns"
	probing "github.com/prometheus-community/pro-bing"
	"github.com/sirupsen/logrus"
)

// Pinger abstracts a single ICMP reachability attempt
type Pinger interface {
	// Ping sends one echo request and fails when no reply arrives in time
	Ping(ctx context.Context, target string, timeout time.Duration) error
}

// Resolver abstracts a single DNS A-record lookup against a specific server
type Resolver interface {
	// ResolveA returns the first A record for host
	ResolveA(ctx context.Context, host, server string, timeout time.Duration) (string, error)
}

// ICMPPinger is a Pinger implementation backed by ICMP echo requests
type ICMPPinger struct{}

// NewICMPPinger creates a new ICMPPinger
func NewICMPPinger() Pinger {
	return &ICMPPinger{}
}

// Ping sends one echo request to target
func (p *ICMPPinger) Ping(ctx context.Context, target string, timeout time.Duration) error {
	pinger, err := probing.NewPinger(target)
	if err != nil {
		return fmt.Errorf("failed to create pinger: %w", err)
	}

	pinger.Count = 1
	pinger.Timeout = timeout
	// The workflow already requires root, so raw ICMP sockets are available
	pinger.SetPrivileged(true)

	if err := pinger.RunWithContext(ctx); err != nil {
		return err
	}

	if pinger.Statistics().PacketsRecv == 0 {
		return fmt.Errorf("no reply from %s", target)
	}
	return nil
}

// DNSResolver is a Resolver implementation that queries a nameserver directly
type DNSResolver struct{}

// NewDNSResolver creates a new DNSResolver
func NewDNSResolver() Resolver {
	return &DNSResolver{}
}

// ResolveA queries server for the A record of host
func (r *DNSResolver) ResolveA(ctx context.Context, host, server string, timeout time.Duration) (string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), dns.TypeA)

	client := &dns.Client{Timeout: timeout}
	reply, _, err := client.ExchangeContext(ctx, msg, net.JoinHostPort(server, "53"))
	if err != nil {
		return "", err
	}

	for _, answer := range reply.Answer {
		if a, ok := answer.(*dns.A); ok {
			return a.A.String(), nil
		}
	}
	return "", fmt.Errorf("no A record for %s", host)
}

// GatewayDiscoverer reports the default gateway from the live routing table
type GatewayDiscoverer interface {
	DefaultGateway() (string, bool, error)
}

// Check names, in battery order
const (
	CheckDNSServer      = "dns_server"
	CheckExternalHost   = "external_host"
	CheckDefaultGateway = "default_gateway"
)

// Service runs the fixed battery of reachability checks. The checks are
// independent and sequential; failure of one never aborts the others.
type Service struct {
	pinger     Pinger
	resolver   Resolver
	discoverer GatewayDiscoverer
	logger     *logrus.Logger
	cfg        config.ProbeConfig
}

// NewService creates a new probe Service
func NewService(
	pinger Pinger,
	resolver Resolver,
	discoverer GatewayDiscoverer,
	logger *logrus.Logger,
	cfg config.ProbeConfig,
) *Service {
	return &Service{
		pinger:     pinger,
		resolver:   resolver,
		discoverer: discoverer,
		logger:     logger,
		cfg:        cfg,
	}
}

// Probe runs all checks and returns the result. The gateway check is skipped
// entirely, not counted, when no default route exists at probe time.
func (s *Service) Probe(ctx context.Context) entities.ProbeResult {
	var checks []entities.ProbeCheck

	checks = append(checks, s.runCheck(ctx, CheckDNSServer, s.cfg.DNSServer, func(ctx context.Context) error {
		return s.pinger.Ping(ctx, s.cfg.DNSServer, s.cfg.AttemptTimeout)
	}))

	checks = append(checks, s.runCheck(ctx, CheckExternalHost, s.cfg.ExternalHost, func(ctx context.Context) error {
		addr, err := s.resolver.ResolveA(ctx, s.cfg.ExternalHost, s.cfg.DNSServer, s.cfg.AttemptTimeout)
		if err != nil {
			return err
		}
		return s.pinger.Ping(ctx, addr, s.cfg.AttemptTimeout)
	}))

	gateway, found, err := s.discoverer.DefaultGateway()
	if err != nil {
		s.logger.WithError(err).Warn("failed to discover default gateway, skipping gateway check")
	} else if !found {
		s.logger.Info("no default route present, skipping gateway check")
	} else {
		checks = append(checks, s.runCheck(ctx, CheckDefaultGateway, gateway, func(ctx context.Context) error {
			return s.pinger.Ping(ctx, gateway, s.cfg.AttemptTimeout)
		}))
	}

	result := entities.ProbeResult{Checks: checks}
	s.logger.WithFields(logrus.Fields{
		"score": result.Score(),
		"total": len(result.Checks),
	}).Info("connectivity probe finished")

	return result
}

// runCheck retries a single check up to the configured attempt count
func (s *Service) runCheck(ctx context.Context, name, target string, op func(context.Context) error) entities.ProbeCheck {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.Attempts; attempt++ {
		if lastErr = op(ctx); lastErr == nil {
			s.logger.WithFields(logrus.Fields{
				"check":   name,
				"target":  target,
				"attempt": attempt,
			}).Debug("probe check passed")
			return entities.ProbeCheck{Name: name, Target: target, Passed: true}
		}
	}

	s.logger.WithError(lastErr).WithFields(logrus.Fields{
		"check":  name,
		"target": target,
	}).Warn("probe check failed")
	return entities.ProbeCheck{Name: name, Target: target, Passed: false}
}
