// Package probe classifies candidate servers for certificate collection:
// one echo request, one management-port check, no retries.
package probe

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// Status is the collection route for a server
type Status int

const (
	// StatusLocal means the server is this machine; read the store directly
	StatusLocal Status = iota
	// StatusReachableManageable means ping and WinRM both answered
	StatusReachableManageable
	// StatusReachableUnmanageable means ping answered but WinRM did not
	StatusReachableUnmanageable
	// StatusUnreachable means the echo request went unanswered
	StatusUnreachable
)

func (s Status) String() string {
	switch s {
	case StatusLocal:
		return "local"
	case StatusReachableManageable:
		return "reachable"
	case StatusReachableUnmanageable:
		return "winrm-unavailable"
	case StatusUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Prober classifies hosts. The probe functions are swappable so the
// classification logic is testable without a network.
type Prober struct {
	winrmPort   int
	pingTimeout time.Duration
	dialTimeout time.Duration

	ping func(ctx context.Context, host string, timeout time.Duration) bool
	dial func(addr string, timeout time.Duration) bool
}

// New creates a Prober for the given WinRM port. pingTimeout bounds
// both probes: the echo request and the management-port dial.
func New(winrmPort int, pingTimeout time.Duration) *Prober {
	return &Prober{
		winrmPort:   winrmPort,
		pingTimeout: pingTimeout,
		dialTimeout: pingTimeout,
		ping:        pingHost,
		dial:        dialHost,
	}
}

// Classify determines the collection route for one server. Each host is
// probed at most once per run; there are no retries.
func (p *Prober) Classify(ctx context.Context, shortName, dnsName, localName string) Status {
	if strings.EqualFold(shortName, localName) {
		return StatusLocal
	}

	target := dnsName
	if target == "" {
		target = shortName
	}

	if !p.ping(ctx, target, p.pingTimeout) {
		return StatusUnreachable
	}
	if !p.dial(net.JoinHostPort(target, strconv.Itoa(p.winrmPort)), p.dialTimeout) {
		return StatusReachableUnmanageable
	}
	return StatusReachableManageable
}

// pingHost sends a single ICMP echo request and reports whether a reply
// arrived within the timeout
func pingHost(ctx context.Context, host string, timeout time.Duration) bool {
	pinger, err := probing.NewPinger(host)
	if err != nil {
		return false
	}
	pinger.Count = 1
	pinger.Timeout = timeout
	// Raw ICMP; required on Windows and for most service accounts
	pinger.SetPrivileged(true)

	if err := pinger.RunWithContext(ctx); err != nil {
		return false
	}
	return pinger.Statistics().PacketsRecv > 0
}

// dialHost checks whether the management port accepts connections
func dialHost(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
