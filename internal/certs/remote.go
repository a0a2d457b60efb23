package certs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/masterzen/winrm"
	"go.uber.org/zap"

	"github.com/winops-io/opsreport/internal/config"
)

// collectScript enumerates the remote LocalMachine\My store and emits
// one JSON array. -InputObject keeps single-element results an array,
// and round-trip date formatting survives ConvertTo-Json on PS 5.1.
const collectScript = `$certs = @(Get-ChildItem -Path Cert:\LocalMachine\My | ForEach-Object {
  [pscustomobject]@{
    Thumbprint = $_.Thumbprint
    Issuer     = $_.Issuer
    Subject    = $_.Subject
    NotBefore  = $_.NotBefore.ToString('o')
    NotAfter   = $_.NotAfter.ToString('o')
  }
})
ConvertTo-Json -InputObject $certs -Compress`

// remoteCert is the wire form produced by collectScript
type remoteCert struct {
	Thumbprint string `json:"Thumbprint"`
	Issuer     string `json:"Issuer"`
	Subject    string `json:"Subject"`
	NotBefore  string `json:"NotBefore"`
	NotAfter   string `json:"NotAfter"`
}

// WinRMCollector reads a remote host's certificate store by running the
// collection script over WinRM. Same contract as LocalStore, different
// transport.
type WinRMCollector struct {
	server string // owning host name recorded on each Record
	host   string // connection target (DNS host name)
	cfg    config.WinRMConfig
	logger *zap.Logger
}

// NewWinRMCollector creates a remote collector for one host
func NewWinRMCollector(server, host string, cfg config.WinRMConfig, logger *zap.Logger) *WinRMCollector {
	return &WinRMCollector{server: server, host: host, cfg: cfg, logger: logger}
}

var _ Collector = (*WinRMCollector)(nil)

// CollectLocalCertificates runs the collection script on the remote host
func (c *WinRMCollector) CollectLocalCertificates(ctx context.Context) ([]Record, error) {
	endpoint := winrm.NewEndpoint(c.host, c.cfg.Port, false, false, nil, nil, nil, c.cfg.Timeout)
	client, err := winrm.NewClient(endpoint, c.cfg.User, c.cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to create winrm client for %s: %w", c.host, err)
	}

	stdout, stderr, code, err := client.RunPSWithContext(ctx, collectScript)
	if err != nil {
		return nil, fmt.Errorf("remote collection on %s failed: %w", c.host, err)
	}
	if code != 0 {
		return nil, fmt.Errorf("remote collection on %s exited %d: %s", c.host, code, strings.TrimSpace(stderr))
	}

	records, err := parseRemoteOutput(stdout, c.server)
	if err != nil {
		return nil, fmt.Errorf("failed to parse collection output from %s: %w", c.host, err)
	}

	c.logger.Info("Collected remote certificates",
		zap.String("server", c.server),
		zap.Int("count", len(records)))
	return records, nil
}

// parseRemoteOutput decodes the JSON array emitted by collectScript
func parseRemoteOutput(out, server string) ([]Record, error) {
	out = strings.TrimSpace(out)
	if out == "" {
		return nil, nil
	}

	var wire []remoteCert
	if err := json.Unmarshal([]byte(out), &wire); err != nil {
		// Older hosts may still emit a bare object for one certificate
		var single remoteCert
		if err2 := json.Unmarshal([]byte(out), &single); err2 != nil {
			return nil, fmt.Errorf("unexpected collection output: %w", err)
		}
		wire = []remoteCert{single}
	}

	records := make([]Record, 0, len(wire))
	for _, w := range wire {
		notBefore, err := parseRoundTripTime(w.NotBefore)
		if err != nil {
			return nil, fmt.Errorf("certificate %s: bad NotBefore %q: %w", w.Thumbprint, w.NotBefore, err)
		}
		notAfter, err := parseRoundTripTime(w.NotAfter)
		if err != nil {
			return nil, fmt.Errorf("certificate %s: bad NotAfter %q: %w", w.Thumbprint, w.NotAfter, err)
		}
		records = append(records, Record{
			Thumbprint: w.Thumbprint,
			Issuer:     w.Issuer,
			Subject:    w.Subject,
			NotBefore:  notBefore,
			NotAfter:   notAfter,
			Server:     server,
		})
	}
	return records, nil
}

// parseRoundTripTime parses .NET round-trip ("o") formatted timestamps,
// which carry a UTC offset for Local kind and none for Unspecified
func parseRoundTripTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", s)
}
