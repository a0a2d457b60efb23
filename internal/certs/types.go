// Package certs collects local-machine personal certificate store
// contents from servers and renders the expiry report.
package certs

import (
	"context"
	"time"
)

// Record is one certificate from a server's LocalMachine\My store
type Record struct {
	Thumbprint string
	Issuer     string // full issuer distinguished name
	Subject    string
	NotBefore  time.Time
	NotAfter   time.Time
	DNSNames   []string // populated by local collection only; unused by the report
	Server     string   // owning host as recorded in the directory
}

// Collector reads one host's certificate store. The contract is the
// same whether the store is read in-process (local machine) or through
// a remote-execution channel (WinRM); only the transport differs.
type Collector interface {
	CollectLocalCertificates(ctx context.Context) ([]Record, error)
}

// Platform-specific local store implementations:
// - Windows: internal/certs/store_windows.go
// - Stub:    internal/certs/store_stub.go (all other platforms)
