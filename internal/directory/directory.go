// Package directory enumerates domain-joined computers from Active
// Directory and narrows them to server-class machines.
package directory

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-ldap/ldap/v3"
	"go.uber.org/zap"

	"github.com/winops-io/opsreport/internal/config"
)

// Computer is one computer object from the directory
type Computer struct {
	Name            string // SAM-style short name
	DNSHostName     string
	OperatingSystem string
	DN              string
}

// Searcher enumerates computer objects. The LDAP implementation talks to
// a domain controller; tests substitute fixtures.
type Searcher interface {
	Computers(ctx context.Context) ([]Computer, error)
}

// LDAPSearcher queries a domain controller over LDAP
type LDAPSearcher struct {
	cfg    config.LDAPConfig
	logger *zap.Logger
}

// NewLDAPSearcher creates a directory searcher for the configured domain
func NewLDAPSearcher(cfg config.LDAPConfig, logger *zap.Logger) *LDAPSearcher {
	return &LDAPSearcher{cfg: cfg, logger: logger}
}

var _ Searcher = (*LDAPSearcher)(nil)

// Computers fetches every computer object under the base DN with the
// attributes the certificate pipeline needs. A directory failure aborts
// the run: without the inventory there is nothing to report on.
func (s *LDAPSearcher) Computers(ctx context.Context) ([]Computer, error) {
	conn, err := ldap.DialURL(s.cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to directory %s: %w", s.cfg.Address, err)
	}
	defer conn.Close()

	if s.cfg.BindDN != "" {
		if err := conn.Bind(s.cfg.BindDN, s.cfg.BindPassword); err != nil {
			return nil, fmt.Errorf("failed to bind as %s: %w", s.cfg.BindDN, err)
		}
	}

	req := ldap.NewSearchRequest(
		s.cfg.BaseDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
		"(objectCategory=computer)",
		[]string{"name", "dNSHostName", "operatingSystem", "distinguishedName"},
		nil,
	)

	res, err := conn.SearchWithPaging(req, 500)
	if err != nil {
		return nil, fmt.Errorf("computer search failed: %w", err)
	}

	computers := make([]Computer, 0, len(res.Entries))
	for _, e := range res.Entries {
		computers = append(computers, Computer{
			Name:            e.GetAttributeValue("name"),
			DNSHostName:     e.GetAttributeValue("dNSHostName"),
			OperatingSystem: e.GetAttributeValue("operatingSystem"),
			DN:              e.DN,
		})
	}

	s.logger.Info("Enumerated directory computers", zap.Int("count", len(computers)))
	return computers, nil
}

// serverOU matches computer objects parked in the server or domain
// controller organizational units
var serverOU = regexp.MustCompile(`(?i)OU=(Servers|Domain Controllers)`)

// FilterServers keeps computers whose DN sits in a server OU or whose
// recorded operating system mentions Server. Substring match, not exact:
// "Windows Server 2022 Standard" and bare "Server" both qualify.
func FilterServers(computers []Computer) []Computer {
	var servers []Computer
	for _, c := range computers {
		if serverOU.MatchString(c.DN) ||
			strings.Contains(strings.ToLower(c.OperatingSystem), "server") {
			servers = append(servers, c)
		}
	}
	return servers
}
