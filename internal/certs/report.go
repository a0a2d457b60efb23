package certs

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/winops-io/opsreport/internal/report"
)

// dateLayout is the display format used for every date column
const dateLayout = "02 Jan 2006 @ 15:04"

// Filter keeps certificates whose issuer contains the configured token
// and which expire on or before the threshold cutoff. Already-expired
// certificates survive the filter.
func Filter(records []Record, issuerToken string, thresholdDays int, now time.Time) []Record {
	cutoff := now.Add(time.Duration(thresholdDays) * 24 * time.Hour)

	var kept []Record
	for _, r := range records {
		if !strings.Contains(r.Issuer, issuerToken) {
			continue
		}
		if r.NotAfter.After(cutoff) {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// BuildFragment reshapes, sorts and renders the filtered certificates
func BuildFragment(records []Record, now time.Time) report.Fragment {
	type entry struct {
		server, issuerCN, thumbprint, notBefore, notAfter, expires string
	}

	entries := make([]entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, entry{
			server:     ShortServerName(r.Server),
			issuerCN:   IssuerCN(r.Issuer),
			thumbprint: r.Thumbprint,
			notBefore:  r.NotBefore.Format(dateLayout),
			notAfter:   r.NotAfter.Format(dateLayout),
			expires:    countdown(now, r.NotAfter),
		})
	}

	// Sorts on the formatted date string, not the timestamp. With the
	// current layout that is not a chronological order; kept as-is for
	// parity with the report this replaces.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].notAfter != entries[j].notAfter {
			return entries[i].notAfter < entries[j].notAfter
		}
		if entries[i].server != entries[j].server {
			return entries[i].server < entries[j].server
		}
		return entries[i].thumbprint < entries[j].thumbprint
	})

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.server, e.issuerCN, e.thumbprint, e.notBefore, e.notAfter, e.expires,
		})
	}

	return report.Fragment{
		Heading: fmt.Sprintf("%d Certificates Expiring Soon", len(entries)),
		Headers: []string{"Server", "Issuer", "Thumbprint", "Valid From", "Expires", "Time Left"},
		Rows:    rows,
	}
}

// ShortServerName strips any domain suffix from a host name and
// uppercases the remainder
func ShortServerName(name string) string {
	short, _, _ := strings.Cut(name, ".")
	return strings.ToUpper(short)
}

// IssuerCN extracts the value of the first RDN of an issuer DN,
// e.g. "CN=Acme Corp CA, O=Acme" -> "Acme Corp CA". A DN without an
// attribute separator is returned trimmed.
func IssuerCN(dn string) string {
	first, _, _ := strings.Cut(dn, ",")
	if _, value, found := strings.Cut(first, "="); found {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(first)
}

// countdown renders the whole days between now and expiry, truncated
// toward zero; negative once the certificate has expired
func countdown(now, notAfter time.Time) string {
	days := int(notAfter.Sub(now).Hours() / 24)
	return fmt.Sprintf("%d days", days)
}
