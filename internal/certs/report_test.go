package certs

import (
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2026, time.August, 25, 12, 0, 0, 0, time.UTC)

// TestFilter tests the issuer-token and threshold cutoff invariants
func TestFilter(t *testing.T) {
	records := []Record{
		{
			Thumbprint: "AAAA",
			Issuer:     "CN=Acme Corp CA, O=Acme",
			NotAfter:   testNow.Add(10 * 24 * time.Hour),
		},
		{
			Thumbprint: "BBBB",
			Issuer:     "CN=Other CA",
			NotAfter:   testNow.Add(10 * 24 * time.Hour), // wrong issuer
		},
		{
			Thumbprint: "CCCC",
			Issuer:     "CN=Acme Corp CA, O=Acme",
			NotAfter:   testNow.Add(91 * 24 * time.Hour), // beyond threshold
		},
		{
			Thumbprint: "DDDD",
			Issuer:     "CN=Acme Corp CA, O=Acme",
			NotAfter:   testNow.Add(-3 * 24 * time.Hour), // already expired
		},
		{
			Thumbprint: "EEEE",
			Issuer:     "CN=Acme Corp CA, O=Acme",
			NotAfter:   testNow.Add(90 * 24 * time.Hour), // exactly on the cutoff
		},
	}

	kept := Filter(records, "Acme Corp CA", 90, testNow)

	want := map[string]bool{"AAAA": true, "DDDD": true, "EEEE": true}
	if len(kept) != len(want) {
		t.Fatalf("Filter() kept %d records, want %d", len(kept), len(want))
	}
	cutoff := testNow.Add(90 * 24 * time.Hour)
	for _, r := range kept {
		if !want[r.Thumbprint] {
			t.Errorf("unexpected record %s in result", r.Thumbprint)
		}
		// Every output row must satisfy both filter conditions
		if !strings.Contains(r.Issuer, "Acme Corp CA") {
			t.Errorf("record %s issuer %q missing token", r.Thumbprint, r.Issuer)
		}
		if r.NotAfter.After(cutoff) {
			t.Errorf("record %s expires after cutoff", r.Thumbprint)
		}
	}
}

// TestCountdown tests whole-day truncation including negative values
func TestCountdown(t *testing.T) {
	tests := []struct {
		name     string
		notAfter time.Time
		want     string
	}{
		{
			name:     "exactly ten days out",
			notAfter: testNow.Add(10 * 24 * time.Hour),
			want:     "10 days",
		},
		{
			name:     "expired three days ago",
			notAfter: testNow.Add(-3 * 24 * time.Hour),
			want:     "-3 days",
		},
		{
			name:     "partial days truncate",
			notAfter: testNow.Add(10*24*time.Hour + 23*time.Hour),
			want:     "10 days",
		},
		{
			name:     "expiring today",
			notAfter: testNow.Add(6 * time.Hour),
			want:     "0 days",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countdown(testNow, tt.notAfter); got != tt.want {
				t.Errorf("countdown() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestBuildFragmentSort pins the formatted-string sort order: day-first
// formatting means "01 Sep" sorts before "02 Aug" even though it is
// chronologically later
func TestBuildFragmentSort(t *testing.T) {
	records := []Record{
		{
			Server:     "web02.example.com",
			Issuer:     "CN=Acme Corp CA",
			Thumbprint: "BBBB",
			NotAfter:   time.Date(2026, time.August, 2, 9, 0, 0, 0, time.UTC),
		},
		{
			Server:     "web01.example.com",
			Issuer:     "CN=Acme Corp CA",
			Thumbprint: "AAAA",
			NotAfter:   time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC),
		},
	}

	f := BuildFragment(records, testNow)

	if f.Rows[0][4] != "01 Sep 2026 @ 09:00" {
		t.Errorf("first row expires = %q, want the lexically-smaller 01 Sep date", f.Rows[0][4])
	}
	if f.Rows[1][4] != "02 Aug 2026 @ 09:00" {
		t.Errorf("second row expires = %q", f.Rows[1][4])
	}
}

// TestBuildFragmentTies tests deterministic ordering of equal dates
func TestBuildFragmentTies(t *testing.T) {
	expiry := time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)
	records := []Record{
		{Server: "web02", Thumbprint: "BBBB", Issuer: "CN=CA", NotAfter: expiry},
		{Server: "web01", Thumbprint: "CCCC", Issuer: "CN=CA", NotAfter: expiry},
		{Server: "web01", Thumbprint: "AAAA", Issuer: "CN=CA", NotAfter: expiry},
	}

	f := BuildFragment(records, testNow)

	got := []string{f.Rows[0][0] + "/" + f.Rows[0][2], f.Rows[1][0] + "/" + f.Rows[1][2], f.Rows[2][0] + "/" + f.Rows[2][2]}
	want := []string{"WEB01/AAAA", "WEB01/CCCC", "WEB02/BBBB"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %q, want %q", i, got[i], want[i])
		}
	}
}

// TestBuildFragmentHeading tests the count heading
func TestBuildFragmentHeading(t *testing.T) {
	f := BuildFragment(nil, testNow)
	if f.Heading != "0 Certificates Expiring Soon" {
		t.Errorf("Heading = %q", f.Heading)
	}
}

// TestShortServerName tests domain stripping and uppercasing
func TestShortServerName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"web01.example.com", "WEB01"},
		{"web01", "WEB01"},
		{"Dc01.corp.example.com", "DC01"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ShortServerName(tt.in); got != tt.want {
			t.Errorf("ShortServerName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestIssuerCN tests first-RDN extraction
func TestIssuerCN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"CN=Acme Corp CA, O=Acme, C=GB", "Acme Corp CA"},
		{"CN=Acme Corp CA,O=Acme", "Acme Corp CA"},
		{"CN=Solo", "Solo"},
		{"no-separator", "no-separator"},
	}
	for _, tt := range tests {
		if got := IssuerCN(tt.in); got != tt.want {
			t.Errorf("IssuerCN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
