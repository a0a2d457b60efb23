// Package rds acquires and renders Remote Desktop licensing data from
// the local license server's WMI namespace.
package rds

import (
	"context"
	"time"
)

// KeyPack is one installed RDS license keypack
// Source: Win32_TSLicenseKeyPack
type KeyPack struct {
	KeyPackID         int
	ProductVersion    string
	TypeAndModel      string
	TotalLicenses     int
	IssuedCount       int
	AvailableLicenses int
	ExpirationDate    time.Time
}

// IssuedLicense is a single license grant from a keypack to a named user
// Source: Win32_TSIssuedLicense
type IssuedLicense struct {
	IssuedTo       string // DOMAIN\user as recorded by the license server
	KeyPackID      int
	IssueDate      time.Time
	ExpirationDate time.Time
}

// LicenseSource enumerates keypacks and issued licenses. The Windows
// implementation queries WMI; tests substitute fixtures.
type LicenseSource interface {
	KeyPacks(ctx context.Context) ([]KeyPack, error)
	IssuedLicenses(ctx context.Context) ([]IssuedLicense, error)
}

// Platform-specific implementations:
// - Windows: internal/rds/source_windows.go
// - Stub:    internal/rds/source_stub.go (all other platforms)
