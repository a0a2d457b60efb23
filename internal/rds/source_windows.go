//go:build windows

package rds

import (
	"context"
	"fmt"
	"time"

	"github.com/yusufpapurcu/wmi"
	"go.uber.org/zap"
)

// win32TSLicenseKeyPack mirrors the WMI class of the same name.
// Field names must match the WMI property names for the decoder.
type win32TSLicenseKeyPack struct {
	KeyPackId         uint32
	ProductVersion    string
	TypeAndModel      uint32
	TotalLicenses     uint32
	IssuedLicenses    uint32
	AvailableLicenses uint32
	ExpirationDate    time.Time
}

// win32TSIssuedLicense mirrors the WMI class of the same name.
// WQL and OLE property lookup are case-insensitive, so SIssuedToUser
// resolves the sIssuedToUser property.
type win32TSIssuedLicense struct {
	SIssuedToUser  string
	KeyPackId      uint32
	IssueDate      time.Time
	ExpirationDate time.Time
}

// WMISource queries the RDS licensing WMI classes, either in the local
// namespace or on a remote license server.
type WMISource struct {
	server string // remote license server; empty queries locally
	logger *zap.Logger
}

// NewSource creates the WMI-backed license source. An empty server
// queries the local machine's WMI namespace.
func NewSource(server string, logger *zap.Logger) *WMISource {
	return &WMISource{server: server, logger: logger}
}

var _ LicenseSource = (*WMISource)(nil)

// query runs one WQL query, connecting to the configured license server
// when one is set
func (s *WMISource) query(q string, dst interface{}) error {
	if s.server != "" {
		return wmi.Query(q, dst, s.server)
	}
	return wmi.Query(q, dst)
}

// KeyPacks enumerates all installed license keypacks.
// A query failure aborts the run: without keypacks there is no report.
func (s *WMISource) KeyPacks(_ context.Context) ([]KeyPack, error) {
	var dst []win32TSLicenseKeyPack
	q := wmi.CreateQuery(&dst, "", "Win32_TSLicenseKeyPack")
	if err := s.query(q, &dst); err != nil {
		return nil, fmt.Errorf("failed to query Win32_TSLicenseKeyPack: %w", err)
	}

	packs := make([]KeyPack, 0, len(dst))
	for _, p := range dst {
		packs = append(packs, KeyPack{
			KeyPackID:         int(p.KeyPackId),
			ProductVersion:    p.ProductVersion,
			TypeAndModel:      typeAndModelName(p.TypeAndModel),
			TotalLicenses:     int(p.TotalLicenses),
			IssuedCount:       int(p.IssuedLicenses),
			AvailableLicenses: int(p.AvailableLicenses),
			ExpirationDate:    p.ExpirationDate,
		})
	}

	s.logger.Info("Collected license keypacks", zap.Int("count", len(packs)))
	return packs, nil
}

// IssuedLicenses enumerates all licenses issued from any keypack
func (s *WMISource) IssuedLicenses(_ context.Context) ([]IssuedLicense, error) {
	var dst []win32TSIssuedLicense
	q := wmi.CreateQuery(&dst, "", "Win32_TSIssuedLicense")
	if err := s.query(q, &dst); err != nil {
		return nil, fmt.Errorf("failed to query Win32_TSIssuedLicense: %w", err)
	}

	licenses := make([]IssuedLicense, 0, len(dst))
	for _, l := range dst {
		licenses = append(licenses, IssuedLicense{
			IssuedTo:       l.SIssuedToUser,
			KeyPackID:      int(l.KeyPackId),
			IssueDate:      l.IssueDate,
			ExpirationDate: l.ExpirationDate,
		})
	}

	s.logger.Info("Collected issued licenses", zap.Int("count", len(licenses)))
	return licenses, nil
}

// typeAndModelName maps the TypeAndModel enumeration to the display
// strings the license manager console shows
func typeAndModelName(v uint32) string {
	switch v {
	case 0:
		return "RDS Per Device CAL"
	case 1:
		return "RDS Per User CAL"
	case 2:
		return "RDS Built-in"
	case 4:
		return "TS Per Device CAL"
	case 5:
		return "TS Per User CAL"
	default:
		return fmt.Sprintf("Unknown (%d)", v)
	}
}
