//go:build !windows

package rds

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
)

// WMISource is a stub for non-Windows platforms. RDS licensing data only
// exists in the Windows WMI namespace.
type WMISource struct {
	server string
	logger *zap.Logger
}

// NewSource creates the stub license source
func NewSource(server string, logger *zap.Logger) *WMISource {
	return &WMISource{server: server, logger: logger}
}

var _ LicenseSource = (*WMISource)(nil)

// KeyPacks is not supported off Windows
func (s *WMISource) KeyPacks(_ context.Context) ([]KeyPack, error) {
	return nil, fmt.Errorf("RDS license queries not supported on platform: %s", runtime.GOOS)
}

// IssuedLicenses is not supported off Windows
func (s *WMISource) IssuedLicenses(_ context.Context) ([]IssuedLicense, error) {
	return nil, fmt.Errorf("RDS license queries not supported on platform: %s", runtime.GOOS)
}
