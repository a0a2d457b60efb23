package rds

import (
	"testing"

	"go.uber.org/zap"
)

// TestNewSourceLicenseServer tests that the configured license server is
// carried into the source; empty keeps queries on the local namespace
func TestNewSourceLicenseServer(t *testing.T) {
	logger := zap.NewNop()

	if s := NewSource("licsrv01.example.com", logger); s.server != "licsrv01.example.com" {
		t.Errorf("server = %q, want licsrv01.example.com", s.server)
	}
	if s := NewSource("", logger); s.server != "" {
		t.Errorf("server = %q, want empty for local queries", s.server)
	}
}
