//go:build !windows

package certs

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
)

// LocalStore is a stub for non-Windows platforms. The local-machine
// certificate store is a Windows concept.
type LocalStore struct {
	server string
	logger *zap.Logger
}

// NewLocalStore creates the stub store reader
func NewLocalStore(server string, logger *zap.Logger) *LocalStore {
	return &LocalStore{server: server, logger: logger}
}

var _ Collector = (*LocalStore)(nil)

// CollectLocalCertificates is not supported off Windows
func (s *LocalStore) CollectLocalCertificates(_ context.Context) ([]Record, error) {
	return nil, fmt.Errorf("local certificate store not supported on platform: %s", runtime.GOOS)
}
