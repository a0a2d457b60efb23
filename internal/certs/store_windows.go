//go:build windows

package certs

import (
	"context"
	"crypto/sha1"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"syscall"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

const (
	certStoreProvSystem         = 10 // CERT_STORE_PROV_SYSTEM
	certSystemStoreLocalMachine = 0x00020000
	certStoreReadOnly           = 0x00008000
	certStoreOpenExisting       = 0x00004000
)

// LocalStore reads the LocalMachine\My store of this machine via crypt32
type LocalStore struct {
	server string // owning host name recorded on each Record
	logger *zap.Logger
}

// NewLocalStore creates the in-process store reader
func NewLocalStore(server string, logger *zap.Logger) *LocalStore {
	return &LocalStore{server: server, logger: logger}
}

var _ Collector = (*LocalStore)(nil)

// CollectLocalCertificates enumerates every certificate in the local
// machine's personal store
func (s *LocalStore) CollectLocalCertificates(_ context.Context) ([]Record, error) {
	name, err := windows.UTF16PtrFromString("MY")
	if err != nil {
		return nil, fmt.Errorf("failed to encode store name: %w", err)
	}

	store, err := windows.CertOpenStore(
		certStoreProvSystem,
		0, 0,
		certSystemStoreLocalMachine|certStoreReadOnly|certStoreOpenExisting,
		uintptr(unsafe.Pointer(name)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open LocalMachine\\My store: %w", err)
	}
	defer windows.CertCloseStore(store, 0)

	var records []Record
	var certCtx *windows.CertContext
	for {
		certCtx, err = windows.CertEnumCertificatesInStore(store, certCtx)
		if err != nil {
			if isEndOfStore(err) {
				break
			}
			return nil, fmt.Errorf("certificate enumeration failed: %w", err)
		}
		if certCtx == nil {
			break
		}

		// Copy the DER bytes out of the context before parsing
		der := make([]byte, certCtx.Length)
		copy(der, unsafe.Slice(certCtx.EncodedCert, certCtx.Length))

		cert, parseErr := x509.ParseCertificate(der)
		if parseErr != nil {
			s.logger.Warn("Skipping unparseable certificate", zap.Error(parseErr))
			continue
		}

		sum := sha1.Sum(der)
		records = append(records, Record{
			Thumbprint: strings.ToUpper(hex.EncodeToString(sum[:])),
			Issuer:     cert.Issuer.String(),
			Subject:    cert.Subject.String(),
			NotBefore:  cert.NotBefore,
			NotAfter:   cert.NotAfter,
			DNSNames:   cert.DNSNames,
			Server:     s.server,
		})
	}

	s.logger.Info("Collected local certificates",
		zap.String("server", s.server),
		zap.Int("count", len(records)))
	return records, nil
}

// isEndOfStore reports whether an enumeration error is the normal
// CRYPT_E_NOT_FOUND end-of-store marker rather than a real failure
func isEndOfStore(err error) bool {
	var errno syscall.Errno
	return errors.As(err, &errno) && errno == syscall.Errno(windows.CRYPT_E_NOT_FOUND)
}
