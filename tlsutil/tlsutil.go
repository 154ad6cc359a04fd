// Package tlsutil builds tls.Config values for clients connecting to
// TLS-enabled endpoints. All configurations require TLS 1.2 or newer.
package tlsutil

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// Default returns a config that verifies server certificates against
// the system root pool.
func Default() *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
	}
}

// WithCertFile returns a config that verifies server certificates
// against the PEM bundle at path instead of the system roots.
func WithCertFile(path string) (*tls.Config, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("batchwrite/tlsutil: read cert file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("batchwrite/tlsutil: no certificates found in %s", path)
	}
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		RootCAs:    pool,
	}, nil
}

// Insecure returns a config that skips server certificate
// verification. Intended for local development only.
func Insecure() *tls.Config {
	return &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: true,
	}
}
