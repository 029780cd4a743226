// internal/common/http/client.go
package http

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"
)

// TLSOptions controls certificate validation for outbound calls.
// Validation is on unless SkipVerify is set.
type TLSOptions struct {
	SkipVerify bool
	CACertFile string
}

// NewTransport returns an http.Transport with bounded dial and header timeouts
// and the requested TLS trust settings.
func NewTransport(responseHeaderTimeout time.Duration, opts TLSOptions) (*http.Transport, error) {
	tlsConfig, err := BuildTLSConfig(opts)
	if err != nil {
		return nil, err
	}

	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: responseHeaderTimeout,
		TLSClientConfig:       tlsConfig,
	}, nil
}

// BuildTLSConfig returns the client TLS configuration for opts.
func BuildTLSConfig(opts TLSOptions) (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: opts.SkipVerify, //nolint:gosec // opt-in via datastore.tls_skip_verify
	}

	if opts.CACertFile == "" {
		return cfg, nil
	}

	pem, err := os.ReadFile(opts.CACertFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate %s: %w", opts.CACertFile, err)
	}

	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", opts.CACertFile)
	}
	cfg.RootCAs = pool

	return cfg, nil
}
