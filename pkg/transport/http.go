package transport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/net/http2"
)

// DefaultTimeout is the request timeout used by BuildHTTPClient.
const DefaultTimeout = 30 * time.Second

// ClientOptions configures BuildHTTPClient.
type ClientOptions struct {
	// Timeout bounds a whole request including the body read.
	Timeout time.Duration

	// CAFile is an optional PEM bundle used instead of the system roots.
	// Blue Iris installs commonly use self-signed certificates.
	CAFile string

	// InsecureSkipVerify disables certificate verification.
	InsecureSkipVerify bool

	// DisableHTTP2 keeps the client on HTTP/1.1 for https endpoints.
	DisableHTTP2 bool
}

// BuildHTTPClient creates an HTTP client suitable for the JSON API.
// Plain http endpoints use HTTP/1.1; https endpoints negotiate HTTP/2 via
// ALPN unless disabled.
func BuildHTTPClient(opts ClientOptions) (*http.Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: opts.InsecureSkipVerify, //nolint:gosec // explicit opt-in for self-signed servers
	}
	if opts.CAFile != "" {
		pem, err := os.ReadFile(opts.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA bundle: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("failed to parse CA bundle %s", opts.CAFile)
		}
		tlsConfig.RootCAs = pool
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:     tlsConfig,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	if !opts.DisableHTTP2 {
		if err := http2.ConfigureTransport(tr); err != nil {
			return nil, fmt.Errorf("failed to enable HTTP/2: %w", err)
		}
	}

	return &http.Client{
		Transport: tr,
		Timeout:   opts.Timeout,
	}, nil
}
