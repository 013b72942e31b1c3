package httpclient

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"strconv"
)

// Environment variables read by TLSConfigFromEnv.
const (
	EnvCACert             = "INTERPRETER_CA_CERT"
	EnvInsecureSkipVerify = "INTERPRETER_INSECURE_SKIP_VERIFY"
)

// TLSConfig holds TLS configuration options
type TLSConfig struct {
	InsecureSkipVerify bool   // Skip TLS certificate verification (dev/test only)
	CACertificate      string // Path to custom CA certificate file
}

// TLSConfigFromEnv returns the TLS settings from the environment, or nil when
// none are set.
func TLSConfigFromEnv() *TLSConfig {
	cfg := &TLSConfig{CACertificate: os.Getenv(EnvCACert)}
	cfg.InsecureSkipVerify, _ = strconv.ParseBool(os.Getenv(EnvInsecureSkipVerify))
	if cfg.CACertificate == "" && !cfg.InsecureSkipVerify {
		return nil
	}
	return cfg
}

// ConfigureTLS creates an http.Transport with TLS configuration
func ConfigureTLS(config *TLSConfig) (*http.Transport, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}

	if config == nil {
		return transport, nil
	}

	if config.CACertificate != "" {
		caCert, err := os.ReadFile(config.CACertificate)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate from %s: %w", config.CACertificate, err)
		}

		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate from %s", config.CACertificate)
		}
		transport.TLSClientConfig.RootCAs = caCertPool
	}

	transport.TLSClientConfig.InsecureSkipVerify = config.InsecureSkipVerify
	return transport, nil
}
