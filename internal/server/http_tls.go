package server

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"resumediff/internal/config"
)

// buildTLSConfig creates the TLS configuration serving certificates from certs
func buildTLSConfig(cfg config.TLSConfig, certs *CertReloader) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion:     tlsVersion(cfg.MinVersion),
		GetCertificate: certs.GetCertificate,
	}

	cipherSuites, err := cipherSuiteIDs(cfg.CipherSuites)
	if err != nil {
		return nil, err
	}
	tlsConfig.CipherSuites = cipherSuites

	if cfg.Mode != "mutual" {
		tlsConfig.ClientAuth = tls.NoClientCert
		return tlsConfig, nil
	}

	caCertPool, err := loadCACertificatePool(cfg)
	if err != nil {
		return nil, err
	}
	tlsConfig.ClientCAs = caCertPool
	tlsConfig.ClientAuth = clientAuthPolicy(cfg.ClientAuthPolicy)

	return tlsConfig, nil
}

func tlsVersion(v string) uint16 {
	if v == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}

// cipherSuiteIDs resolves cipher suite names against the secure suites
// known to crypto/tls. An empty list keeps the Go defaults.
func cipherSuiteIDs(names []string) ([]uint16, error) {
	if len(names) == 0 {
		return nil, nil
	}

	known := make(map[string]uint16)
	for _, suite := range tls.CipherSuites() {
		known[suite.Name] = suite.ID
	}

	ids := make([]uint16, 0, len(names))
	for _, name := range names {
		id, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("unsupported TLS cipher suite: %s", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// loadCACertificatePool loads the CA certificate pool for client verification
func loadCACertificatePool(cfg config.TLSConfig) (*x509.CertPool, error) {
	caCert := []byte(cfg.CAContent)
	if cfg.CAContent == "" {
		if cfg.CAFile == "" {
			return nil, fmt.Errorf("CA certificate is required for mutual TLS mode (provide either caFile or caContent)")
		}
		var err error
		caCert, err = os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
	}

	caCertPool := x509.NewCertPool()
	if ok := caCertPool.AppendCertsFromPEM(caCert); !ok {
		return nil, fmt.Errorf("failed to append CA cert")
	}
	return caCertPool, nil
}

func clientAuthPolicy(policy string) tls.ClientAuthType {
	switch policy {
	case "request":
		return tls.RequestClientCert
	case "verify":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert
	}
}
