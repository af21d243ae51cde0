// Package smquictest contains TLS fixtures for exercising smquic over loopback.
package smquictest

import (
	"bytes"
	"crypto/ed25519"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"testing"
	"time"
)

// Fixture holds a throwaway CA and a leaf certificate signed by it.
// The leaf is valid for "localhost" and 127.0.0.1.
type Fixture struct {
	CACertPEM []byte

	CertPEM []byte
	KeyPEM  []byte

	// Server presents the leaf certificate.
	Server *tls.Config

	// Client trusts only the fixture's CA.
	Client *tls.Config
}

// NewFixture generates a new ed25519 CA and leaf certificate,
// failing t on any error.
func NewFixture(t testing.TB) Fixture {
	t.Helper()

	f, err := GenerateFixture(time.Hour)
	if err != nil {
		t.Fatalf("failed to generate TLS fixture: %v", err)
	}
	return f
}

// GenerateFixture generates a CA and leaf certificate valid for validFor.
func GenerateFixture(validFor time.Duration) (Fixture, error) {
	caPub, caPriv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return Fixture{}, fmt.Errorf("failed to generate CA key: %w", err)
	}

	caTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			Organization: []string{"sortmerkle test CA"},
			CommonName:   "sortmerkle test CA root",
		},
		NotBefore: time.Now().Add(-15 * time.Second),
		NotAfter:  time.Now().Add(validFor),

		KeyUsage: x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage: []x509.ExtKeyUsage{
			x509.ExtKeyUsageServerAuth,
			x509.ExtKeyUsageClientAuth,
		},
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLen:            1,
	}

	caDER, err := x509.CreateCertificate(nil, caTemplate, caTemplate, caPub, caPriv)
	if err != nil {
		return Fixture{}, fmt.Errorf("failed to create CA certificate: %w", err)
	}
	caCert, err := x509.ParseCertificate(caDER)
	if err != nil {
		return Fixture{}, fmt.Errorf("failed to parse CA certificate from DER: %w", err)
	}

	leafPub, leafPriv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return Fixture{}, fmt.Errorf("failed to generate leaf key: %w", err)
	}

	leafTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject: pkix.Name{
			Organization: []string{"sortmerkle test leaf"},
			CommonName:   "localhost",
		},
		NotBefore: time.Now().Add(-15 * time.Second),
		NotAfter:  time.Now().Add(validFor),
		KeyUsage:  x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{
			x509.ExtKeyUsageServerAuth,
			x509.ExtKeyUsageClientAuth,
		},
		DNSNames: []string{"localhost"},

		// Without an IP SAN, dialing 127.0.0.1 fails verification.
		IPAddresses: []net.IP{net.IPv4(127, 0, 0, 1)},

		BasicConstraintsValid: true,
	}

	leafDER, err := x509.CreateCertificate(nil, leafTemplate, caCert, leafPub, caPriv)
	if err != nil {
		return Fixture{}, fmt.Errorf("failed to create leaf certificate: %w", err)
	}

	keyDER, err := x509.MarshalPKCS8PrivateKey(leafPriv)
	if err != nil {
		return Fixture{}, fmt.Errorf("failed to marshal leaf key: %w", err)
	}

	f := Fixture{
		CACertPEM: encodePEM("CERTIFICATE", caDER),
		CertPEM:   encodePEM("CERTIFICATE", leafDER),
		KeyPEM:    encodePEM("PRIVATE KEY", keyDER),
	}

	leaf, err := tls.X509KeyPair(f.CertPEM, f.KeyPEM)
	if err != nil {
		return Fixture{}, fmt.Errorf("failed to load leaf key pair: %w", err)
	}

	pool := x509.NewCertPool()
	pool.AddCert(caCert)

	f.Server = &tls.Config{
		Certificates: []tls.Certificate{leaf},
		MinVersion:   tls.VersionTLS13,
	}
	f.Client = &tls.Config{
		RootCAs:    pool,
		ServerName: "localhost",
		MinVersion: tls.VersionTLS13,
	}

	return f, nil
}

func encodePEM(typ string, der []byte) []byte {
	var buf bytes.Buffer
	if err := pem.Encode(&buf, &pem.Block{Type: typ, Bytes: der}); err != nil {
		panic(fmt.Errorf("BUG: failed to encode PEM block: %w", err))
	}
	return buf.Bytes()
}
