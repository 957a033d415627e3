// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

package testhelpers

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// PKI is a throwaway certificate hierarchy: one CA signing a client and a server certificate.
type PKI struct {
	CA    *x509.Certificate
	CAKey crypto.Signer
	CAPEM []byte

	Client          *x509.Certificate
	ClientKey       crypto.Signer
	ClientCertPEM   []byte
	ClientKeyPEM    []byte
	ClientBundlePEM []byte

	Server        *x509.Certificate
	ServerTLSCert tls.Certificate
}

// Files are the on-disk locations written by WriteFiles.
type Files struct {
	Dir          string
	CA           string
	ClientCert   string
	ClientKey    string
	ClientBundle string
	Invalid      string
}

var (
	sharedOnce sync.Once
	sharedPKI  *PKI
	sharedErr  error
)

// SharedPKI returns a PKI generated once per test binary. RSA generation is
// slow enough that most tests should reuse it.
func SharedPKI(t testing.TB) *PKI {
	t.Helper()
	sharedOnce.Do(func() { sharedPKI, sharedErr = generatePKI("tlsfetch test CA") })
	if sharedErr != nil {
		t.Fatalf("generate shared PKI: %v", sharedErr)
	}
	return sharedPKI
}

// NewPKI returns a freshly generated, independent PKI.
func NewPKI(t testing.TB, caName string) *PKI {
	t.Helper()
	p, err := generatePKI(caName)
	if err != nil {
		t.Fatalf("generate PKI: %v", err)
	}
	return p
}

// WriteFiles writes the fixture files into dir (a new temp dir when dir is empty).
func (p *PKI) WriteFiles(t testing.TB, dir string) Files {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	f := Files{
		Dir:          dir,
		CA:           filepath.Join(dir, CAFile),
		ClientCert:   filepath.Join(dir, ClientCertFile),
		ClientKey:    filepath.Join(dir, ClientKeyFile),
		ClientBundle: filepath.Join(dir, ClientBundleFile),
		Invalid:      filepath.Join(dir, InvalidFile),
	}
	for name, data := range map[string][]byte{
		f.CA:           p.CAPEM,
		f.ClientCert:   p.ClientCertPEM,
		f.ClientKey:    p.ClientKeyPEM,
		f.ClientBundle: p.ClientBundlePEM,
		f.Invalid:      {0x00, 0x01, 0xfe, 0xff, 'n', 'o', 't', ' ', 'p', 'e', 'm'},
	} {
		if err := os.WriteFile(name, data, 0o600); err != nil {
			t.Fatalf("write fixture %s: %v", name, err)
		}
	}
	return f
}

// ClientPool returns a pool holding only the CA, for servers verifying clients.
func (p *PKI) ClientPool() *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AddCert(p.CA)
	return pool
}

func generatePKI(caName string) (*PKI, error) {
	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	caTmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: caName},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	ca, caDER, err := sign(caTmpl, caTmpl, caKey.Public(), caKey)
	if err != nil {
		return nil, err
	}

	// The client key is RSA PKCS#1 like most combined bundles in the wild.
	clientKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	client, clientDER, err := sign(&x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: "tlsfetch client"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}, ca, clientKey.Public(), caKey)
	if err != nil {
		return nil, err
	}

	serverKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	server, serverDER, err := sign(&x509.Certificate{
		SerialNumber: big.NewInt(3),
		Subject:      pkix.Name{CommonName: ServerName},
		DNSNames:     []string{ServerName},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1"), net.IPv6loopback},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}, ca, serverKey.Public(), caKey)
	if err != nil {
		return nil, err
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: clientDER})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(clientKey)})
	bundle := append(append([]byte{}, certPEM...), keyPEM...)

	return &PKI{
		CA:              ca,
		CAKey:           caKey,
		CAPEM:           pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: caDER}),
		Client:          client,
		ClientKey:       clientKey,
		ClientCertPEM:   certPEM,
		ClientKeyPEM:    keyPEM,
		ClientBundlePEM: bundle,
		Server:          server,
		ServerTLSCert: tls.Certificate{
			Certificate: [][]byte{serverDER},
			PrivateKey:  serverKey,
			Leaf:        server,
		},
	}, nil
}

func sign(tmpl, parent *x509.Certificate, pub crypto.PublicKey, signer crypto.Signer) (*x509.Certificate, []byte, error) {
	der, err := x509.CreateCertificate(rand.Reader, tmpl, parent, pub, signer)
	if err != nil {
		return nil, nil, err
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, nil, err
	}
	return cert, der, nil
}
