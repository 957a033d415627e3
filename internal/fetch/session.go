// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

package fetch

import (
	"crypto"
	"crypto/tls"
	"crypto/x509"
	"net/http"

	"github.com/devops-wiz/terraform-provider-tlsfetch/internal/credential"
)

// Session is the TLS surface of one outbound connection object.
type Session interface {
	SetCertificate(cert *x509.Certificate)
	SetPrivateKey(key crypto.Signer)
	AddTrustedCertificate(cert *x509.Certificate)
}

// Configure binds creds to s: the client certificate and key when present,
// then every trusted authority in order. A nil creds is a no-op.
func Configure(s Session, creds *credential.Credentials) {
	if creds == nil {
		return
	}
	if creds.ClientCertificate != nil {
		s.SetCertificate(creds.ClientCertificate)
	}
	if creds.ClientPrivateKey != nil {
		s.SetPrivateKey(creds.ClientPrivateKey)
	}
	for _, ca := range creds.TrustedAuthorities {
		s.AddTrustedCertificate(ca)
	}
}

// TransportSession collects credentials for a single *http.Transport and
// installs them with Apply. The transport's existing tls.Config is cloned, never mutated.
type TransportSession struct {
	transport *http.Transport
	cfg       *tls.Config
	roots     *x509.CertPool
	cert      *x509.Certificate
	key       crypto.Signer
}

var _ Session = (*TransportSession)(nil)

// NewTransportSession starts a session for t.
func NewTransportSession(t *http.Transport) *TransportSession {
	cfg := t.TLSClientConfig.Clone()
	if cfg == nil {
		cfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return &TransportSession{transport: t, cfg: cfg}
}

func (s *TransportSession) SetCertificate(cert *x509.Certificate) { s.cert = cert }

func (s *TransportSession) SetPrivateKey(key crypto.Signer) { s.key = key }

// AddTrustedCertificate adds cert on top of the transport's roots, or on top
// of the system pool when the transport has none.
func (s *TransportSession) AddTrustedCertificate(cert *x509.Certificate) {
	if s.roots == nil {
		s.roots = s.baseRoots()
	}
	s.roots.AddCert(cert)
}

func (s *TransportSession) baseRoots() *x509.CertPool {
	if s.cfg.RootCAs != nil {
		return s.cfg.RootCAs.Clone()
	}
	if pool, err := x509.SystemCertPool(); err == nil && pool != nil {
		return pool
	}
	return x509.NewCertPool()
}

// Apply installs the collected material on the transport.
func (s *TransportSession) Apply() {
	if s.roots != nil {
		s.cfg.RootCAs = s.roots
	}
	if s.cert != nil || s.key != nil {
		cert := s.clientCertificate()
		s.cfg.GetClientCertificate = func(*tls.CertificateRequestInfo) (*tls.Certificate, error) {
			return cert, nil
		}
	}
	s.transport.TLSClientConfig = s.cfg
}

// clientCertificate pairs the configured certificate and key. A key without a
// certificate presents nothing; a certificate without a key fails the handshake
// once the server asks for it.
func (s *TransportSession) clientCertificate() *tls.Certificate {
	if s.cert == nil {
		return &tls.Certificate{}
	}
	c := &tls.Certificate{
		Certificate: [][]byte{s.cert.Raw},
		Leaf:        s.cert,
	}
	if s.key != nil {
		c.PrivateKey = s.key
	}
	return c
}

// ConfigureTransport binds creds to t in one step.
func ConfigureTransport(t *http.Transport, creds *credential.Credentials) {
	s := NewTransportSession(t)
	Configure(s, creds)
	s.Apply()
}
